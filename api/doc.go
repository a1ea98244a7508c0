// Package api provides the HTTP REST API for burrow sessions.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create a session ({"config_id": "classic"})
//   - GET    /api/sessions                 list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified         several sessions at once (?sessionIds=a,b or ?configName=x)
//   - GET    /api/sessions/{id}            session info
//   - DELETE /api/sessions/{id}            delete a session
//
// Puzzle:
//   - GET  /api/sessions/{id}/state       current burrow state
//   - GET  /api/sessions/{id}/moves       legal moves (?token=N)
//   - POST /api/sessions/{id}/move        {"token": 1, "to": {"row": 1, "col": 5}, "reset": false}
//   - POST /api/sessions/{id}/bulk-move   {"moves": [{"token": 1, "to": {...}}, ...]}
//   - POST /api/sessions/{id}/reset       back to the initial configuration
//   - GET  /api/sessions/{id}/history     paginated move history (?page&limit&order)
//   - POST /api/sessions/{id}/solve       run the solver ({"apply": true, "frontier": "cheapest", "time_limit_ms": 5000})
//
// Configuration:
//   - GET  /api/configs                   list puzzle configs with room, depth and lower bound
//   - GET  /api/configs/{name}            a single config
//   - POST /api/configs                   save a config (?id=name, otherwise derived from its name)
//
// Other:
//   - GET /api/health
//   - GET /ws?session=abc1                WebSocket subscription, see package websocket
//
// Every mutation broadcasts the new state to the session's WebSocket
// subscribers. A solve also streams solve_progress events while it runs and
// ends with solve_finished.
//
// Errors are JSON with the matching status code:
//
//	{"error": "session not found", "code": 404}
//
// A rejected move is not an HTTP error: the response has "success": false,
// the reason, and the token's legal targets.
package api
