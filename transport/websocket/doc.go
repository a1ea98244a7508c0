// Package websocket pushes burrow session updates to browser and tool clients.
//
// A central Hub owns every connection. Clients subscribe to one session by
// passing its ID (?sessionId=abc1) when they connect; session IDs are matched
// case-insensitively. The hub only writes, it does not accept actions over
// the socket. Moves and solves go through the REST API, which then broadcasts.
//
// Outgoing messages are JSON:
//
//	{"session_id": "abc1", "event": "state_update", "burrow_state": {...}}
//	{"session_id": "abc1", "event": "solve_progress", "data": {"expanded": 1200, ...}}
//	{"session_id": "abc1", "event": "solve_finished", "data": {"outcome": "solved", ...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
//
// Broadcasts are queued on a buffered channel and never block the caller.
// When the queue is full the message is dropped, and a client whose own
// buffer is full is disconnected.
package websocket
