// Package mcp exposes the burrow REST API as Model Context Protocol tools.
//
// The Client holds no state of its own: every tool call is translated into a
// REST request against a running API server and the JSON reply is rendered as
// text for the agent.
//
// MCP Tools:
//   - list_configs: puzzles with rooms, depth, kinds and lower bound
//   - create_session, list_sessions, get_session: session management
//   - burrow_state: diagram, token table and energy spent
//   - legal_moves: every legal move, optionally for one token
//   - move: move one token to a (row, col) target
//   - bulk_move: several moves, stopping at the first illegal one
//   - reset_burrow: back to the initial configuration
//   - move_history: paginated history
//   - solve: run the optimal solver, optionally applying the solution
//   - burrow_instructions: rules and tips
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: the /mcp endpoint passes request bodies to GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
//
// Solve requests may run long, so they get the requested time limit plus a
// grace period instead of the default request timeout.
package mcp
