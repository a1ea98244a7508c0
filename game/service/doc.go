// Package service provides the business logic layer for the burrow puzzle server.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Move processing with rejected moves reported, not returned as errors
//   - Solver runs on a session, optionally applied back onto it
//   - Paginated move history
//
// Core Interfaces:
//
// BurrowService is the main service interface used by the REST API and the
// MCP bridge. SessionManager stores sessions and ConfigManager loads puzzle
// configurations.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewBurrowService(sessionMgr, configMgr)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Move(ctx, info.ID, engine.MoveRequest{Token: 0, To: engine.Position{Row: 1, Col: 4}}, false)
//	solved, err := svc.Solve(ctx, info.ID, service.SolveOptions{Apply: true})
//
// Solving:
//
// Solve copies the session's board and configuration under the service lock
// and runs the search with the lock released. Applying the solution fails with
// ErrSolutionStale when the session moved in the meantime.
package service
