// Package engine provides the core puzzle logic for the amphipod burrow.
//
// The engine package implements:
//   - Burrow topology: one hallway row and equally deep rooms (Board)
//   - Token phases Initial -> Hallway -> Final and configuration keys
//   - Move generation under pluggable stop and entry rules
//   - A cost-minimizing search with a global bound and a dominance table
//   - Diagram parsing, unfolding and rendering
//   - Interactive sessions with move history (BurrowEngine)
//
// Core Types:
//
// Board is the immutable topology; a Snapshot places a Configuration on it
// for occupancy queries. Generator enumerates legal moves. Search explores
// reachable configurations and returns a Result whose Outcome is solved,
// no_solution or aborted. PuzzleConfig defines a puzzle loaded from JSON.
//
// Usage:
//
//	board, initial, err := engine.ParseDiagram(lines, engine.DefaultKinds())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := engine.Search(ctx, board, initial,
//		engine.WithTimeLimit(time.Minute),
//		engine.WithLogger(logrus.StandardLogger()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Outcome, result.Cost, result.MoveCount)
//
// Movement Rules:
//
// A token still in its starting room may climb to the hallway if nothing
// blocks the way up, then walk sideways; it never stops directly above a room
// entrance. A token in the hallway may only walk into its own room, and only
// when the room holds nothing but tokens of its kind; it always sinks to the
// deepest free cell. A token home in its room never moves again. Each step
// costs the kind's multiplier, 1/10/100/1000 for A/B/C/D by default.
//
// Search:
//
// The default frontier is a LIFO stack. A child is discarded when its cost
// already reaches the best solution, or when its configuration was reached
// before at the same or lower cost. The search keeps running after the first
// solution, so the recorded best is optimal only once the frontier is empty.
// Cancellation, time and size budgets end the search with OutcomeAborted.
package engine
