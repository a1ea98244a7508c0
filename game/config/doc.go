// Package config provides puzzle configuration management for the burrow service.
//
// Puzzle configurations are JSON files in the configs directory. Each file
// holds an engine.PuzzleConfig:
//   - layout: the burrow diagram, one string per row
//   - kinds: the amphipod symbols in room order (default "ABCD")
//   - multipliers: optional per-kind energy cost (default 1, 10, 100, ...)
//   - unfold: insert the two extra rows used by the four-deep variant
//   - messages: welcome, solved and illegal-move texts
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := manager.LoadConfig("classic")
//	infos, err := manager.ListConfigs()
//
// The default puzzle is classic.json when present, then the first valid file
// in the directory, then the built-in classic burrow.
package config
