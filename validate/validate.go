// Command validate checks the puzzle configuration JSON files in the
// ../configs directory. It checks:
//   - JSON structure and required fields
//   - Allowed diagram characters ('#', '.', ' ' and the puzzle's kind symbols)
//   - That the diagram parses into a consistent burrow
//   - Message templates
//   - Optionally, with -solve, that the burrow can be organized at all
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/burrow/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file. A
// positive solveLimit also runs the solver for at most that long.
func validateConfig(filePath string, solveLimit time.Duration) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("Name is required")
	}
	if config.Description == "" {
		result.fail("Description is required")
	}
	if len(config.Layout) == 0 {
		result.fail("Layout is empty")
		return result
	}

	kinds, err := config.KindTable()
	if err != nil {
		result.fail("Invalid kinds: %v", err)
		return result
	}
	checkCharacters(&result, config.Diagram(), kinds)

	if config.Messages.Solved != "" && strings.Count(config.Messages.Solved, "%d") != 1 {
		result.fail("messages.solved must contain exactly one %%d for the total energy")
	}

	if !result.Valid {
		return result
	}

	board, initial, err := config.Build()
	if err != nil {
		result.fail("Layout does not parse: %v", err)
		return result
	}

	if solveLimit > 0 {
		checkSolvable(&result, board, initial, solveLimit)
	}

	if result.Valid {
		symbols := make([]string, len(kinds))
		for i, k := range kinds {
			symbols[i] = fmt.Sprintf("%c=%d", k.Symbol, k.Multiplier)
		}
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", board.Rows(), board.Cols())
		result.info("Rooms: %d, depth %d", board.RoomCount(), board.Depth())
		result.info("Kinds: %s", strings.Join(symbols, " "))
		result.info("Tokens: %d (%d settled)", len(initial), initial.CountFinal())
		result.info("Lower bound: %d", engine.LowerBound(board, initial))
	}

	return result
}

// checkCharacters reports every diagram character that is neither structure
// nor one of the puzzle's kinds.
func checkCharacters(result *ValidationResult, lines []string, kinds engine.Kinds) {
	for i, row := range lines {
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch == '#' || ch == '.' || ch == ' ' {
				continue
			}
			if _, ok := kinds.Index(ch); !ok {
				result.fail("Invalid character '%c' at position [%d,%d]", ch, i, j)
			}
		}
	}
}

// checkSolvable searches the burrow within limit. A search that runs out of
// time is reported but does not invalidate the file.
func checkSolvable(result *ValidationResult, board *engine.Board, initial engine.Configuration, limit time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	res, err := engine.Search(ctx, board, initial, engine.WithFrontier(engine.FrontierCheapest))
	if err != nil {
		result.fail("Search failed: %v", err)
		return
	}

	switch res.Outcome {
	case engine.OutcomeSolved:
		result.info("Optimal energy: %d in %d moves", res.Cost, res.MoveCount)
	case engine.OutcomeNoSolution:
		result.fail("Unsolvable: no sequence of moves organizes the burrow (%d configurations explored)", res.Stats.Distinct)
	default:
		result.info("Solvability undecided after %s (%s)", limit, res.ReasonText)
	}
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing puzzle configurations")
	solve := flag.Duration("solve", 0, "Also search each puzzle for up to this long (0 to skip)")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, *solve)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
