package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/burrow/game/engine"
)

var errNoSolution = errors.New("the burrow cannot be organized")

// puzzle is a parsed input ready for the engine
type puzzle struct {
	name    string
	board   *engine.Board
	initial engine.Configuration
}

func puzzleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "unfold",
			Usage: "insert the two extra rows before the last two diagram lines",
		},
		&cli.StringFlag{
			Name:  "kinds",
			Value: engine.DefaultKindSymbols,
			Usage: "token symbols in rank order, for plain diagrams",
		},
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func readInput(cmd *cli.Command) (string, string, error) {
	path := cmd.Args().First()
	if path == "" || path == "-" {
		in := cmd.Root().Reader
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "stdin", string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, string(data), nil
}

// loadPuzzle reads the puzzle named on the command line. Input starting with
// '{' is a puzzle config, anything else a bare diagram.
func loadPuzzle(cmd *cli.Command) (*puzzle, error) {
	source, text, err := readInput(cmd)
	if err != nil {
		return nil, err
	}

	config := &engine.PuzzleConfig{}
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		if err := json.Unmarshal([]byte(text), config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", source, err)
		}
		if cmd.IsSet("kinds") {
			config.Kinds = cmd.String("kinds")
		}
	} else {
		config.Name = source
		config.Layout = engine.SplitDiagram(text)
		config.Kinds = cmd.String("kinds")
	}
	if cmd.Bool("unfold") {
		config.Unfold = true
	}

	board, initial, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	name := config.Name
	if name == "" {
		name = source
	}
	return &puzzle{name: name, board: board, initial: initial}, nil
}

func writeLines(w io.Writer, indent string, lines []string) {
	for _, line := range lines {
		fmt.Fprintf(w, "%s%s\n", indent, line)
	}
}

func solveCommand() *cli.Command {
	flags := append(puzzleFlags(),
		&cli.StringFlag{
			Name:  "frontier",
			Value: "stack",
			Usage: "search order: stack or cheapest",
		},
		&cli.DurationFlag{
			Name:  "time-limit",
			Usage: "abort the search after this long (0 for no limit)",
		},
		&cli.IntFlag{
			Name:  "max-states",
			Usage: "abort after this many distinct configurations (0 for no limit)",
		},
		&cli.IntFlag{
			Name:  "max-expansions",
			Usage: "abort after this many expansions (0 for no limit)",
		},
		&cli.BoolFlag{
			Name:  "lower-bound",
			Usage: "prune with the admissible lower bound",
		},
		&cli.DurationFlag{
			Name:  "progress",
			Usage: "log search progress at this interval (0 to disable)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log every progress tick at debug level",
		},
	)

	return &cli.Command{
		Name:      "solve",
		Usage:     "find the cheapest way to organize the burrow",
		ArgsUsage: "[file]",
		Flags:     flags,
		Action:    runSolve,
	}
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	p, err := loadPuzzle(cmd)
	if err != nil {
		return err
	}

	frontier, err := engine.ParseFrontier(cmd.String("frontier"))
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(stderr(cmd))
	if cmd.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	opts := []engine.Option{
		engine.WithFrontier(frontier),
		engine.WithTimeLimit(cmd.Duration("time-limit")),
		engine.WithMaxStates(int(cmd.Int("max-states"))),
		engine.WithMaxExpansions(int(cmd.Int("max-expansions"))),
		engine.WithLogger(logger),
	}
	if cmd.Bool("lower-bound") {
		opts = append(opts, engine.WithLowerBound())
	}
	if interval := cmd.Duration("progress"); interval > 0 {
		opts = append(opts, engine.WithProgress(interval, func(pr engine.Progress) {
			logger.WithFields(logrus.Fields{
				"expanded": pr.Expanded,
				"pending":  pr.Pending,
				"distinct": pr.Distinct,
				"best":     pr.Best,
			}).Info("searching")
		}))
	}

	out := stdout(cmd)
	fmt.Fprintf(out, "%s\n", p.name)
	writeLines(out, "", engine.Render(p.board, p.initial))
	fmt.Fprintf(out, "Lower bound: %d\n\n", engine.LowerBound(p.board, p.initial))

	res, err := engine.Search(ctx, p.board, p.initial, opts...)
	if err != nil {
		return err
	}

	switch {
	case res.Outcome == engine.OutcomeNoSolution:
		fmt.Fprintln(out, "No solution exists.")
		printStats(out, res.Stats)
		return errNoSolution
	case res.Outcome == engine.OutcomeAborted && !res.Found:
		fmt.Fprintf(out, "Search aborted before any solution: %s\n", res.ReasonText)
		printStats(out, res.Stats)
		return res.Reason
	case res.Outcome == engine.OutcomeAborted:
		fmt.Fprintf(out, "Search aborted (%s); the best solution found may not be optimal.\n\n", res.ReasonText)
	}

	fmt.Fprintf(out, "Solution (%d moves):\n", res.MoveCount)
	for i, m := range res.Moves {
		fmt.Fprintf(out, "%3d. %s\n", i+1, engine.FormatMove(p.board, m))
	}
	fmt.Fprintln(out)
	writeLines(out, "", engine.Render(p.board, res.Final))
	fmt.Fprintf(out, "Energy: %d\n", res.Cost)
	fmt.Fprintf(out, "Moves: %d (%d steps)\n", res.MoveCount, res.Distance)
	printStats(out, res.Stats)
	return nil
}

func printStats(w io.Writer, st engine.Stats) {
	fmt.Fprintf(w, "Explored: %d expanded, %d distinct, %d pruned in %s\n",
		st.Expanded, st.Distinct, st.Pruned, st.Elapsed.Round(time.Millisecond))
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "summarize a puzzle without solving it",
		ArgsUsage: "[file]",
		Flags:     puzzleFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := loadPuzzle(cmd)
			if err != nil {
				return err
			}
			b := p.board
			out := stdout(cmd)

			fmt.Fprintf(out, "Name: %s\n", p.name)
			fmt.Fprintf(out, "Grid: %d x %d\n", b.Cols(), b.Rows())
			fmt.Fprintf(out, "Rooms: %d at columns %v\n", b.RoomCount(), b.Rooms())
			fmt.Fprintf(out, "Depth: %d\n", b.Depth())
			fmt.Fprintf(out, "Tokens: %d\n", len(p.initial))

			fmt.Fprintln(out, "Kinds:")
			for _, k := range b.Kinds() {
				fmt.Fprintf(out, "  %c: energy %d per step\n", k.Symbol, k.Multiplier)
			}

			misplaced := engine.Misplaced(b, p.initial)
			settled := p.initial.CountFinal()
			fmt.Fprintf(out, "Settled: %d/%d\n", settled, len(p.initial))
			for _, k := range b.Kinds() {
				if n := misplaced[k.Symbol]; n > 0 {
					fmt.Fprintf(out, "  %c: %d to move\n", k.Symbol, n)
				}
			}

			moves, err := engine.LegalMoves(b, engine.StandardRules(), p.initial)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Opening moves: %d\n", len(moves))
			fmt.Fprintf(out, "Lower bound: %d\n", engine.LowerBound(b, p.initial))
			if p.initial.Settled() {
				fmt.Fprintln(out, "Already organized.")
			}
			return nil
		},
	}
}

func renderCommand() *cli.Command {
	flags := append(puzzleFlags(), &cli.BoolFlag{
		Name:  "tokens",
		Usage: "list every token with its position and phase",
	})
	return &cli.Command{
		Name:      "render",
		Usage:     "print the parsed burrow",
		ArgsUsage: "[file]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := loadPuzzle(cmd)
			if err != nil {
				return err
			}
			out := stdout(cmd)
			writeLines(out, "", engine.Render(p.board, p.initial))
			if cmd.Bool("tokens") {
				writeLines(out, "  ", engine.Describe(p.board, p.initial))
			}
			return nil
		},
	}
}
