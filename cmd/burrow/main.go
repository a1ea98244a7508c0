// Command burrow solves and inspects amphipod burrow puzzles offline.
//
// A puzzle is read from a file argument, or from stdin when the argument is
// missing or "-". Both a plain diagram and a puzzle config JSON are accepted.
//
//	burrow solve puzzle.txt
//	burrow solve --unfold --frontier cheapest --time-limit 30s puzzle.txt
//	burrow analyze configs/classic.json
//	burrow render --tokens < puzzle.txt
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "burrow: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "burrow",
		Usage: "solve and inspect amphipod burrow puzzles",
		Commands: []*cli.Command{
			solveCommand(),
			analyzeCommand(),
			renderCommand(),
		},
	}
}
