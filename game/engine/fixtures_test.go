package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// classicLayout is the two-deep, four-room example burrow
var classicLayout = []string{
	"#############",
	"#...........#",
	"###B#C#B#D###",
	"  #A#D#C#A#",
	"  #########",
}

// swapLayout holds one misplaced A and one misplaced B over settled tokens.
// Cheapest order: A (2,4)->(1,5) 2, B (2,2)->(1,3) 20, B ->(2,4) 20, A ->(2,2) 4 = 46.
var swapLayout = []string{
	"#######",
	"#.....#",
	"##B#A##",
	" #A#B#",
	" #####",
}

var solvedLayout = []string{
	"#######",
	"#.....#",
	"##A#B##",
	" #A#B#",
	" #####",
}

// boxedLayout has a single stopping cell: whichever token parks there blocks
// the other from ever leaving, and its own room stays occupied.
var boxedLayout = []string{
	"#####",
	"#...#",
	"#B#A#",
	"#A#B#",
	"#####",
}

// noStopLayout has no hallway cell that is not an entrance
var noStopLayout = []string{
	"####",
	"#..#",
	"#BA#",
	"#AB#",
	"####",
}

var hallwayLayout = []string{
	"#######",
	"#B....#",
	"##.#A##",
	" #A#B#",
	" #####",
}

func twoKinds(t *testing.T) Kinds {
	t.Helper()
	kinds, err := NewKinds("AB", nil)
	require.NoError(t, err)
	return kinds
}

func mustParse(t *testing.T, lines []string, kinds Kinds) (*Board, Configuration) {
	t.Helper()
	b, cfg, err := ParseDiagram(lines, kinds)
	require.NoError(t, err)
	return b, cfg
}

func testPuzzle(name string, layout []string, kinds string) *PuzzleConfig {
	return &PuzzleConfig{
		Name:        name,
		Description: "test puzzle " + name,
		Layout:      layout,
		Kinds:       kinds,
	}
}
