package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagram_ClassicTopology(t *testing.T) {
	b, cfg := mustParse(t, classicLayout, DefaultKinds())

	assert.Equal(t, 1, b.HallwayRow())
	assert.Equal(t, 2, b.Depth())
	assert.Equal(t, 4, b.RoomCount())
	assert.Equal(t, []int{3, 5, 7, 9}, b.Rooms())
	assert.Equal(t, 5, b.Rows())
	assert.Equal(t, 13, b.Cols())

	for col := 0; col < b.Cols(); col++ {
		want := col == 3 || col == 5 || col == 7 || col == 9
		assert.Equal(t, want, b.IsEntrance(col), "column %d", col)
	}

	room, ok := b.RoomIndexFor(7)
	require.True(t, ok)
	assert.Equal(t, 2, room)
	_, ok = b.RoomIndexFor(4)
	assert.False(t, ok)

	require.Len(t, cfg, 8)
	assert.Equal(t, Token{Kind: 1, Pos: Position{Row: 2, Col: 3}, Phase: PhaseInitial}, cfg[0])
	assert.Equal(t, Token{Kind: 0, Pos: Position{Row: 3, Col: 3}, Phase: PhaseFinal}, cfg[4])
	assert.Equal(t, Token{Kind: 2, Pos: Position{Row: 3, Col: 7}, Phase: PhaseFinal}, cfg[6])
	assert.Equal(t, 2, cfg.CountFinal())
}

func TestSnapshot_CellAt(t *testing.T) {
	b, cfg := mustParse(t, classicLayout, DefaultKinds())
	snap, err := b.Snapshot(cfg)
	require.NoError(t, err)

	tests := []struct {
		name     string
		row, col int
		want     Cell
	}{
		{"wall", 0, 0, Cell{Kind: Wall}},
		{"hallway", 1, 1, Cell{Kind: Empty}},
		{"token", 2, 3, Cell{Kind: Occupied, Token: 1}},
		{"padding", 4, 0, Cell{Kind: OutOfBounds}},
		{"short row tail", 3, 12, Cell{Kind: OutOfBounds}},
		{"above grid", -1, 4, Cell{Kind: OutOfBounds}},
		{"right of grid", 1, 40, Cell{Kind: OutOfBounds}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.CellAt(snap, tt.row, tt.col))
		})
	}

	idx, ok := snap.Occupant(Position{Row: 3, Col: 9})
	require.True(t, ok)
	assert.Equal(t, 7, idx)
	_, ok = snap.Occupant(Position{Row: 1, Col: 1})
	assert.False(t, ok)
}

func TestParseDiagram_Errors(t *testing.T) {
	tests := []struct {
		name   string
		layout []string
		kinds  string
		want   error
	}{
		{
			name:   "unknown symbol",
			layout: []string{"#######", "#.....#", "##B#X##", " #A#B#", " #####"},
			kinds:  "AB",
			want:   ErrInvalidLayout,
		},
		{
			name:   "room count differs from kinds",
			layout: swapLayout,
			kinds:  "ABCD",
			want:   ErrInvalidLayout,
		},
		{
			name:   "too many of one kind",
			layout: []string{"#######", "#.....#", "##B#A##", " #A#A#", " #####"},
			kinds:  "AB",
			want:   ErrTokenCount,
		},
		{
			name:   "uneven rooms",
			layout: []string{"#######", "#.....#", "##B#A##", " #A###", " #####"},
			kinds:  "AB",
			want:   ErrInvalidLayout,
		},
		{
			name:   "room without entrance",
			layout: []string{"#######", "#.#...#", "##B#A##", " #A#B#", " #####"},
			kinds:  "AB",
			want:   ErrInvalidLayout,
		},
		{
			name:   "token on an entrance",
			layout: []string{"#######", "#.B...#", "##.#A##", " #A#B#", " #####"},
			kinds:  "AB",
			want:   ErrInvalidLayout,
		},
		{
			name:   "no open cells",
			layout: []string{"####", "####"},
			kinds:  "AB",
			want:   ErrInvalidLayout,
		},
		{
			name:   "empty",
			layout: []string{"", "  "},
			kinds:  "AB",
			want:   ErrInvalidLayout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds, err := NewKinds(tt.kinds, nil)
			require.NoError(t, err)
			_, _, err = ParseDiagram(tt.layout, kinds)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseDiagram_HallwayToken(t *testing.T) {
	b, cfg := mustParse(t, hallwayLayout, twoKinds(t))
	require.Len(t, cfg, 4)
	assert.Equal(t, PhaseHallway, cfg[0].Phase)
	assert.Equal(t, PhaseInitial, cfg[1].Phase)
	assert.Equal(t, PhaseFinal, cfg[2].Phase)
	assert.Equal(t, PhaseFinal, cfg[3].Phase)
	assert.True(t, b.IsHallway(cfg[0].Pos))
}

func TestParseDiagram_FinalNeedsSettledTokensBelow(t *testing.T) {
	// the A on top of room A sits over a B, so it still has to leave
	layout := []string{
		"#######",
		"#.....#",
		"##A#A##",
		" #B#B#",
		" #####",
	}
	_, cfg := mustParse(t, layout, twoKinds(t))
	for i, tok := range cfg {
		if tok.Kind == 1 && tok.Pos.Col == 4 {
			assert.Equal(t, PhaseFinal, tok.Phase, "token %d", i)
			continue
		}
		assert.Equal(t, PhaseInitial, tok.Phase, "token %d", i)
	}
}

func TestBoard_Validate(t *testing.T) {
	b, cfg := mustParse(t, swapLayout, twoKinds(t))
	require.NoError(t, b.Validate(cfg))

	overlap := cfg.Clone()
	overlap[0].Pos = overlap[1].Pos
	assert.ErrorIs(t, b.Validate(overlap), ErrOverlap)

	onWall := cfg.Clone()
	onWall[0].Pos = Position{Row: 0, Col: 0}
	assert.ErrorIs(t, b.Validate(onWall), ErrOverlap)

	finalInHallway := cfg.Clone()
	finalInHallway[0] = Token{Kind: 1, Pos: Position{Row: 1, Col: 1}, Phase: PhaseFinal}
	assert.ErrorIs(t, b.Validate(finalInHallway), ErrOverlap)

	hallwayOnEntrance := cfg.Clone()
	hallwayOnEntrance[0] = Token{Kind: 1, Pos: Position{Row: 1, Col: 2}, Phase: PhaseHallway}
	assert.ErrorIs(t, b.Validate(hallwayOnEntrance), ErrOverlap)

	// A settled over a foreign B
	finalOnForeign := cfg.Clone()
	finalOnForeign[0].Pos = Position{Row: 3, Col: 2}
	finalOnForeign[2] = Token{Kind: 0, Pos: Position{Row: 2, Col: 2}, Phase: PhaseFinal}
	assert.ErrorIs(t, b.Validate(finalOnForeign), ErrOverlap)

	// A settled over an empty cell
	finalOnEmpty := cfg.Clone()
	finalOnEmpty[0] = Token{Kind: 1, Pos: Position{Row: 1, Col: 1}, Phase: PhaseHallway}
	finalOnEmpty[2] = Token{Kind: 0, Pos: Position{Row: 2, Col: 2}, Phase: PhaseFinal}
	assert.ErrorIs(t, b.Validate(finalOnEmpty), ErrOverlap)

	assert.ErrorIs(t, b.Validate(cfg[:3]), ErrTokenCount)
}

func TestNewBoard_RejectsOversizedGrid(t *testing.T) {
	grid := make([][]CellKind, MaxGridSize+1)
	for i := range grid {
		grid[i] = []CellKind{Wall}
	}
	_, err := NewBoard(grid, DefaultKinds())
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestNewKinds(t *testing.T) {
	kinds, err := NewKinds("ABCD", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 100, 1000}, []int{kinds[0].Multiplier, kinds[1].Multiplier, kinds[2].Multiplier, kinds[3].Multiplier})

	kinds, err = NewKinds("XY", []int{3, 7})
	require.NoError(t, err)
	k, ok := kinds.Index('Y')
	require.True(t, ok)
	assert.Equal(t, TokenKind(1), k)
	assert.Equal(t, 7, kinds[k].Multiplier)
	assert.Equal(t, byte('?'), kinds.Symbol(9))

	for _, bad := range []struct {
		symbols string
		mult    []int
	}{
		{"", nil},
		{"AA", nil},
		{"A#", nil},
		{"AB", []int{1}},
		{"AB", []int{1, 0}},
	} {
		_, err := NewKinds(bad.symbols, bad.mult)
		assert.ErrorIs(t, err, ErrInvalidKinds, "symbols %q", bad.symbols)
	}
}
