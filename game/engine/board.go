package engine

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Board is the immutable burrow topology: one hallway row and a set of
// equally deep rooms hanging below it.
type Board struct {
	grid      [][]CellKind
	rows      int
	cols      int
	hallway   int
	depth     int
	rooms     []int
	entrances mapset.Set[int]
	kinds     Kinds
}

// NewBoard discovers the hallway and rooms of a static grid. Grid cells must be
// OutOfBounds, Wall or Empty.
func NewBoard(grid [][]CellKind, kinds Kinds) (*Board, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no kinds", ErrInvalidKinds)
	}
	rows := len(grid)
	cols := 0
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidLayout)
	}
	if rows > MaxGridSize || cols > MaxGridSize {
		return nil, fmt.Errorf("%w: grid %dx%d exceeds %d", ErrInvalidLayout, rows, cols, MaxGridSize)
	}

	b := &Board{
		grid:      make([][]CellKind, rows),
		rows:      rows,
		cols:      cols,
		hallway:   -1,
		entrances: mapset.New[int](),
		kinds:     kinds,
	}
	for r, row := range grid {
		b.grid[r] = make([]CellKind, cols)
		for c, kind := range row {
			if kind == Occupied {
				return nil, fmt.Errorf("%w: static grid holds a token at (%d,%d)", ErrInvalidLayout, r, c)
			}
			b.grid[r][c] = kind
		}
	}

	for r := 0; r < rows && b.hallway < 0; r++ {
		for c := 0; c < cols; c++ {
			if b.grid[r][c] == Empty {
				b.hallway = r
				break
			}
		}
	}
	if b.hallway < 0 {
		return nil, fmt.Errorf("%w: no open cells", ErrInvalidLayout)
	}

	roomCols := mapset.New[int]()
	for r := b.hallway + 1; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if b.grid[r][c] == Empty {
				roomCols.Put(c)
			}
		}
	}
	if roomCols.Size() == 0 {
		return nil, fmt.Errorf("%w: no rooms below the hallway", ErrInvalidLayout)
	}
	roomCols.Each(func(c int) {
		b.rooms = append(b.rooms, c)
	})
	sort.Ints(b.rooms)

	for i, c := range b.rooms {
		if b.grid[b.hallway][c] != Empty {
			return nil, fmt.Errorf("%w: room at column %d has no hallway entrance", ErrInvalidLayout, c)
		}
		depth := 0
		for r := b.hallway + 1; r < rows && b.grid[r][c] == Empty; r++ {
			depth++
		}
		for r := b.hallway + 1 + depth; r < rows; r++ {
			if b.grid[r][c] == Empty {
				return nil, fmt.Errorf("%w: room at column %d is not contiguous (row %d)", ErrInvalidLayout, c, r)
			}
		}
		if i == 0 {
			b.depth = depth
		} else if depth != b.depth {
			return nil, fmt.Errorf("%w: room at column %d has depth %d, expected %d", ErrInvalidLayout, c, depth, b.depth)
		}
		b.entrances.Put(c)
	}

	if len(b.rooms) != len(kinds) {
		return nil, fmt.Errorf("%w: %d rooms for %d kinds", ErrInvalidLayout, len(b.rooms), len(kinds))
	}
	return b, nil
}

// Rows returns the grid height
func (b *Board) Rows() int { return b.rows }

// Cols returns the grid width
func (b *Board) Cols() int { return b.cols }

// HallwayRow returns the row index of the hallway
func (b *Board) HallwayRow() int { return b.hallway }

// Depth returns the number of cells in each room
func (b *Board) Depth() int { return b.depth }

// RoomCount returns the number of rooms
func (b *Board) RoomCount() int { return len(b.rooms) }

// RoomColumn returns the entrance column of a room
func (b *Board) RoomColumn(room int) int { return b.rooms[room] }

// Rooms returns the entrance columns ordered left to right
func (b *Board) Rooms() []int {
	out := make([]int, len(b.rooms))
	copy(out, b.rooms)
	return out
}

// Kinds returns the kind table
func (b *Board) Kinds() Kinds { return b.kinds }

// Multiplier returns the per-step cost of a kind
func (b *Board) Multiplier(kind TokenKind) int { return b.kinds[kind].Multiplier }

// MoveCost returns the cost of moving a token of the given kind by steps cells
func (b *Board) MoveCost(kind TokenKind, steps int) int {
	return steps * b.Multiplier(kind)
}

// DestinationRoom returns the room a kind belongs to
func (b *Board) DestinationRoom(kind TokenKind) int { return int(kind) }

// IsEntrance reports whether the hallway cell in col sits directly above a room
func (b *Board) IsEntrance(col int) bool {
	return b.entrances.Has(col)
}

// RoomIndexFor returns the room whose entrance is at col
func (b *Board) RoomIndexFor(col int) (int, bool) {
	if !b.entrances.Has(col) {
		return 0, false
	}
	i := sort.SearchInts(b.rooms, col)
	return i, true
}

// RoomOf returns the room containing pos, if pos is a room cell
func (b *Board) RoomOf(pos Position) (int, bool) {
	if pos.Row <= b.hallway || pos.Row > b.hallway+b.depth {
		return 0, false
	}
	return b.RoomIndexFor(pos.Col)
}

// IsHallway reports whether pos is an open hallway cell
func (b *Board) IsHallway(pos Position) bool {
	return pos.Row == b.hallway && b.Static(pos.Row, pos.Col) == Empty
}

// Static returns the static cell kind at (row, col). Cells outside the grid are OutOfBounds.
func (b *Board) Static(row, col int) CellKind {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return OutOfBounds
	}
	return b.grid[row][col]
}

// CellAt returns the cell at (row, col) in a snapshot of this board
func (b *Board) CellAt(s *Snapshot, row, col int) Cell {
	return s.CellAt(row, col)
}

// Validate checks a configuration against the topology: room capacity per kind,
// cell placement and phase consistency.
func (b *Board) Validate(cfg Configuration) error {
	counts := make([]int, len(b.kinds))
	for i, t := range cfg {
		if int(t.Kind) >= len(b.kinds) {
			return fmt.Errorf("%w: token %d has kind %d", ErrInvalidKinds, i, t.Kind)
		}
		counts[t.Kind]++
		switch t.Phase {
		case PhaseInitial:
			if _, ok := b.RoomOf(t.Pos); !ok {
				return fmt.Errorf("%w: initial token %d at %s is not in a room", ErrOverlap, i, t.Pos)
			}
		case PhaseHallway:
			if !b.IsHallway(t.Pos) || b.IsEntrance(t.Pos.Col) {
				return fmt.Errorf("%w: hallway token %d at %s", ErrOverlap, i, t.Pos)
			}
		case PhaseFinal:
			room, ok := b.RoomOf(t.Pos)
			if !ok || room != b.DestinationRoom(t.Kind) {
				return fmt.Errorf("%w: final token %d at %s is outside its room", ErrOverlap, i, t.Pos)
			}
		default:
			return fmt.Errorf("%w: token %d", ErrUnknownPhase, i)
		}
	}
	for k, n := range counts {
		if n != b.depth {
			return fmt.Errorf("%w: kind %q has %d tokens, rooms hold %d", ErrTokenCount, b.kinds[k].Symbol, n, b.depth)
		}
	}
	snap, err := b.Snapshot(cfg)
	if err != nil {
		return err
	}
	// a settled token sits on a column of its own kind down to the floor
	bottom := b.hallway + b.depth
	for i, t := range cfg {
		if t.Phase != PhaseFinal {
			continue
		}
		for r := t.Pos.Row + 1; r <= bottom; r++ {
			j, ok := snap.Occupant(Position{Row: r, Col: t.Pos.Col})
			if !ok || cfg[j].Kind != t.Kind {
				return fmt.Errorf("%w: final token %d at %s is not settled on its own kind", ErrOverlap, i, t.Pos)
			}
		}
	}
	return nil
}

// Snapshot is a mutable occupancy view of a board. It is rebuilt from a
// Configuration and never shared between searches.
type Snapshot struct {
	board    *Board
	cells    []Cell
	occupant []int16
}

// NewSnapshot returns an empty snapshot of the board
func (b *Board) NewSnapshot() *Snapshot {
	s := &Snapshot{
		board:    b,
		cells:    make([]Cell, b.rows*b.cols),
		occupant: make([]int16, b.rows*b.cols),
	}
	s.clear()
	return s
}

// Snapshot places a configuration onto a fresh copy of the topology
func (b *Board) Snapshot(cfg Configuration) (*Snapshot, error) {
	s := b.NewSnapshot()
	if err := s.Load(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Snapshot) clear() {
	b := s.board
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			i := r*b.cols + c
			s.cells[i] = Cell{Kind: b.grid[r][c]}
			s.occupant[i] = -1
		}
	}
}

// Load clears the snapshot and places every token of cfg
func (s *Snapshot) Load(cfg Configuration) error {
	s.clear()
	b := s.board
	for i, t := range cfg {
		if b.Static(t.Pos.Row, t.Pos.Col) != Empty {
			return fmt.Errorf("%w: token %d at %s", ErrOverlap, i, t.Pos)
		}
		idx := t.Pos.Row*b.cols + t.Pos.Col
		if s.occupant[idx] >= 0 {
			return fmt.Errorf("%w: tokens %d and %d at %s", ErrOverlap, s.occupant[idx], i, t.Pos)
		}
		s.cells[idx] = Cell{Kind: Occupied, Token: t.Kind}
		s.occupant[idx] = int16(i)
	}
	return nil
}

// CellAt returns the cell at (row, col); coordinates outside the grid are OutOfBounds
func (s *Snapshot) CellAt(row, col int) Cell {
	b := s.board
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return Cell{Kind: OutOfBounds}
	}
	return s.cells[row*b.cols+col]
}

// Free reports whether pos is an unoccupied open cell
func (s *Snapshot) Free(pos Position) bool {
	return s.CellAt(pos.Row, pos.Col).Kind == Empty
}

// Occupant returns the index of the token at pos
func (s *Snapshot) Occupant(pos Position) (int, bool) {
	b := s.board
	if pos.Row < 0 || pos.Row >= b.rows || pos.Col < 0 || pos.Col >= b.cols {
		return 0, false
	}
	i := s.occupant[pos.Row*b.cols+pos.Col]
	return int(i), i >= 0
}
