package engine

import (
	"fmt"
	"strings"
)

// DefaultExtraRows are the rows Unfold inserts when none are given
var DefaultExtraRows = []string{
	"  #D#C#B#A#",
	"  #D#B#A#C#",
}

// Unfold deepens every room by inserting extra rows before the last two
// diagram lines.
func Unfold(lines, extra []string) []string {
	if len(extra) == 0 {
		extra = DefaultExtraRows
	}
	if len(lines) < 2 {
		return append([]string(nil), lines...)
	}
	at := len(lines) - 2
	out := make([]string, 0, len(lines)+len(extra))
	out = append(out, lines[:at]...)
	out = append(out, extra...)
	out = append(out, lines[at:]...)
	return out
}

// SplitDiagram splits raw text into diagram lines, dropping carriage returns
// and blank lines around the drawing.
func SplitDiagram(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ParseDiagram reads a burrow diagram into its topology and initial
// configuration. '#' is a wall, '.' an empty cell, a kind symbol an empty
// cell holding a token, and a space or a missing tail is outside the burrow.
func ParseDiagram(lines []string, kinds Kinds) (*Board, Configuration, error) {
	if len(kinds) == 0 {
		kinds = DefaultKinds()
	}
	lines = SplitDiagram(strings.Join(lines, "\n"))
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: empty diagram", ErrInvalidLayout)
	}

	grid := make([][]CellKind, len(lines))
	var cfg Configuration
	for r, line := range lines {
		row := make([]CellKind, len(line))
		for c := 0; c < len(line); c++ {
			switch ch := line[c]; ch {
			case '#':
				row[c] = Wall
			case '.':
				row[c] = Empty
			case ' ':
				row[c] = OutOfBounds
			default:
				kind, ok := kinds.Index(ch)
				if !ok {
					return nil, nil, fmt.Errorf("%w: unexpected %q at row %d, col %d", ErrInvalidLayout, ch, r, c)
				}
				row[c] = Empty
				cfg = append(cfg, Token{Kind: kind, Pos: Position{Row: r, Col: c}})
			}
		}
		grid[r] = row
	}

	b, err := NewBoard(grid, kinds)
	if err != nil {
		return nil, nil, err
	}
	for i, t := range cfg {
		switch {
		case b.IsHallway(t.Pos):
			if b.IsEntrance(t.Pos.Col) {
				return nil, nil, fmt.Errorf("%w: token %d stands on the entrance at %s", ErrInvalidLayout, i, t.Pos)
			}
			cfg[i].Phase = PhaseHallway
		default:
			if _, ok := b.RoomOf(t.Pos); !ok {
				return nil, nil, fmt.Errorf("%w: token %d at %s is outside the hallway and rooms", ErrInvalidLayout, i, t.Pos)
			}
		}
	}
	if err := settle(b, cfg); err != nil {
		return nil, nil, err
	}
	if err := b.Validate(cfg); err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}

// settle marks room tokens Final when they and every token below them are
// already home. Rooms are scanned bottom-up and stop at the first gap or stranger.
func settle(b *Board, cfg Configuration) error {
	snap, err := b.Snapshot(cfg)
	if err != nil {
		return err
	}
	h := b.HallwayRow()
	for room := 0; room < b.RoomCount(); room++ {
		col := b.RoomColumn(room)
		for r := h + b.Depth(); r > h; r-- {
			idx, ok := snap.Occupant(Position{Row: r, Col: col})
			if !ok || b.DestinationRoom(cfg[idx].Kind) != room {
				break
			}
			if cfg[idx].Phase == PhaseInitial {
				cfg[idx].Phase = PhaseFinal
			}
		}
	}
	return nil
}
