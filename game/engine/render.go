package engine

import (
	"fmt"
	"strings"
)

// Render draws cfg onto the board as diagram lines. Tokens that cannot be
// placed are left out.
func Render(b *Board, cfg Configuration) []string {
	snap := b.NewSnapshot()
	_ = snap.Load(cfg)
	return RenderSnapshot(snap)
}

// RenderSnapshot draws a snapshot as diagram lines
func RenderSnapshot(s *Snapshot) []string {
	b := s.board
	lines := make([]string, b.Rows())
	var sb strings.Builder
	for r := 0; r < b.Rows(); r++ {
		sb.Reset()
		for c := 0; c < b.Cols(); c++ {
			cell := s.CellAt(r, c)
			switch cell.Kind {
			case Wall:
				sb.WriteByte('#')
			case Empty:
				sb.WriteByte('.')
			case Occupied:
				sb.WriteByte(b.Kinds().Symbol(cell.Token))
			default:
				sb.WriteByte(' ')
			}
		}
		lines[r] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}

// Describe returns one line per token with its symbol, position and phase
func Describe(b *Board, cfg Configuration) []string {
	out := make([]string, len(cfg))
	for i, t := range cfg {
		out[i] = fmt.Sprintf("%d: %c at %s %s, home room %d (column %d)",
			i, b.Kinds().Symbol(t.Kind), t.Pos, t.Phase,
			b.DestinationRoom(t.Kind), b.RoomColumn(b.DestinationRoom(t.Kind)))
	}
	return out
}

// FormatMove renders a move as "B #3 (2,5) -> (1,4): 2 steps, cost 20"
func FormatMove(b *Board, m Move) string {
	return fmt.Sprintf("%c #%d %s -> %s: %d steps, cost %d",
		b.Kinds().Symbol(m.Kind), m.Token, m.From, m.To, m.Steps, m.Cost)
}
