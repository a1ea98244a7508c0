package engine

import "reflect"

// StopRule decides whether a token leaving its room may stop at a hallway cell.
type StopRule func(b *Board, pos Position) bool

// EntryRule decides whether a hallway token may descend to dest inside its
// destination room.
type EntryRule func(b *Board, s *Snapshot, tok Token, dest Position) bool

// Rules bundles the legality predicates used by the move generator
type Rules struct {
	CanStop  StopRule
	CanEnter EntryRule
}

// StandardRules returns the burrow rules: no stopping above an entrance, and
// no entering a room that still holds tokens of another destination.
func StandardRules() Rules {
	return Rules{
		CanStop:  NotAboveEntrance,
		CanEnter: DestinationPure,
	}
}

func (r Rules) withDefaults() Rules {
	if r.CanStop == nil {
		r.CanStop = NotAboveEntrance
	}
	if r.CanEnter == nil {
		r.CanEnter = DestinationPure
	}
	return r
}

// standardStop reports whether CanStop is NotAboveEntrance
func (r Rules) standardStop() bool {
	return reflect.ValueOf(r.CanStop).Pointer() == reflect.ValueOf(NotAboveEntrance).Pointer()
}

// NotAboveEntrance forbids stopping on a hallway cell directly above a room
func NotAboveEntrance(b *Board, pos Position) bool {
	return !b.IsEntrance(pos.Col)
}

// DestinationPure allows entry only when every cell below dest holds a token
// bound for the same room.
func DestinationPure(b *Board, s *Snapshot, tok Token, dest Position) bool {
	room := b.DestinationRoom(tok.Kind)
	bottom := b.HallwayRow() + b.Depth()
	for r := dest.Row + 1; r <= bottom; r++ {
		cell := s.CellAt(r, dest.Col)
		if cell.Kind != Occupied || b.DestinationRoom(cell.Token) != room {
			return false
		}
	}
	return true
}
