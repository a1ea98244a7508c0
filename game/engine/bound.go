package engine

// LowerBound returns an admissible estimate of the cost still needed to settle
// cfg. Each unsettled token must at least climb to the hallway, walk to its
// entrance and step into its room; a token already under its own entrance has
// to step aside and back. The estimate assumes the standard stop rule.
func LowerBound(b *Board, cfg Configuration) int {
	h := b.HallwayRow()
	total := 0
	for _, t := range cfg {
		rc := b.RoomColumn(b.DestinationRoom(t.Kind))
		var steps int
		switch t.Phase {
		case PhaseHallway:
			steps = abs(t.Pos.Col-rc) + 1
		case PhaseInitial:
			lateral := abs(t.Pos.Col - rc)
			if lateral == 0 {
				lateral = 2
			}
			steps = t.Pos.Row - h + lateral + 1
		default:
			continue
		}
		total += b.MoveCost(t.Kind, steps)
	}
	return total
}

// Misplaced counts the tokens per kind that are not yet Final
func Misplaced(b *Board, cfg Configuration) map[byte]int {
	out := make(map[byte]int)
	for _, t := range cfg {
		if t.Phase != PhaseFinal {
			out[b.Kinds().Symbol(t.Kind)]++
		}
	}
	return out
}
