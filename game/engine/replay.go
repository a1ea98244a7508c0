package engine

import "fmt"

// Replay applies moves to initial one at a time, checking each against the
// move generator, and returns the resulting configuration and total cost.
// Moves with a recorded Steps value must match the generated path length.
func Replay(b *Board, rules Rules, initial Configuration, moves []Move) (Configuration, int, error) {
	if err := b.Validate(initial); err != nil {
		return nil, 0, err
	}
	g := NewGenerator(b, rules)
	snap := b.NewSnapshot()
	cfg := initial.Clone()
	total := 0
	for i, m := range moves {
		if err := snap.Load(cfg); err != nil {
			return nil, 0, fmt.Errorf("move %d: %w", i+1, err)
		}
		t, err := g.Find(snap, cfg, m.Token, m.To)
		if err != nil {
			return nil, 0, fmt.Errorf("move %d: %w", i+1, err)
		}
		next, applied, err := g.Apply(cfg, m.Token, t)
		if err != nil {
			return nil, 0, fmt.Errorf("move %d: %w", i+1, err)
		}
		if m.Steps != 0 && m.Steps != applied.Steps {
			return nil, 0, fmt.Errorf("move %d: %w: recorded %d steps, path is %d", i+1, ErrIllegalMove, m.Steps, applied.Steps)
		}
		total += applied.Cost
		cfg = next
	}
	return cfg, total, nil
}
