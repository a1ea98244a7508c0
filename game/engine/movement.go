package engine

import "fmt"

// Target is a legal destination for one token and the number of cells travelled to reach it
type Target struct {
	To    Position `json:"to"`
	Steps int      `json:"steps"`
}

// Generator enumerates legal moves on a board under a rule set
type Generator struct {
	board *Board
	rules Rules
}

// NewGenerator creates a move generator. Nil predicates fall back to the standard rules.
func NewGenerator(b *Board, rules Rules) *Generator {
	return &Generator{board: b, rules: rules.withDefaults()}
}

// Board returns the topology the generator works on
func (g *Generator) Board() *Board { return g.board }

// Targets returns every legal destination of tok in the snapshot
func (g *Generator) Targets(s *Snapshot, tok Token) []Target {
	return g.AppendTargets(nil, s, tok)
}

// AppendTargets appends the legal destinations of tok to dst
func (g *Generator) AppendTargets(dst []Target, s *Snapshot, tok Token) []Target {
	switch tok.Phase {
	case PhaseInitial:
		return g.outOfRoom(dst, s, tok)
	case PhaseHallway:
		return g.intoRoom(dst, s, tok)
	default:
		return dst
	}
}

// outOfRoom climbs to the hallway and fans out left and right to every cell
// the stop rule accepts. A blocked climb yields nothing.
func (g *Generator) outOfRoom(dst []Target, s *Snapshot, tok Token) []Target {
	h := g.board.HallwayRow()
	col := tok.Pos.Col
	for r := tok.Pos.Row - 1; r >= h; r-- {
		if !s.Free(Position{Row: r, Col: col}) {
			return dst
		}
	}
	up := tok.Pos.Row - h
	for _, dir := range [2]int{-1, 1} {
		for c := col + dir; ; c += dir {
			p := Position{Row: h, Col: c}
			if !s.Free(p) {
				break
			}
			if g.rules.CanStop(g.board, p) {
				dst = append(dst, Target{To: p, Steps: up + abs(c-col)})
			}
		}
	}
	return dst
}

// intoRoom walks the hallway to the destination entrance and sinks to the
// deepest free cell of the room.
func (g *Generator) intoRoom(dst []Target, s *Snapshot, tok Token) []Target {
	b := g.board
	h := b.HallwayRow()
	rc := b.RoomColumn(b.DestinationRoom(tok.Kind))
	col := tok.Pos.Col

	if rc != col {
		step := 1
		if rc < col {
			step = -1
		}
		for c := col + step; c != rc+step; c += step {
			if !s.Free(Position{Row: h, Col: c}) {
				return dst
			}
		}
	}

	dest := Position{Row: h, Col: rc}
	for r := h + 1; r <= h+b.Depth() && s.Free(Position{Row: r, Col: rc}); r++ {
		dest.Row = r
	}
	if dest.Row == h {
		return dst
	}
	if !g.rules.CanEnter(b, s, tok, dest) {
		return dst
	}
	return append(dst, Target{To: dest, Steps: abs(rc-col) + dest.Row - h})
}

// advance moves tok to t and steps its phase forward. It reports false when
// the token has no further phase.
func advance(tok Token, t Target) (Token, bool) {
	next, ok := tok.Phase.Next()
	if !ok {
		return tok, false
	}
	tok.Pos = t.To
	tok.Phase = next
	return tok, true
}

// Apply returns a copy of cfg with token moved to t, along with the move record
func (g *Generator) Apply(cfg Configuration, token int, t Target) (Configuration, Move, error) {
	if token < 0 || token >= len(cfg) {
		return nil, Move{}, fmt.Errorf("%w: %d", ErrNoSuchToken, token)
	}
	tok := cfg[token]
	moved, ok := advance(tok, t)
	if !ok {
		return nil, Move{}, fmt.Errorf("%w: token %d", ErrTokenFinal, token)
	}
	next := cfg.Clone()
	next[token] = moved
	return next, Move{
		Token: token,
		Kind:  tok.Kind,
		From:  tok.Pos,
		To:    t.To,
		Steps: t.Steps,
		Cost:  g.board.MoveCost(tok.Kind, t.Steps),
	}, nil
}

// Find returns the target of token that lands on to, if it is legal
func (g *Generator) Find(s *Snapshot, cfg Configuration, token int, to Position) (Target, error) {
	if token < 0 || token >= len(cfg) {
		return Target{}, fmt.Errorf("%w: %d", ErrNoSuchToken, token)
	}
	tok := cfg[token]
	if tok.Phase == PhaseFinal {
		return Target{}, fmt.Errorf("%w: token %d", ErrTokenFinal, token)
	}
	for _, t := range g.Targets(s, tok) {
		if t.To == to {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("%w: token %d cannot move from %s to %s", ErrIllegalMove, token, tok.Pos, to)
}

// Moves lists every legal move of every token in cfg
func (g *Generator) Moves(s *Snapshot, cfg Configuration) []Move {
	var moves []Move
	var buf []Target
	for i, tok := range cfg {
		buf = g.AppendTargets(buf[:0], s, tok)
		for _, t := range buf {
			moves = append(moves, Move{
				Token: i,
				Kind:  tok.Kind,
				From:  tok.Pos,
				To:    t.To,
				Steps: t.Steps,
				Cost:  g.board.MoveCost(tok.Kind, t.Steps),
			})
		}
	}
	return moves
}

// LegalMoves lists every legal move in cfg under the given rules
func LegalMoves(b *Board, rules Rules, cfg Configuration) ([]Move, error) {
	s, err := b.Snapshot(cfg)
	if err != nil {
		return nil, err
	}
	return NewGenerator(b, rules).Moves(s, cfg), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
