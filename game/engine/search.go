package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// Outcome is the terminal status of a search
type Outcome string

const (
	OutcomeSolved     Outcome = "solved"
	OutcomeNoSolution Outcome = "no_solution"
	OutcomeAborted    Outcome = "aborted"
)

// Stats counts the work done by one search
type Stats struct {
	Expanded     int           `json:"expanded"`
	Generated    int           `json:"generated"`
	Distinct     int           `json:"distinct"`
	Pruned       int           `json:"pruned"`
	Dominated    int           `json:"dominated"`
	Stale        int           `json:"stale"`
	Solutions    int           `json:"solutions"`
	PeakFrontier int           `json:"peak_frontier"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Result reports the outcome of a search. When Found is set, Cost, Moves and
// Final describe the cheapest solution recorded; for an aborted search that
// solution may not be optimal.
type Result struct {
	Outcome    Outcome       `json:"outcome"`
	Found      bool          `json:"found"`
	Cost       int           `json:"cost"`
	MoveCount  int           `json:"move_count"`
	Distance   int           `json:"distance"`
	Moves      []Move        `json:"moves"`
	Final      Configuration `json:"final,omitempty"`
	Reason     error         `json:"-"`
	ReasonText string        `json:"reason,omitempty"`
	Stats      Stats         `json:"stats"`
}

// Solved reports whether the search completed with a solution
func (r *Result) Solved() bool {
	return r.Outcome == OutcomeSolved
}

// node is one arena entry: a reached configuration, its cost, and the move
// that produced it from its parent.
type node struct {
	key    string
	parent int32
	cost   int
	move   Move
}

type searcher struct {
	board   *Board
	gen     *Generator
	opts    Options
	initial Configuration

	nodes []node
	table map[string]int
	front frontier
	snap  *Snapshot
	buf   []Target

	found    bool
	best     int
	bestNode int32

	stats Stats
	start time.Time
}

// Search explores every configuration reachable from initial and returns the
// cheapest way to settle all tokens. It returns an error only for malformed
// input or options; no-solution and aborted searches are reported through
// Result.Outcome.
func Search(ctx context.Context, b *Board, initial Configuration, opts ...Option) (*Result, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil board", ErrInvalidLayout)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(initial); err != nil {
		return nil, err
	}

	s := &searcher{
		board:   b,
		gen:     NewGenerator(b, o.Rules),
		opts:    o,
		initial: initial.Clone(),
		table:   make(map[string]int),
		front:   newFrontier(o.Frontier),
		snap:    b.NewSnapshot(),
	}
	return s.run(ctx), nil
}

func (s *searcher) run(ctx context.Context) *Result {
	s.start = time.Now()
	s.opts.Logger.WithFields(logrus.Fields{
		"tokens":   len(s.initial),
		"rooms":    s.board.RoomCount(),
		"depth":    s.board.Depth(),
		"frontier": s.opts.Frontier.String(),
	}).Debug("search started")

	rootKey := s.initial.Key()
	s.nodes = append(s.nodes, node{key: rootKey, parent: -1})
	s.table[rootKey] = 0
	s.front.push(0, 0)

	var deadline time.Time
	if s.opts.TimeLimit > 0 {
		deadline = s.start.Add(s.opts.TimeLimit)
	}
	var tick <-chan time.Time
	if s.opts.ProgressInterval > 0 {
		ticker := time.NewTicker(s.opts.ProgressInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for iter := 1; s.front.Len() > 0; iter++ {
		select {
		case <-ctx.Done():
			return s.abort(fmt.Errorf("%w: %v", ErrCanceled, ctx.Err()))
		case <-tick:
			s.report()
		default:
		}
		if !deadline.IsZero() && iter%256 == 0 && time.Now().After(deadline) {
			return s.abort(ErrTimeLimit)
		}
		if s.opts.MaxExpansions > 0 && s.stats.Expanded >= s.opts.MaxExpansions {
			return s.abort(ErrExpansionLimit)
		}

		idx := s.front.pop()
		cur := s.nodes[idx]
		if cur.cost > s.table[cur.key] {
			// a cheaper path to this configuration was found after it was queued
			s.stats.Stale++
			continue
		}
		if s.found && cur.cost >= s.best {
			s.stats.Pruned++
			continue
		}

		cfg := s.decode(cur.key)
		if cfg.Settled() {
			s.record(idx, cur.cost)
			continue
		}
		if err := s.expand(idx, cur, cfg); err != nil {
			return s.abort(err)
		}
	}
	return s.finish()
}

func (s *searcher) decode(key string) Configuration {
	cfg, err := DecodeConfiguration(key)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (s *searcher) expand(idx int32, cur node, cfg Configuration) error {
	s.stats.Expanded++
	if s.opts.OnExpand != nil {
		s.opts.OnExpand(cfg.Clone(), cur.cost)
	}
	if err := s.snap.Load(cfg); err != nil {
		panic(err)
	}

	for i, tok := range cfg {
		if tok.Phase == PhaseFinal {
			continue
		}
		s.buf = s.gen.AppendTargets(s.buf[:0], s.snap, tok)
		for _, t := range s.buf {
			moved, ok := advance(tok, t)
			if !ok {
				continue
			}
			s.stats.Generated++
			cost := cur.cost + s.board.MoveCost(tok.Kind, t.Steps)
			if s.found && cost >= s.best {
				s.stats.Pruned++
				continue
			}

			cfg[i] = moved
			if s.opts.LowerBound && s.found && cost+LowerBound(s.board, cfg) >= s.best {
				cfg[i] = tok
				s.stats.Pruned++
				continue
			}
			key := cfg.Key()
			cfg[i] = tok

			prev, seen := s.table[key]
			if seen && prev <= cost {
				s.stats.Dominated++
				continue
			}
			if !seen && s.opts.MaxStates > 0 && len(s.table) >= s.opts.MaxStates {
				return ErrStateLimit
			}
			s.table[key] = cost
			s.nodes = append(s.nodes, node{
				key:    key,
				parent: idx,
				cost:   cost,
				move: Move{
					Token: i,
					Kind:  tok.Kind,
					From:  tok.Pos,
					To:    t.To,
					Steps: t.Steps,
					Cost:  cost - cur.cost,
				},
			})
			s.front.push(int32(len(s.nodes)-1), cost)
			if n := s.front.Len(); n > s.stats.PeakFrontier {
				s.stats.PeakFrontier = n
			}
			if s.opts.MaxFrontier > 0 && s.front.Len() > s.opts.MaxFrontier {
				return ErrFrontierLimit
			}
		}
	}
	return nil
}

func (s *searcher) record(idx int32, cost int) {
	if s.found && cost >= s.best {
		return
	}
	s.found = true
	s.best = cost
	s.bestNode = idx
	s.stats.Solutions++
	s.opts.Logger.WithFields(logrus.Fields{
		"cost":     cost,
		"expanded": s.stats.Expanded,
		"pending":  s.front.Len(),
	}).Debug("found cheaper solution")
	if s.opts.OnSolution != nil {
		s.opts.OnSolution(cost)
	}
}

func (s *searcher) progress() Progress {
	return Progress{
		Expanded: s.stats.Expanded,
		Pending:  s.front.Len(),
		Distinct: len(s.table),
		Found:    s.found,
		Best:     s.best,
		Elapsed:  time.Since(s.start),
	}
}

func (s *searcher) report() {
	p := s.progress()
	s.opts.Logger.WithFields(logrus.Fields{
		"expanded": p.Expanded,
		"pending":  p.Pending,
		"distinct": p.Distinct,
		"found":    p.Found,
		"best":     p.Best,
	}).Debug("search progress")
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
}

// finalReport sends one last progress snapshot so subscribers see the end state
func (s *searcher) finalReport() {
	if s.opts.ProgressInterval > 0 {
		s.report()
	}
}

// path walks parent links from idx back to the root
func (s *searcher) path(idx int32) []Move {
	moves := []Move{}
	for i := idx; s.nodes[i].parent >= 0; i = s.nodes[i].parent {
		moves = append(moves, s.nodes[i].move)
	}
	slices.Reverse(moves)
	return moves
}

func (s *searcher) result() *Result {
	r := &Result{Found: s.found, Moves: []Move{}, Stats: s.stats}
	r.Stats.Distinct = len(s.table)
	r.Stats.Elapsed = time.Since(s.start)
	if s.found {
		r.Cost = s.best
		r.Moves = s.path(s.bestNode)
		r.MoveCount = len(r.Moves)
		for _, m := range r.Moves {
			r.Distance += m.Steps
		}
		r.Final = s.decode(s.nodes[s.bestNode].key)
	}
	return r
}

func (s *searcher) finish() *Result {
	s.finalReport()
	r := s.result()
	if r.Found {
		r.Outcome = OutcomeSolved
	} else {
		r.Outcome = OutcomeNoSolution
	}
	s.opts.Logger.WithFields(logrus.Fields{
		"outcome":  r.Outcome,
		"cost":     r.Cost,
		"moves":    r.MoveCount,
		"expanded": r.Stats.Expanded,
		"distinct": r.Stats.Distinct,
		"elapsed":  r.Stats.Elapsed,
	}).Info("search finished")
	return r
}

func (s *searcher) abort(reason error) *Result {
	s.finalReport()
	r := s.result()
	r.Outcome = OutcomeAborted
	r.Reason = reason
	r.ReasonText = reason.Error()
	s.opts.Logger.WithFields(logrus.Fields{
		"reason":   reason.Error(),
		"found":    r.Found,
		"best":     r.Cost,
		"expanded": r.Stats.Expanded,
		"distinct": r.Stats.Distinct,
	}).Warn("search aborted")
	return r
}
