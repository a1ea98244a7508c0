package engine

import (
	"context"
	"fmt"
	"time"
)

// Engine provides the main interface for interactive burrow sessions
type Engine interface {
	// State management
	GetState() *BurrowState
	SetState(state *BurrowState) error
	Reset() *BurrowState
	IsSolved() bool
	GetCost() int
	GetConfiguration() Configuration
	Board() *Board

	// Movement operations
	Move(token int, to Position) (Move, error)
	CanMove(token int, to Position) bool
	GetLegalMoves() []Move

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Solving
	Solve(ctx context.Context, fromStart bool, opts ...Option) (*Result, error)
}

// BurrowEngine implements the Engine interface
type BurrowEngine struct {
	config  *PuzzleConfig
	board   *Board
	initial Configuration
	rules   Rules
	gen     *Generator
	snap    *Snapshot
	state   *BurrowState
}

// NewEngine creates a burrow engine under the standard rules
func NewEngine(config *PuzzleConfig) (*BurrowEngine, error) {
	return NewEngineWithRules(config, StandardRules())
}

// NewEngineWithRules creates a burrow engine with custom legality predicates
func NewEngineWithRules(config *PuzzleConfig, rules Rules) (*BurrowEngine, error) {
	e := &BurrowEngine{rules: rules.withDefaults()}
	if err := e.SetConfig(config); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine on the built-in puzzle
func NewEngineWithDefaults() *BurrowEngine {
	e, err := NewEngine(DefaultPuzzleConfig())
	if err != nil {
		panic("engine: built-in puzzle is invalid: " + err.Error())
	}
	return e
}

// GetState returns the current state
func (e *BurrowEngine) GetState() *BurrowState {
	return e.state
}

// SetState replaces the state after checking its tokens against the board (used for persistence loading)
func (e *BurrowEngine) SetState(state *BurrowState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Tokens) != len(e.initial) {
		return fmt.Errorf("%w: state has %d tokens, puzzle has %d", ErrTokenCount, len(state.Tokens), len(e.initial))
	}
	for i, t := range state.Tokens {
		if t.Kind != e.initial[i].Kind {
			return fmt.Errorf("%w: token %d changed kind", ErrInvalidKinds, i)
		}
	}
	if err := e.board.Validate(state.Tokens); err != nil {
		return err
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}
	e.state = state
	e.refresh()
	return nil
}

// Reset restores the initial configuration, keeping the cumulative history
func (e *BurrowEngine) Reset() *BurrowState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = e.newState()

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	return e.state
}

// IsSolved reports whether every token is home
func (e *BurrowEngine) IsSolved() bool {
	return e.state.Solved
}

// GetCost returns the energy spent since the last reset
func (e *BurrowEngine) GetCost() int {
	return e.state.Cost
}

// GetConfiguration returns a copy of the current configuration
func (e *BurrowEngine) GetConfiguration() Configuration {
	return e.state.Tokens.Clone()
}

// GetInitialConfiguration returns a copy of the configuration the puzzle starts from
func (e *BurrowEngine) GetInitialConfiguration() Configuration {
	return e.initial.Clone()
}

// Board returns the puzzle topology
func (e *BurrowEngine) Board() *Board {
	return e.board
}

// Rules returns the legality predicates of the engine
func (e *BurrowEngine) Rules() Rules {
	return e.rules
}

// Move relocates a token. Rejected moves are still recorded in the history.
func (e *BurrowEngine) Move(token int, to Position) (Move, error) {
	cfg := e.state.Tokens
	var from Position
	if token >= 0 && token < len(cfg) {
		from = cfg[token].Pos
	}

	if err := e.snap.Load(cfg); err != nil {
		return Move{}, err
	}
	t, err := e.gen.Find(e.snap, cfg, token, to)
	if err != nil {
		e.state.Message = fmt.Sprintf("%s %v", e.config.IllegalMessage(), err)
		e.state.AddMoveToHistory(MoveHistoryEntry{Token: token, Symbol: e.symbolOf(token), From: from, To: to})
		return Move{}, err
	}
	next, m, err := e.gen.Apply(cfg, token, t)
	if err != nil {
		return Move{}, err
	}

	e.state.Tokens = next
	e.state.Cost += m.Cost
	e.state.AddMoveToHistory(MoveHistoryEntry{
		Token:   token,
		Symbol:  e.symbolOf(token),
		From:    m.From,
		To:      m.To,
		Steps:   m.Steps,
		Cost:    m.Cost,
		Phase:   next[token].Phase,
		Success: true,
	})
	e.refresh()
	if e.state.Solved {
		e.state.Message = e.config.SolvedMessage(e.state.Cost)
	} else {
		e.state.Message = fmt.Sprintf("Moved %s from %s to %s for %d energy", e.symbolOf(token), m.From, m.To, m.Cost)
	}
	return m, nil
}

// CanMove checks whether token may move to the given cell
func (e *BurrowEngine) CanMove(token int, to Position) bool {
	if err := e.snap.Load(e.state.Tokens); err != nil {
		return false
	}
	_, err := e.gen.Find(e.snap, e.state.Tokens, token, to)
	return err == nil
}

// GetLegalMoves returns every legal move in the current configuration
func (e *BurrowEngine) GetLegalMoves() []Move {
	if err := e.snap.Load(e.state.Tokens); err != nil {
		return nil
	}
	return e.gen.Moves(e.snap, e.state.Tokens)
}

// GetConfig returns the current puzzle configuration
func (e *BurrowEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig loads a new puzzle and resets the state
func (e *BurrowEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidatePuzzleConfig(config); err != nil {
		return err
	}
	board, initial, err := config.Build()
	if err != nil {
		return err
	}
	e.config = config
	e.board = board
	e.initial = initial
	e.gen = NewGenerator(board, e.rules)
	e.snap = board.NewSnapshot()
	e.state = e.newState()
	return nil
}

// GetMoveHistory returns the cumulative move history
func (e *BurrowEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move attempted, or nil if none
func (e *BurrowEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BulkMove applies requests in order and stops at the first rejected move.
// The returned slice holds one entry per attempted move.
func (e *BurrowEngine) BulkMove(requests []MoveRequest) []bool {
	results := make([]bool, 0, len(requests))
	for _, req := range requests {
		if e.IsSolved() {
			break
		}
		_, err := e.Move(req.Token, req.To)
		results = append(results, err == nil)
		if err != nil {
			break
		}
	}
	return results
}

// Solve searches for the cheapest solution from the current configuration, or
// from the initial one when fromStart is set. The session state is not changed.
func (e *BurrowEngine) Solve(ctx context.Context, fromStart bool, opts ...Option) (*Result, error) {
	start := e.state.Tokens
	if fromStart {
		start = e.initial
	}
	return Search(ctx, e.board, start, append([]Option{WithRules(e.rules)}, opts...)...)
}

// ApplySolution replays a solved result onto the session. With fromStart the
// session is reset first, matching a Solve call made with fromStart.
func (e *BurrowEngine) ApplySolution(result *Result, fromStart bool) error {
	if result == nil || !result.Found {
		return fmt.Errorf("no solution to apply")
	}
	if fromStart {
		e.Reset()
	}
	for i, m := range result.Moves {
		if _, err := e.Move(m.Token, m.To); err != nil {
			return fmt.Errorf("solution move %d: %w", i+1, err)
		}
	}
	return nil
}

func (e *BurrowEngine) symbolOf(token int) string {
	if token < 0 || token >= len(e.initial) {
		return "?"
	}
	return string(e.board.Kinds().Symbol(e.initial[token].Kind))
}

func (e *BurrowEngine) newState() *BurrowState {
	e.state = &BurrowState{
		Tokens:       e.initial.Clone(),
		Message:      e.config.WelcomeMessage(),
		ConfigName:   e.config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	e.refresh()
	return e.state
}

// refresh recomputes the derived fields of the state
func (e *BurrowEngine) refresh() {
	st := e.state
	if err := e.snap.Load(st.Tokens); err == nil {
		st.Diagram = RenderSnapshot(e.snap)
	}
	st.Settled = st.Tokens.CountFinal()
	st.Remaining = len(st.Tokens) - st.Settled
	st.Solved = st.Tokens.Settled()
	st.LowerBound = LowerBound(e.board, st.Tokens)
	st.ConfigName = e.config.Name
}

// AddMoveToHistory appends an attempted move to both the cumulative and the current history
func (st *BurrowState) AddMoveToHistory(entry MoveHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = st.TotalMoves + 1

	st.MoveHistory = append(st.MoveHistory, entry)
	st.TotalMoves++

	st.CurrentMoves = append(st.CurrentMoves, entry)
	st.CurrentMovesCount++
}
