package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/burrow/game/engine"
)

// ErrSolutionStale is returned when a session changed while its solve was running
var ErrSolutionStale = errors.New("session changed while solving")

// burrowServiceImpl implements the BurrowService interface
type burrowServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   logrus.FieldLogger
	mu       sync.RWMutex
}

// ServiceOption configures a BurrowService
type ServiceOption func(*burrowServiceImpl)

// WithSearchLogger sends solver progress and summary lines to l
func WithSearchLogger(l logrus.FieldLogger) ServiceOption {
	return func(s *burrowServiceImpl) { s.logger = l }
}

// getConfigID returns the config_id for a given display name, used for consistent API responses
func (s *burrowServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	return sess.Config.Name
}

// NewBurrowService creates a new burrow service instance
func NewBurrowService(sessions SessionManager, configs ConfigManager, opts ...ServiceOption) BurrowService {
	s := &burrowServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *burrowServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BurrowState:    sess.Engine.GetState(),
		PuzzleConfig:   sess.Config,
		LastSolve:      sess.LastSolve,
	}
}

// CreateSession creates a new burrow session
func (s *burrowServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	var err error
	configID := strings.TrimSuffix(configName, ".json")
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.lookupConfigID(config.Name)
	}

	// Let the session manager generate a 4-character ID
	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.info(session), nil
}

func (s *burrowServiceImpl) lookupConfigID(name string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == name {
				return cfg.ConfigID
			}
		}
	}
	return "default"
}

func (s *burrowServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *burrowServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s after %s: %v", sessionID, after, err)
	}
}

// GetSession retrieves session information
func (s *burrowServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *burrowServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *burrowServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session. A rejected move is not an error:
// the result carries success=false and the reason.
func (s *burrowServiceImpl) Move(ctx context.Context, sessionID string, move engine.MoveRequest, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	events := []BurrowEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	m, err := sess.Engine.Move(move.Token, move.To)
	state := sess.Engine.GetState()
	result := &MoveResult{
		Success:     err == nil,
		BurrowState: state,
		Message:     state.Message,
		Events:      events,
	}

	if err != nil {
		result.Error = err.Error()
		result.Events = append(result.Events, BurrowEvent{
			Type:      "illegal_move",
			Message:   fmt.Sprintf("token %d cannot move to %s: %v", move.Token, move.To, err),
			Timestamp: time.Now(),
			Position:  move.To,
		})
		result.LegalTargets = legalTargets(sess.Engine, move.Token)
	} else {
		result.Move = &m
		result.Events = append(result.Events, moveEvents(sess.Engine, m)...)
	}

	s.persist(sessionID, "move")
	return result, nil
}

// BulkMove executes moves in sequence, stopping at the first rejected one
func (s *burrowServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []engine.MoveRequest, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]BurrowEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}
	result.StartCost = sess.Engine.GetCost()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, req := range moves {
		if sess.Engine.IsSolved() {
			result.StoppedReason = "burrow already solved"
			result.StopReasonCode = "solved"
			result.StoppedOnMove = i + 1
			break
		}

		m, err := sess.Engine.Move(req.Token, req.To)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d rejected: %v", i+1, err)
			result.StopReasonCode = stopCode(err)
			result.StoppedOnMove = i + 1
			result.Events = append(result.Events, BurrowEvent{
				Type:      "illegal_move",
				Message:   result.StoppedReason,
				Timestamp: time.Now(),
				Position:  req.To,
			})
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, m)
		result.Events = append(result.Events, moveEvents(sess.Engine, m)...)
	}

	endState := sess.Engine.GetState()
	result.BurrowState = endState
	result.EndCost = endState.Cost
	result.CostDelta = result.EndCost - result.StartCost
	result.Solved = endState.Solved
	result.Message = endState.Message
	result.LegalMoves = sess.Engine.GetLegalMoves()

	s.persist(sessionID, "bulk moves")
	return result, nil
}

// Reset restores a session to its initial configuration
func (s *burrowServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.BurrowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	s.persist(sessionID, "reset")
	return state, nil
}

// GetBurrowState retrieves the current burrow state
func (s *burrowServiceImpl) GetBurrowState(ctx context.Context, sessionID string) (*engine.BurrowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetLegalMoves lists every legal move in the current configuration
func (s *burrowServiceImpl) GetLegalMoves(ctx context.Context, sessionID string) ([]engine.Move, error) {
	// the engine reuses its snapshot buffer, so even reads take the write lock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	moves := sess.Engine.GetLegalMoves()
	if moves == nil {
		moves = []engine.Move{}
	}
	return moves, nil
}

// GetMoveHistory returns paginated move history
func (s *burrowServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Solve runs the search for a session. The service lock is released while the
// search runs, so other sessions stay responsive.
func (s *burrowServiceImpl) Solve(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error) {
	searchOpts, err := opts.engineOptions()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	board := sess.Engine.Board()
	start := sess.Engine.GetConfiguration()
	if opts.FromStart {
		start = sess.Engine.GetInitialConfiguration()
	}
	searchOpts = append([]engine.Option{engine.WithRules(sess.Engine.Rules())}, searchOpts...)
	if s.logger != nil {
		searchOpts = append(searchOpts, engine.WithLogger(s.logger.WithField("session", sessionID)))
	}
	s.mu.Unlock()

	res, err := engine.Search(ctx, board, start, searchOpts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err = s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	summary := &SolveSummary{
		Outcome:   res.Outcome,
		Found:     res.Found,
		Cost:      res.Cost,
		MoveCount: res.MoveCount,
		Distance:  res.Distance,
		Reason:    res.ReasonText,
		FromStart: opts.FromStart,
		Stats:     res.Stats,
		SolvedAt:  time.Now(),
	}

	if opts.Apply && res.Found {
		if sess.Engine.Board() != board || (!opts.FromStart && !sess.Engine.GetConfiguration().Equal(start)) {
			return nil, ErrSolutionStale
		}
		if err := sess.Engine.ApplySolution(res, opts.FromStart); err != nil {
			return nil, fmt.Errorf("failed to apply solution: %w", err)
		}
		summary.Applied = true
	}
	sess.LastSolve = summary

	steps := make([]string, 0, len(res.Moves))
	for _, m := range res.Moves {
		steps = append(steps, engine.FormatMove(board, m))
	}

	s.persist(sessionID, "solve")
	return &SolveResult{
		Result:      res,
		Summary:     summary,
		Steps:       steps,
		Applied:     summary.Applied,
		BurrowState: sess.Engine.GetState(),
	}, nil
}

func (o SolveOptions) engineOptions() ([]engine.Option, error) {
	frontier, err := engine.ParseFrontier(o.Frontier)
	if err != nil {
		return nil, err
	}
	if o.TimeLimitMS < 0 || o.MaxStates < 0 || o.MaxExpansions < 0 {
		return nil, fmt.Errorf("%w: limits must not be negative", engine.ErrBadOption)
	}
	o = o.WithDefaults()
	opts := []engine.Option{
		engine.WithFrontier(frontier),
		engine.WithMaxStates(o.MaxStates),
		engine.WithMaxExpansions(o.MaxExpansions),
		engine.WithTimeLimit(time.Duration(o.TimeLimitMS) * time.Millisecond),
	}
	if o.LowerBound {
		opts = append(opts, engine.WithLowerBound())
	}
	if o.OnProgress != nil {
		interval := o.ProgressInterval
		if interval <= 0 {
			interval = 500 * time.Millisecond
		}
		opts = append(opts, engine.WithProgress(interval, o.OnProgress))
	}
	return opts, nil
}

// ListConfigs returns available puzzle configurations
func (s *burrowServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle configuration
func (s *burrowServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle configuration to disk
func (s *burrowServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func resetEvent() BurrowEvent {
	return BurrowEvent{
		Type:      "reset",
		Message:   "Burrow reset to initial configuration",
		Timestamp: time.Now(),
	}
}

// moveEvents describes an applied move
func moveEvents(eng *engine.BurrowEngine, m engine.Move) []BurrowEvent {
	now := time.Now()
	events := []BurrowEvent{{
		Type:      "move",
		Message:   engine.FormatMove(eng.Board(), m),
		Timestamp: now,
		Position:  m.To,
	}}

	state := eng.GetState()
	if state.Tokens[m.Token].Phase == engine.PhaseFinal {
		events = append(events, BurrowEvent{
			Type:      "settled",
			Message:   fmt.Sprintf("Token %d is home (%d/%d settled)", m.Token, state.Settled, len(state.Tokens)),
			Timestamp: now,
			Position:  m.To,
		})
	}
	if state.Solved {
		events = append(events, BurrowEvent{
			Type:      "solved",
			Message:   state.Message,
			Timestamp: now,
		})
	}
	return events
}

func legalTargets(eng *engine.BurrowEngine, token int) []engine.Position {
	var targets []engine.Position
	for _, m := range eng.GetLegalMoves() {
		if m.Token == token {
			targets = append(targets, m.To)
		}
	}
	return targets
}

func stopCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrNoSuchToken):
		return "no_such_token"
	case errors.Is(err, engine.ErrTokenFinal):
		return "token_final"
	default:
		return "illegal_move"
	}
}
