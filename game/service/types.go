package service

import (
	"time"

	"github.com/wricardo/mcp-training/burrow/game/engine"
)

// SessionInfo provides information about a burrow session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	BurrowState    *engine.BurrowState  `json:"burrow_state"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
	LastSolve      *SolveSummary        `json:"last_solve,omitempty"`
}

// MoveResult contains the result of a single move
type MoveResult struct {
	Success     bool                `json:"success"`
	BurrowState *engine.BurrowState `json:"burrow_state"`
	Message     string              `json:"message"`
	Events      []BurrowEvent       `json:"events,omitempty"`
	Move        *engine.Move        `json:"move,omitempty"`
	Error       string              `json:"error,omitempty"`
	// LegalTargets lists where the token could have gone instead, when the move was rejected
	LegalTargets []engine.Position `json:"legal_targets,omitempty"`
}

// BulkMoveResult contains the result of several moves applied in order
type BulkMoveResult struct {
	MovesExecuted  int                 `json:"moves_executed"`
	RequestedMoves int                 `json:"requested_moves"`
	Success        bool                `json:"success"`
	BurrowState    *engine.BurrowState `json:"burrow_state"`
	Events         []BurrowEvent       `json:"events"`
	StoppedReason  string              `json:"stopped_reason,omitempty"`
	StopReasonCode string              `json:"stop_reason_code,omitempty"` // illegal_move|no_such_token|token_final|solved
	StoppedOnMove  int                 `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused the stop
	Truncated      bool                `json:"truncated,omitempty"`
	Limit          int                 `json:"limit,omitempty"`

	StartCost int `json:"start_cost"`
	EndCost   int `json:"end_cost"`
	CostDelta int `json:"cost_delta"`

	// Steps holds the executed moves of this call
	Steps []engine.Move `json:"steps,omitempty"`

	Solved     bool          `json:"solved"`
	Message    string        `json:"message,omitempty"`
	LegalMoves []engine.Move `json:"legal_moves,omitempty"`
}

// BurrowEvent represents something that happened during play
type BurrowEvent struct {
	Type      string          `json:"type"` // "move", "settled", "solved", "reset", "illegal_move", "solution_applied"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`      // Display name
	Description string   `json:"description"`
	Rooms       int      `json:"rooms"`
	Depth       int      `json:"depth"`
	Tokens      int      `json:"tokens"`
	Kinds       []string `json:"kinds"`
	LowerBound  int      `json:"lower_bound"`
}

// Budgets applied to a solver run whose request leaves them at zero
const (
	DefaultSolveTimeLimit = 2 * time.Minute
	DefaultSolveMaxStates = 5_000_000
)

// SolveOptions controls a solver run on a session. A zero TimeLimitMS or
// MaxStates falls back to the service defaults.
type SolveOptions struct {
	// FromStart searches from the initial configuration instead of the current one
	FromStart bool `json:"from_start,omitempty"`
	// Apply replays the solution onto the session when one is found
	Apply         bool   `json:"apply,omitempty"`
	Frontier      string `json:"frontier,omitempty"` // "stack" (default) or "cheapest"
	LowerBound    bool   `json:"lower_bound,omitempty"`
	TimeLimitMS   int    `json:"time_limit_ms,omitempty"`
	MaxStates     int    `json:"max_states,omitempty"`
	MaxExpansions int    `json:"max_expansions,omitempty"`

	ProgressInterval time.Duration         `json:"-"`
	OnProgress       func(engine.Progress) `json:"-"`
}

// WithDefaults fills the zero time and state budgets
func (o SolveOptions) WithDefaults() SolveOptions {
	if o.TimeLimitMS == 0 {
		o.TimeLimitMS = int(DefaultSolveTimeLimit / time.Millisecond)
	}
	if o.MaxStates == 0 {
		o.MaxStates = DefaultSolveMaxStates
	}
	return o
}

// SolveSummary is the compact record of the last solver run kept with a session
type SolveSummary struct {
	Outcome   engine.Outcome `json:"outcome"`
	Found     bool           `json:"found"`
	Cost      int            `json:"cost"`
	MoveCount int            `json:"move_count"`
	Distance  int            `json:"distance"`
	Reason    string         `json:"reason,omitempty"`
	FromStart bool           `json:"from_start"`
	Applied   bool           `json:"applied"`
	Stats     engine.Stats   `json:"stats"`
	SolvedAt  time.Time      `json:"solved_at"`
}

// SolveResult is returned by BurrowService.Solve
type SolveResult struct {
	Result      *engine.Result      `json:"result"`
	Summary     *SolveSummary       `json:"summary"`
	Steps       []string            `json:"steps"`
	Applied     bool                `json:"applied"`
	BurrowState *engine.BurrowState `json:"burrow_state"`
}
