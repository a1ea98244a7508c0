package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/burrow/game/engine"
)

// BurrowService defines all puzzle-related operations
type BurrowService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Puzzle Operations
	Move(ctx context.Context, sessionID string, move engine.MoveRequest, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []engine.MoveRequest, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.BurrowState, error)
	Solve(ctx context.Context, sessionID string, opts SolveOptions) (*SolveResult, error)

	// Puzzle State
	GetBurrowState(ctx context.Context, sessionID string) (*engine.BurrowState, error)
	GetLegalMoves(ctx context.Context, sessionID string) ([]engine.Move, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configID string, config *engine.PuzzleConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles puzzle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// Session represents an active burrow session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.BurrowEngine
	Config         *engine.PuzzleConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
	LastSolve      *SolveSummary
}
