package session

import (
	"time"

	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
)

// SessionPersistence stores sessions outside the process. IDs passed in have
// already been checked with validID.
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a session. The engine is
// rebuilt from ConfigID and then moved to BurrowState.
type PersistedSessionData struct {
	ID             string                `json:"id"`
	ConfigID       string                `json:"config_id"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	BurrowState    *engine.BurrowState   `json:"burrow_state"`
	LastSolve      *service.SolveSummary `json:"last_solve,omitempty"`
}
