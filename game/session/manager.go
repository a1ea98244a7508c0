package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps burrow sessions in memory keyed by lower-cased ID, with an
// optional store behind it.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*service.Session
	store    SessionPersistence
	log      logrus.FieldLogger
}

func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence writes every created session through store and
// falls back to it on lookups that miss memory.
func NewManagerWithPersistence(store SessionPersistence) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		store:    store,
		log:      logrus.StandardLogger().WithField("component", "sessions"),
	}
}

func key(id string) string { return strings.ToLower(id) }

// validID rejects IDs that cannot be used as a file name
func validID(id string) bool {
	return id != "" && len(id) <= 64 && !strings.ContainsAny(id, `/\.`) && strings.TrimSpace(id) == id
}

// Create starts a session on config. An empty id gets a random 4-character one.
func (m *Manager) Create(id, configID string, config *engine.PuzzleConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.freshID()
	}
	if !validID(id) {
		return nil, ErrInvalidSessionID
	}
	if _, taken := m.sessions[key(id)]; taken {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess

	if m.store != nil {
		if err := m.store.Save(sess); err != nil {
			m.log.WithError(err).WithField("session", id).Warn("session kept in memory only")
		}
	}
	return sess, nil
}

// Get looks id up case-insensitively, loading it from the store on a miss
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.store == nil || !validID(id) || !m.store.Exists(id) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.sessions[key(id)]; ok {
		return cached, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

func (m *Manager) GetOrCreate(id, configID string, config *engine.PuzzleConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, ErrSessionNotFound):
		return m.Create(id, configID, config)
	default:
		return nil, err
	}
}

// List returns the sessions held in memory, in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Delete drops a session from memory and removes its stored copy
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, inMemory := m.sessions[key(id)]
	if inMemory {
		delete(m.sessions, key(id))
		id = sess.ID
	}

	if m.store != nil && validID(id) && m.store.Exists(id) {
		if err := m.store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session but leaves the store untouched
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// Save writes one in-memory session to the store. Without a store it is a no-op.
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.store.Save(sess)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many went. Stored copies survive.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	evicted := 0
	for k, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			evicted++
		}
	}
	return evicted
}

// PruneMissing evicts in-memory sessions whose stored file was removed
func (m *Manager) PruneMissing() int {
	if m.store == nil {
		return 0
	}

	pruned := 0
	for _, sess := range m.List() {
		if m.store.Exists(sess.ID) {
			continue
		}
		if err := m.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			m.log.WithField("session", sess.ID).Info("evicted session whose file is gone")
		}
	}
	return pruned
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// freshID returns an unused 4-character hex ID. Callers hold m.mu.
func (m *Manager) freshID() string {
	buf := make([]byte, 2)
	for {
		rand.Read(buf)
		id := hex.EncodeToString(buf)
		if _, taken := m.sessions[id]; taken {
			continue
		}
		if m.store == nil || !m.store.Exists(id) {
			return id
		}
	}
}

// LoadPersistedSessions pulls every stored session that is not already in
// memory. Files that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}
		sess, err := m.store.Load(id)
		if err != nil {
			m.log.WithError(err).WithField("session", id).Warn("skipping unreadable session file")
			continue
		}
		m.sessions[key(id)] = sess
		loaded++
	}

	if loaded > 0 {
		m.log.WithField("count", loaded).Info("restored persisted sessions")
	}
	return nil
}

// SaveAllSessions writes every in-memory session, reporting how many failed
func (m *Manager) SaveAllSessions() error {
	if m.store == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.store.Save(sess); err != nil {
			m.log.WithError(err).WithField("session", sess.ID).Warn("failed to save session")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
