package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
)

const sessionExt = ".json"

// FilePersistence keeps one indented JSON file per session in a directory
type FilePersistence struct {
	dir     string
	configs service.ConfigManager
}

// NewFilePersistence stores sessions under dir, creating it if needed. configs
// resolves the puzzle a stored session was started on.
func NewFilePersistence(dir string, configs service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir, configs: configs}, nil
}

func (p *FilePersistence) path(id string) string {
	return filepath.Join(p.dir, id+sessionExt)
}

// Save replaces the session file atomically
func (p *FilePersistence) Save(sess *service.Session) error {
	if sess == nil {
		return errors.New("session cannot be nil")
	}
	if !validID(sess.ID) {
		return ErrInvalidSessionID
	}

	configID := sess.ConfigID
	if configID == "" {
		id, err := p.configIDFor(sess.Config.Name)
		if err != nil {
			return fmt.Errorf("failed to get config ID: %w", err)
		}
		configID = id
	}

	payload, err := json.MarshalIndent(PersistedSessionData{
		ID:             sess.ID,
		ConfigID:       configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BurrowState:    sess.Engine.GetState(),
		LastSolve:      sess.LastSolve,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	target := p.path(sess.ID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads a session file, rebuilds the engine from its puzzle and restores
// the recorded burrow state onto it.
func (p *FilePersistence) Load(id string) (*service.Session, error) {
	if !validID(id) {
		return nil, ErrInvalidSessionID
	}

	raw, err := os.ReadFile(p.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var stored PersistedSessionData
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	puzzle, err := p.configs.LoadConfig(stored.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", stored.ConfigID, err)
	}
	eng, err := engine.NewEngine(puzzle)
	if err != nil {
		return nil, fmt.Errorf("failed to create burrow engine: %w", err)
	}
	if stored.BurrowState != nil {
		if err := eng.SetState(stored.BurrowState); err != nil {
			return nil, fmt.Errorf("failed to set burrow state: %w", err)
		}
	}

	return &service.Session{
		ID:             stored.ID,
		ConfigID:       stored.ConfigID,
		Engine:         eng,
		Config:         puzzle,
		CreatedAt:      stored.CreatedAt,
		LastAccessedAt: stored.LastAccessedAt,
		LastSolve:      stored.LastSolve,
	}, nil
}

func (p *FilePersistence) Delete(id string) error {
	if !p.Exists(id) {
		return ErrSessionNotFound
	}
	if err := os.Remove(p.path(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the IDs of every session file in the directory
func (p *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if id, ok := strings.CutSuffix(e.Name(), sessionExt); ok && !e.IsDir() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (p *FilePersistence) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	_, err := os.Stat(p.path(id))
	return err == nil
}

// configIDFor maps a puzzle display name to its config ID. Unknown names are
// taken to be IDs already.
func (p *FilePersistence) configIDFor(name string) (string, error) {
	infos, err := p.configs.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}
	for _, info := range infos {
		if info.Name == name {
			return info.ConfigID, nil
		}
	}
	return name, nil
}
