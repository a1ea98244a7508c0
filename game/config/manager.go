package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is tried first when picking the default puzzle
const DefaultConfigName = "classic"

// Manager handles puzzle configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.PuzzleConfig
	configs       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

func normalizeName(name string) string {
	return strings.TrimSuffix(name, ".json")
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	name = normalizeName(name)

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}
	m.configs[name] = config
	return config, nil
}

func (m *Manager) readConfig(name string) (*engine.PuzzleConfig, error) {
	configPath := filepath.Join(m.configDir, name+".json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidatePuzzleConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// ReloadConfig drops the cached copy of a configuration and reads it again
func (m *Manager) ReloadConfig(name string) error {
	name = normalizeName(name)
	config, err := m.readConfig(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()
	return nil
}

// ValidateConfig checks that a configuration describes a consistent burrow
func (m *Manager) ValidateConfig(config *engine.PuzzleConfig) error {
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ConfigExists reports whether a configuration file exists on disk
func (m *Manager) ConfigExists(name string) bool {
	_, err := os.Stat(filepath.Join(m.configDir, normalizeName(name)+".json"))
	return err == nil
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// GetConfigInfo describes a single configuration
func (m *Manager) GetConfigInfo(name string) (*service.ConfigInfo, error) {
	config, err := m.LoadConfig(name)
	if err != nil {
		return nil, err
	}
	return describe(normalizeName(name), config)
}

func describe(name string, config *engine.PuzzleConfig) (*service.ConfigInfo, error) {
	board, initial, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	kinds := make([]string, 0, len(board.Kinds()))
	for _, k := range board.Kinds() {
		kinds = append(kinds, string(k.Symbol))
	}
	return &service.ConfigInfo{
		Filename:    name + ".json",
		ConfigID:    name, // identifier used for session creation
		Name:        config.Name,
		Description: config.Description,
		Rooms:       board.RoomCount(),
		Depth:       board.Depth(),
		Tokens:      len(initial),
		Kinds:       kinds,
		LowerBound:  engine.LowerBound(board, initial),
	}, nil
}

// ListConfigs returns information about all valid configurations, sorted by file name
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, normalizeName(entry.Name()))
	}
	sort.Strings(names)

	configs := []*service.ConfigInfo{}
	for _, name := range names {
		info, err := m.GetConfigInfo(name)
		if err != nil {
			// Skip invalid configs
			continue
		}
		configs = append(configs, info)
	}
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// ClearCache drops every cached configuration
func (m *Manager) ClearCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()
}

// RefreshCache clears the cache and picks the default again
func (m *Manager) RefreshCache() error {
	m.ClearCache()
	return m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic.json, then the first valid file, then the built-in puzzle
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(engine.DefaultPuzzleConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(engine.DefaultPuzzleConfig())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(config *engine.PuzzleConfig) {
	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates a configuration and writes it to disk
func (m *Manager) SaveConfig(name string, config *engine.PuzzleConfig) error {
	if err := m.ValidateConfig(config); err != nil {
		return err
	}

	name = normalizeName(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}
	configPath := filepath.Join(m.configDir, name+".json")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}
