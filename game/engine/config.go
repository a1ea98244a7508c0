package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PuzzleMessages are the texts shown to players
type PuzzleMessages struct {
	Welcome string `json:"welcome"`
	Solved  string `json:"solved"`
	Illegal string `json:"illegal"`
}

// PuzzleConfig represents a burrow puzzle loaded from JSON
type PuzzleConfig struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Layout      []string       `json:"layout"`
	Kinds       string         `json:"kinds,omitempty"`
	Multipliers []int          `json:"multipliers,omitempty"`
	Unfold      bool           `json:"unfold,omitempty"`
	ExtraRows   []string       `json:"extra_rows,omitempty"`
	Messages    PuzzleMessages `json:"messages"`
}

const (
	defaultWelcome = "Move every amphipod home for the least energy."
	defaultSolved  = "Burrow organized! Total energy: %d"
	defaultIllegal = "That move is not allowed."
)

// Diagram returns the layout, unfolded when the config asks for it
func (c *PuzzleConfig) Diagram() []string {
	if c.Unfold {
		return Unfold(c.Layout, c.ExtraRows)
	}
	return append([]string(nil), c.Layout...)
}

// KindTable builds the kind table of the puzzle
func (c *PuzzleConfig) KindTable() (Kinds, error) {
	symbols := c.Kinds
	if symbols == "" {
		symbols = DefaultKindSymbols
	}
	return NewKinds(symbols, c.Multipliers)
}

// Build parses the puzzle into a board and its initial configuration
func (c *PuzzleConfig) Build() (*Board, Configuration, error) {
	kinds, err := c.KindTable()
	if err != nil {
		return nil, nil, err
	}
	return ParseDiagram(c.Diagram(), kinds)
}

// WelcomeMessage returns the configured welcome text or the default
func (c *PuzzleConfig) WelcomeMessage() string {
	if c.Messages.Welcome != "" {
		return c.Messages.Welcome
	}
	return defaultWelcome
}

// SolvedMessage formats the solved text with the total cost
func (c *PuzzleConfig) SolvedMessage(cost int) string {
	msg := c.Messages.Solved
	if msg == "" {
		msg = defaultSolved
	}
	return fmt.Sprintf(msg, cost)
}

// IllegalMessage returns the text shown for a rejected move
func (c *PuzzleConfig) IllegalMessage() string {
	if c.Messages.Illegal != "" {
		return c.Messages.Illegal
	}
	return defaultIllegal
}

// ValidatePuzzleConfig checks required fields and that the layout parses into a consistent burrow
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return ErrNilConfig
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if len(config.Layout) == 0 {
		return fmt.Errorf("config validation: layout is required")
	}
	if config.Messages.Solved != "" && !strings.Contains(config.Messages.Solved, "%d") {
		return fmt.Errorf("config validation: messages.solved must contain %%d for the total cost")
	}
	if _, _, err := config.Build(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// LoadPuzzleConfig loads a puzzle configuration from a JSON file
func LoadPuzzleConfig(filename string) (*PuzzleConfig, error) {
	// CONFIG_DIR replaces a leading "configs/"
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigByName loads a puzzle configuration by name from the configs directory
func LoadConfigByName(configName string) (*PuzzleConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}
	configPath := filepath.Join("configs", configName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}
	config, err := LoadPuzzleConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// DefaultPuzzleConfig returns the built-in two-deep, four-room puzzle
func DefaultPuzzleConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:        "Classic Burrow",
		Description: "Four rooms, two deep, with amber, bronze, copper and desert amphipods",
		Layout: []string{
			"#############",
			"#...........#",
			"###B#C#B#D###",
			"  #A#D#C#A#",
			"  #########",
		},
		Kinds: DefaultKindSymbols,
		Messages: PuzzleMessages{
			Welcome: defaultWelcome,
			Solved:  defaultSolved,
			Illegal: defaultIllegal,
		},
	}
}
