package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/burrow/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func createValidConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Layout: []string{
			"#######",
			"#.....#",
			"##B#A##",
			" #A#B#",
			" #####",
		},
		Kinds: "AB",
		Messages: engine.PuzzleMessages{
			Welcome: "Welcome!",
			Solved:  "Solved for %d",
			Illegal: "Nope",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.PuzzleConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		writeConfigFile(t, dir, "classic", engine.DefaultPuzzleConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic Burrow" {
			t.Errorf("Expected classic default, got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in puzzle", func(t *testing.T) {
		manager, err := NewManager(createTestConfigDir(t))
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Name != engine.DefaultPuzzleConfig().Name {
			t.Errorf("Expected built-in default, got '%s'", defaultConfig.Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	swap := createValidConfig()
	swap.Name = "Swap"
	writeConfigFile(t, dir, "swap", swap)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("swap")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Swap" {
			t.Errorf("Expected config name 'Swap', got '%s'", config.Name)
		}
		if config.Kinds != "AB" {
			t.Errorf("Expected kinds 'AB', got '%s'", config.Kinds)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("swap.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Swap" {
			t.Errorf("Expected config name 'Swap', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("swap")
		config2, err := manager.LoadConfig("swap")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalid := createValidConfig()
		invalid.Layout[2] = "##B#B##"
		writeConfigFile(t, dir, "invalid", invalid)

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}
		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	dir := createTestConfigDir(t)

	config := createValidConfig()
	config.Name = "Only Config"
	writeConfigFile(t, dir, "only", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	got := manager.GetDefault()
	if got == nil {
		t.Fatal("Expected default config to be non-nil")
	}
	if got.Name != "Only Config" {
		t.Errorf("Expected default config name 'Only Config', got '%s'", got.Name)
	}

	if err := manager.SetDefault("missing"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)

	writeConfigFile(t, dir, "classic", engine.DefaultPuzzleConfig())
	swap := createValidConfig()
	swap.Name = "Swap"
	writeConfigFile(t, dir, "swap", swap)

	broken := createValidConfig()
	broken.Layout = []string{"###"}
	writeConfigFile(t, dir, "broken", broken)

	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(infos))
	}

	classic, swapInfo := infos[0], infos[1]
	if classic.ConfigID != "classic" || classic.Filename != "classic.json" {
		t.Errorf("Unexpected classic info: %+v", classic)
	}
	if classic.Rooms != 4 || classic.Depth != 2 || classic.Tokens != 8 {
		t.Errorf("Unexpected classic shape: rooms=%d depth=%d tokens=%d", classic.Rooms, classic.Depth, classic.Tokens)
	}
	if swapInfo.Name != "Swap" || len(swapInfo.Kinds) != 2 {
		t.Errorf("Unexpected swap info: %+v", swapInfo)
	}
	if swapInfo.LowerBound != 44 {
		t.Errorf("Expected swap lower bound 44, got %d", swapInfo.LowerBound)
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.Unfold {
		t.Error("Expected folded layout initially")
	}

	config.Description = "Now with a new description"
	writeConfigFile(t, dir, "changeable", config)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.Description != "Now with a new description" {
		t.Errorf("Expected reloaded description, got '%s'", reloaded.Description)
	}

	if err := manager.ReloadConfig("gone"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ValidateConfig(t *testing.T) {
	manager, err := NewManager(createTestConfigDir(t))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid config", func(t *testing.T) {
		if err := manager.ValidateConfig(createValidConfig()); err != nil {
			t.Errorf("Expected valid config to pass validation: %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		config := createValidConfig()
		config.Name = ""
		if err := manager.ValidateConfig(config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("too many kinds for the rooms", func(t *testing.T) {
		config := createValidConfig()
		config.Kinds = "ABC"
		if err := manager.ValidateConfig(config); err == nil {
			t.Error("Expected error for kind count mismatch")
		}
	})

	t.Run("wrong token count", func(t *testing.T) {
		config := createValidConfig()
		config.Layout = []string{
			"#######",
			"#.....#",
			"##B#A##",
			" #A#A#",
			" #####",
		}
		if err := manager.ValidateConfig(config); err == nil {
			t.Error("Expected error for unbalanced token counts")
		}
	})
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if !manager.ConfigExists("saved") {
		t.Error("Expected saved config to exist on disk")
	}

	loaded, err := engine.LoadPuzzleConfig(filepath.Join(dir, "saved.json"))
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Name != config.Name {
		t.Errorf("Expected name '%s', got '%s'", config.Name, loaded.Name)
	}

	if err := manager.SaveConfig("../escape", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for path name, got %v", err)
	}

	bad := createValidConfig()
	bad.Description = ""
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if manager.ConfigExists("bad") {
		t.Error("Invalid config must not be written")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "classic", engine.DefaultPuzzleConfig())
	writeConfigFile(t, dir, "swap", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("swap"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := manager.ListConfigs(); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "swap", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// the default load already cached swap
	if manager.Count() != 1 {
		t.Errorf("Expected 1 cached config, got %d", manager.Count())
	}

	manager.ClearCache()
	if manager.Count() != 0 {
		t.Errorf("Expected empty cache, got %d", manager.Count())
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}
	if manager.GetDefault() == nil {
		t.Error("Expected default after refresh")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 cached config after refresh, got %d", manager.Count())
	}
}
