package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/burrow/game/engine"
)

func createTestConfig() *engine.PuzzleConfig {
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
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "swap", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.ConfigID != "swap" {
			t.Errorf("Expected config ID 'swap', got '%s'", session.ConfigID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "swap", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", "swap", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "swap", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		for _, id := range []string{"../x", "a/b", " pad"} {
			if _, err := manager.Create(id, "swap", config); err != ErrInvalidSessionID {
				t.Errorf("Expected ErrInvalidSessionID for %q, got %v", id, err)
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = ""
		if _, err := manager.Create("invalid-test", "swap", invalidConfig); err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("get-test", "swap", createTestConfig())

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the created session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		if _, err := manager.Get("missing"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("shared", "swap", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("SHARED", "swap", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected GetOrCreate to return the existing session")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	for _, id := range []string{"a1", "b2", "c3"} {
		if _, err := manager.Create(id, "swap", config); err != nil {
			t.Fatalf("Failed to create session %s: %v", id, err)
		}
	}

	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}

	if err := manager.Delete("B2"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("b2"); err != ErrSessionNotFound {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
	if err := manager.Delete("b2"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if err := manager.DeleteFromMemory("zz"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", manager.Count())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("touch", "swap", createTestConfig())
	before := session.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected last accessed time to advance")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	// Save without persistence is a no-op
	if err := manager.Save("touch"); err != nil {
		t.Errorf("Expected nil from Save without persistence, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	old, _ := manager.Create("old", "swap", config)
	manager.Create("fresh", "swap", config)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Fresh session should remain: %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", "swap", config)
			if err != nil {
				t.Errorf("Concurrent create failed: %v", err)
				return
			}
			ids <- session.ID
			manager.Get(strings.ToUpper(session.ID))
			manager.UpdateLastAccessed(session.ID)
			manager.List()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate session ID generated: %s", id)
		}
		seen[id] = true
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}
