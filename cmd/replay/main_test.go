package main

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/burrow/api"
	"github.com/wricardo/mcp-training/burrow/game/config"
	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
	"github.com/wricardo/mcp-training/burrow/game/session"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	puzzles := map[string]*engine.PuzzleConfig{
		"swap": {
			Name:        "Swap",
			Description: "two misplaced tokens",
			Layout:      []string{"#######", "#.....#", "##B#A##", " #A#B#", " #####"},
			Kinds:       "AB",
		},
		"boxed": {
			Name:        "Boxed",
			Description: "no way out",
			Layout:      []string{"#####", "#...#", "#B#A#", "#A#B#", "#####"},
			Kinds:       "AB",
		},
	}
	for id, p := range puzzles {
		data, _ := json.Marshal(p)
		if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewBurrowService(session.NewManager(), configs)
	backend := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(backend.Close)
	return backend
}

func TestRun(t *testing.T) {
	backend := newBackend(t)

	for _, frontier := range []string{"stack", "cheapest"} {
		t.Run(frontier, func(t *testing.T) {
			client := NewClient(backend.URL, 10*time.Second)
			rep, err := run(client, options{ConfigID: "swap", Frontier: frontier, TimeLimit: 5 * time.Second, Verbose: true})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if rep.Cost != 46 {
				t.Errorf("Expected energy 46, got %d", rep.Cost)
			}
			if rep.Moves != 4 {
				t.Errorf("Expected 4 moves, got %d", rep.Moves)
			}
			if rep.SessionID == "" || rep.SessionID != client.sessionID {
				t.Errorf("Expected report to carry the session ID, got %q", rep.SessionID)
			}
		})
	}
}

func TestRun_ResumesPlayedSession(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL, 10*time.Second)

	if _, err := client.CreateSession("swap"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := client.Move(0, engine.Position{Row: 1, Col: 1}); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	resumed := NewClient(backend.URL, 10*time.Second)
	resumed.sessionID = client.sessionID
	rep, err := run(resumed, options{TimeLimit: 5 * time.Second})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if rep.SessionID != client.sessionID {
		t.Errorf("Expected session %s to be reused, got %s", client.sessionID, rep.SessionID)
	}
	if rep.Cost != 46 {
		t.Errorf("Expected energy 46 after reset, got %d", rep.Cost)
	}
}

func TestRun_NoSolution(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL, 10*time.Second)

	_, err := run(client, options{ConfigID: "boxed", TimeLimit: 5 * time.Second})
	if err == nil || !strings.Contains(err.Error(), "no solution") {
		t.Fatalf("Expected no-solution error, got %v", err)
	}
}

func TestRun_UnknownConfig(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL, 10*time.Second)

	if _, err := run(client, options{ConfigID: "nope"}); err == nil {
		t.Fatal("Expected error for unknown config")
	}
	if client.sessionID != "" {
		t.Errorf("Expected no session, got %s", client.sessionID)
	}
}

func TestClient_MoveRejected(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL, 10*time.Second)

	if _, err := client.CreateSession("swap"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	result, err := client.Move(3, engine.Position{Row: 1, Col: 1})
	if err == nil {
		t.Fatal("Expected settled token move to be rejected")
	}
	if result == nil || result.Success {
		t.Errorf("Expected a failed move result, got %+v", result)
	}
}

func TestClient_MissingSession(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL, 10*time.Second)
	client.sessionID = "zzzz"

	_, err := client.GetSession()
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Expected 404 error, got %v", err)
	}
}
