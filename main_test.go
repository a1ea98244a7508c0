package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/burrow/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Amphipod Burrow Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func withDirs(t *testing.T, configs, sessions string) {
	t.Helper()
	origConfig, origSessions := *configDir, *sessionsDir
	*configDir, *sessionsDir = configs, sessions
	t.Cleanup(func() {
		*configDir, *sessionsDir = origConfig, origSessions
	})
}

func TestInitializeServices(t *testing.T) {
	withDirs(t, t.TempDir(), t.TempDir())

	burrowService, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if burrowService == nil {
		t.Fatal("Expected burrow service to be initialized")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	withDirs(t, "/non/existent/path", t.TempDir())

	if _, err := initializeServices(); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
	if *sessionsDir == "" {
		t.Error("Sessions directory should have a default value")
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("BURROW_TEST_DIR", "elsewhere")
	if got := envDefault("BURROW_TEST_DIR", "configs"); got != "elsewhere" {
		t.Errorf("Expected env value, got %s", got)
	}
	if got := envDefault("BURROW_TEST_UNSET", "configs"); got != "configs" {
		t.Errorf("Expected fallback, got %s", got)
	}
}

func TestMCPEndpoint(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mux := newMux(api, mcp.NewClient("http://127.0.0.1:1"))

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})

	t.Run("initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Amphipod Burrow") {
			t.Errorf("Expected server info in response, got %s", rec.Body.String())
		}
	})

	t.Run("other paths reach the API", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("Expected API handler, got %d", rec.Code)
		}
	})
}

func TestAPIAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if !apiAvailable(healthy.URL) {
		t.Error("Expected healthy server to be available")
	}

	healthy.Close()
	if apiAvailable(healthy.URL) {
		t.Error("Expected closed server to be unavailable")
	}
}
