// Command replay checks a running burrow server end to end: it asks the
// server to solve a session, replays the solution one /move at a time and
// verifies that the session ends organized at the promised energy.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wricardo/mcp-training/burrow/game/service"
)

// options for one replay run
type options struct {
	ConfigID  string
	Frontier  string
	TimeLimit time.Duration
	Delay     time.Duration
	Verbose   bool
}

// report summarizes a verified replay
type report struct {
	SessionID string
	Moves     int
	Cost      int
	Expanded  int
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Burrow server URL")
	configID := flag.String("config", "", "Puzzle configuration ID (server default when empty)")
	continueSession := flag.String("continue", "", "Replay into an existing session by ID")
	frontier := flag.String("frontier", "stack", "Search order: stack or cheapest")
	timeLimit := flag.Duration("time-limit", 2*time.Minute, "Solver time limit")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between moves in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to burrow server at %s", *serverURL)
	client := NewClient(*serverURL, *timeLimit+30*time.Second)

	sessionFile := ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		if _, err := client.GetSession(); err != nil {
			log.Printf("Failed to resume session %s (may be expired): %v", savedSessionID, err)
			client.sessionID = ""
		} else {
			log.Printf("Resuming session: %s", client.sessionID)
		}
	}

	opts := options{
		ConfigID:  *configID,
		Frontier:  *frontier,
		TimeLimit: *timeLimit,
		Delay:     time.Duration(*delayMs) * time.Millisecond,
		Verbose:   *verbose,
	}

	rep, err := run(client, opts)
	if client.sessionID != "" {
		if werr := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); werr != nil {
			log.Printf("Warning: Failed to save session ID: %v", werr)
		}
	}
	if err != nil {
		log.Printf("Replay failed: %v", err)
		log.Printf("Session: %s", client.sessionID)
		os.Exit(1)
	}

	log.Printf("Verified: %d moves, energy %d (%d states expanded)", rep.Moves, rep.Cost, rep.Expanded)
	log.Printf("Session: %s", rep.SessionID)
}

// run creates a session when the client has none, resets it, solves it on the
// server and replays the solution move by move.
func run(client *Client, opts options) (*report, error) {
	if client.sessionID == "" {
		info, err := client.CreateSession(opts.ConfigID)
		if err != nil {
			return nil, err
		}
		log.Printf("Session created: %s (%s, lower bound %d)", info.ID, info.ConfigName, info.BurrowState.LowerBound)
	}

	state, err := client.Reset()
	if err != nil {
		return nil, err
	}
	log.Printf("Burrow reset: %d tokens, %d settled", len(state.Tokens), state.Settled)

	solved, err := client.Solve(service.SolveOptions{
		Frontier:    opts.Frontier,
		TimeLimitMS: int(opts.TimeLimit / time.Millisecond),
	})
	if err != nil {
		return nil, err
	}
	res := solved.Result
	if res == nil || !res.Found {
		reason := "no solution exists"
		if res != nil && res.ReasonText != "" {
			reason = res.ReasonText
		}
		return nil, fmt.Errorf("server found no solution: %s", reason)
	}
	log.Printf("Server solution: %d moves, energy %d (%s)", res.MoveCount, res.Cost, res.Outcome)

	spent := 0
	for i, m := range res.Moves {
		result, err := client.Move(m.Token, m.To)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if result.Move != nil && result.Move.Cost != m.Cost {
			return nil, fmt.Errorf("step %d: server charged %d, solution promised %d", i+1, result.Move.Cost, m.Cost)
		}
		spent += m.Cost
		if opts.Verbose {
			log.Printf("  %2d. %s", i+1, solved.Steps[i])
		}
		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	final, err := client.State()
	if err != nil {
		return nil, err
	}
	if !final.Solved {
		return nil, fmt.Errorf("burrow not organized after %d moves", len(res.Moves))
	}
	if final.Cost != res.Cost || spent != res.Cost {
		return nil, fmt.Errorf("energy mismatch: session %d, replayed %d, solution %d", final.Cost, spent, res.Cost)
	}

	return &report{
		SessionID: client.sessionID,
		Moves:     len(res.Moves),
		Cost:      final.Cost,
		Expanded:  res.Stats.Expanded,
	}, nil
}
