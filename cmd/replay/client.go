package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
)

// Client drives one session of a running burrow server
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) sessionURL(suffix string) string {
	return fmt.Sprintf("%s/api/sessions/%s%s", c.baseURL, url.PathEscape(c.sessionID), suffix)
}

// do sends body as JSON and decodes a 2xx reply into out
func (c *Client) do(method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) CreateSession(configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(http.MethodPost, c.baseURL+"/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(http.MethodGet, c.sessionURL(""), nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

func (c *Client) Reset() (*engine.BurrowState, error) {
	var resp struct {
		Message string              `json:"message"`
		State   *engine.BurrowState `json:"state"`
	}
	if err := c.do(http.MethodPost, c.sessionURL("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

func (c *Client) State() (*engine.BurrowState, error) {
	var state engine.BurrowState
	if err := c.do(http.MethodGet, c.sessionURL("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Solve(opts service.SolveOptions) (*service.SolveResult, error) {
	var result service.SolveResult
	if err := c.do(http.MethodPost, c.sessionURL("/solve"), opts, &result); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	return &result, nil
}

// Move plays one move; a rejected move is returned as an error
func (c *Client) Move(token int, to engine.Position) (*service.MoveResult, error) {
	body := map[string]interface{}{"token": token, "to": to}

	var result service.MoveResult
	if err := c.do(http.MethodPost, c.sessionURL("/move"), body, &result); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	if !result.Success {
		return &result, fmt.Errorf("move rejected: %s", result.Error)
	}
	return &result, nil
}
