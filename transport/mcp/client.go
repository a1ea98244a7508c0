package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/burrow/game/engine"
	"github.com/wricardo/mcp-training/burrow/game/service"
)

const (
	requestTimeout = 10 * time.Second
	// solveGrace is added on top of a solve's own time limit
	solveGrace = 30 * time.Second
	// defaultSolveTimeout applies when a solve has no time limit
	defaultSolveTimeout = 5 * time.Minute
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Amphipod Burrow",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Amphipod Burrow - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Move every amphipod (token) into its own room for the least total energy.

AVAILABLE TOOLS:
- list_configs: List available puzzles
- create_session / get_session / list_sessions: Manage sessions
- burrow_state: Show the diagram, token table and cost
- legal_moves: List every legal move, or those of one token
- move: Move one token to a target cell - requires intent explanation
- bulk_move: Several moves at once - requires intent explanation
- reset_burrow: Back to the initial configuration
- move_history: View past moves
- solve: Run the optimal solver, optionally applying its solution
- burrow_instructions: Full rules and tips

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available burrow puzzles with their size and lower bound",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new burrow session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active burrow sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session, including its last solver run",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "burrow_state",
		Description: "Get the current burrow diagram, token positions and energy spent",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleBurrowState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the legal moves from the current configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"token": map[string]interface{}{
					"type":        "integer",
					"description": "Only list moves of this token (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move one token to a target cell (row/col as shown by burrow_state)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"token": map[string]interface{}{
					"type":        "integer",
					"description": "Token index from the token table",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (0-based, row 0 is the top wall)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "token", "row", "col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first illegal one", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"token": map[string]interface{}{"type": "integer"},
							"row":   map[string]interface{}{"type": "integer"},
							"col":   map[string]interface{}{"type": "integer"},
						},
						"required": []string{"token", "row", "col"},
					},
					"description": "Array of {token,row,col} moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_burrow",
		Description: "Reset the burrow to its initial configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Find the cheapest way to organize the burrow from the current (or initial) configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"apply": map[string]interface{}{
					"type":        "boolean",
					"description": "Play the solution on the session when one is found",
				},
				"from_start": map[string]interface{}{
					"type":        "boolean",
					"description": "Solve from the initial configuration instead of the current one",
				},
				"frontier": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"stack", "cheapest"},
					"description": "Expansion order (default stack)",
				},
				"lower_bound": map[string]interface{}{
					"type":        "boolean",
					"description": "Prune with the admissible lower bound",
				},
				"time_limit_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Stop after this many milliseconds and report the best solution so far",
				},
				"max_states": map[string]interface{}{
					"type":        "integer",
					"description": "Stop when this many distinct configurations were recorded",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "burrow_instructions",
		Description: "Get the rules of the burrow and tips for solving it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.apiCallTimeout(ctx, requestTimeout, method, path, body, result)
}

func (c *Client) apiCallTimeout(ctx context.Context, timeout time.Duration, method, path string, body interface{}, result interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

// boardFor rebuilds the board of a session so moves can be described with kind symbols
func (c *Client) boardFor(ctx context.Context, sessionID string) *engine.Board {
	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil || info.PuzzleConfig == nil {
		return nil
	}
	board, _, err := info.PuzzleConfig.Build()
	if err != nil {
		return nil
	}
	return board
}

// Tool handlers

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		b.WriteString(fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Rooms: %d, Depth: %d, Tokens: %d, Kinds: %s, Lower bound: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Rooms, cfg.Depth, cfg.Tokens,
			strings.Join(cfg.Kinds, ""), cfg.LowerBound))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		info.ID, info.ConfigName, formatBurrowState(info.BurrowState, info.PuzzleConfig))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		status := "in progress"
		if s.BurrowState != nil && s.BurrowState.Solved {
			status = "solved"
		}
		cost := 0
		if s.BurrowState != nil {
			cost = s.BurrowState.Cost
		}
		b.WriteString(fmt.Sprintf("- %s (Config: %s, Energy: %d, %s, Created: %s)\n",
			s.ID, s.ConfigName, cost, status, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleBurrowState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	// the session carries the puzzle config, needed for kind symbols
	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBurrowState(info.BurrowState, info.PuzzleConfig)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	path := sessionPath(sessionID, "/moves")
	if token, ok := intArg(args, "token"); ok {
		path += fmt.Sprintf("?token=%d", token)
	}

	var response struct {
		Count int           `json:"count"`
		Moves []engine.Move `json:"moves"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board := c.boardFor(ctx, sessionID)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Legal moves (%d):\n", response.Count))
	for _, m := range response.Moves {
		b.WriteString("- " + describeMove(board, m) + "\n")
	}
	if response.Count == 0 {
		b.WriteString("None. The burrow is either solved or deadlocked; reset_burrow starts over.\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	token, okToken := intArg(args, "token")
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okToken || !okRow || !okCol {
		return mcp.NewToolResultError("token, row and col are required integers"), nil
	}

	body := map[string]interface{}{
		"token": token,
		"to":    engine.Position{Row: row, Col: col},
		"reset": reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result, c.boardFor(ctx, sessionID))), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	moves := make([]engine.MoveRequest, 0, len(movesRaw))
	for i, raw := range movesRaw {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("move %d must be an object with token, row and col", i+1)), nil
		}
		token, okToken := intArg(m, "token")
		row, okRow := intArg(m, "row")
		col, okCol := intArg(m, "col")
		if !okToken || !okRow || !okCol {
			return mcp.NewToolResultError(fmt.Sprintf("move %d needs integer token, row and col", i+1)), nil
		}
		moves = append(moves, engine.MoveRequest{Token: token, To: engine.Position{Row: row, Col: col}})
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result, c.boardFor(ctx, sessionID))), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string              `json:"message"`
		State   *engine.BurrowState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatBurrowState(response.State, nil))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	opts := service.SolveOptions{}
	opts.Apply, _ = args["apply"].(bool)
	opts.FromStart, _ = args["from_start"].(bool)
	opts.LowerBound, _ = args["lower_bound"].(bool)
	opts.Frontier, _ = args["frontier"].(string)
	opts.TimeLimitMS, _ = intArg(args, "time_limit_ms")
	opts.MaxStates, _ = intArg(args, "max_states")

	timeout := defaultSolveTimeout
	if opts.TimeLimitMS > 0 {
		timeout = time.Duration(opts.TimeLimitMS)*time.Millisecond + solveGrace
	}

	var result service.SolveResult
	if err := c.apiCallTimeout(ctx, timeout, "POST", sessionPath(sessionID, "/solve"), opts, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Amphipod Burrow - Complete Instructions

OBJECTIVE:
Every amphipod (token) must end in its own room. Spend as little energy as possible.

THE BURROW:
• # - Wall
• . - Open cell
• A, B, C, D - Amphipods. Kind A belongs in the leftmost room, B in the next, and so on.
• The top open row is the hallway. Rooms hang below it, one column each.
• Rows and columns are 0-based; row 0 is the top wall. burrow_state shows every token's (row,col).

ENERGY:
• Each step costs the kind's multiplier: A=1, B=10, C=100, D=1000 by default.
• A move's cost is its number of steps times the multiplier. Steps go up, down, left or right through open cells.

MOVE RULES:
• A token never stops on the hallway cell directly above a room entrance.
• A token leaves its starting room into the hallway once, and later enters its own room once.
  After entering its room it never moves again.
• A token may only enter its own room when no other kind is still inside, and it goes as deep as it can.
• Moving from one room directly into another is not a single move: stop in the hallway first.
• A token that starts at the bottom of its own room, above only its own kind, is already home.

PLAYING:
1. burrow_state - read the diagram and token table
2. legal_moves - every move allowed right now, with its cost
3. move / bulk_move - play moves (bulk_move stops at the first illegal one)
4. reset_burrow - start over
5. solve - find the optimal energy; apply=true plays the solution for you

TIPS:
• Expensive kinds should walk as little as possible. Park cheap ones out of their way first.
• A hallway token blocks everything that needs to pass it. Deadlocks are common: check legal_moves.
• list_configs shows a lower bound for each puzzle: no solution can cost less.
• solve with frontier=cheapest finds the optimum on the first solution it reaches; stack explores deeper first and keeps improving.

Good luck organizing the burrow!`

// Formatting helpers

func kindSymbol(cfg *engine.PuzzleConfig, kind engine.TokenKind) string {
	symbols := engine.DefaultKindSymbols
	if cfg != nil && cfg.Kinds != "" {
		symbols = cfg.Kinds
	}
	if int(kind) < len(symbols) {
		return string(symbols[kind])
	}
	return "?"
}

func describeMove(board *engine.Board, m engine.Move) string {
	if board != nil {
		return engine.FormatMove(board, m)
	}
	return fmt.Sprintf("#%d %s -> %s: %d steps, cost %d", m.Token, m.From, m.To, m.Steps, m.Cost)
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n",
		info.ID, info.ConfigName, info.CreatedAt.Format("2006-01-02 15:04:05")))
	if info.LastSolve != nil {
		ls := info.LastSolve
		b.WriteString(fmt.Sprintf("Last solve: %s, cost %d in %d moves (applied: %t)\n",
			ls.Outcome, ls.Cost, ls.MoveCount, ls.Applied))
	}
	b.WriteString("\n")
	b.WriteString(formatBurrowState(info.BurrowState, info.PuzzleConfig))
	return b.String()
}

func formatBurrowState(state *engine.BurrowState, cfg *engine.PuzzleConfig) string {
	if state == nil {
		return "No burrow state available"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Energy: %d | Home: %d | Remaining: %d | Moves: %d | Lower bound from start: %d\n\n",
		state.Cost, state.Settled, state.Remaining, state.TotalMoves, state.LowerBound))

	for _, line := range state.Diagram {
		b.WriteString(line + "\n")
	}

	if len(state.Tokens) > 0 {
		b.WriteString("\nTokens:\n")
		for i, tok := range state.Tokens {
			b.WriteString(fmt.Sprintf("  #%d %s at %s %s\n", i, kindSymbol(cfg, tok.Kind), tok.Pos, tok.Phase))
		}
	}

	if state.Solved {
		b.WriteString("\n🎉 SOLVED!")
	}
	if state.Message != "" {
		b.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult, board *engine.Board) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if result.Move != nil {
		b.WriteString("Move: " + describeMove(board, *result.Move) + "\n")
	}
	if result.Error != "" {
		b.WriteString("Reason: " + result.Error + "\n")
	}
	if !result.Success && len(result.LegalTargets) > 0 {
		targets := make([]string, 0, len(result.LegalTargets))
		for _, p := range result.LegalTargets {
			targets = append(targets, p.String())
		}
		b.WriteString("Legal targets for this token: " + strings.Join(targets, " ") + "\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n" + formatBurrowState(result.BurrowState, nil))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult, board *engine.Board) string {
	var b strings.Builder

	configName := ""
	if result.BurrowState != nil {
		configName = result.BurrowState.ConfigName
	}
	b.WriteString(fmt.Sprintf("Session: %s • Config: %s\n", sessionID, configName))

	b.WriteString(fmt.Sprintf("Executed %d/%d moves • Energy %d -> %d (+%d)\n",
		result.MovesExecuted, result.RequestedMoves, result.StartCost, result.EndCost, result.CostDelta))
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Truncated to the first %d moves\n", result.Limit))
	}
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf("Stopped on move %d (%s): %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason))
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for i, m := range result.Steps {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, describeMove(board, m)))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	if result.StoppedReason != "" && len(result.LegalMoves) > 0 {
		b.WriteString(fmt.Sprintf("\nLegal moves now (%d):\n", len(result.LegalMoves)))
		for _, m := range result.LegalMoves {
			b.WriteString("- " + describeMove(board, m) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatBurrowState(result.BurrowState, nil))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Move History (Page %d/%d, %d total moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves))

	for _, move := range history.Moves {
		b.WriteString(fmt.Sprintf("%d. %s #%d %s -> %s: %d steps, cost %d (%s)\n",
			move.MoveNumber, move.Symbol, move.Token, move.From, move.To, move.Steps, move.Cost, move.Phase))
	}
	if len(history.Moves) == 0 {
		b.WriteString("No moves yet.\n")
	}

	if history.HasNext {
		b.WriteString("\nMore moves on the next page.\n")
	}
	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	s := result.Summary
	if s == nil {
		return "No solve summary available"
	}

	switch s.Outcome {
	case engine.OutcomeSolved:
		b.WriteString(fmt.Sprintf("✓ Optimal energy: %d (%d moves, %d steps)\n", s.Cost, s.MoveCount, s.Distance))
	case engine.OutcomeNoSolution:
		b.WriteString("✗ No solution exists from this configuration\n")
	default:
		if s.Found {
			b.WriteString(fmt.Sprintf("⚠ Search stopped early (%s). Best found: %d (%d moves), may not be optimal\n", s.Reason, s.Cost, s.MoveCount))
		} else {
			b.WriteString(fmt.Sprintf("⚠ Search stopped early (%s) without a solution\n", s.Reason))
		}
	}
	b.WriteString(fmt.Sprintf("Expanded %d configurations, %d distinct, in %s\n",
		s.Stats.Expanded, s.Stats.Distinct, s.Stats.Elapsed))

	if len(result.Steps) > 0 {
		b.WriteString("\nSolution:\n")
		for i, step := range result.Steps {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
	}

	if result.Applied {
		b.WriteString("\nSolution applied to the session.\n\n")
		b.WriteString(formatBurrowState(result.BurrowState, nil))
	}
	return b.String()
}
