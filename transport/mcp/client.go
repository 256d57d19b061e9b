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
	"github.com/wricardo/mcp-training/arcade/game/catalog"
	"github.com/wricardo/mcp-training/arcade/game/engine"
	"github.com/wricardo/mcp-training/arcade/stats"
)

// maxBulkActions bounds one bulk_act call
const maxBulkActions = 50

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// sessionView mirrors service.SessionInfo with the state left undecoded
type sessionView struct {
	ID             string          `json:"id"`
	Game           engine.GameID   `json:"game"`
	PlayerID       string          `json:"player_id"`
	Status         engine.Status   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	State          json.RawMessage `json:"state"`
}

// actionView mirrors service.ActionResult
type actionView struct {
	Accepted bool            `json:"accepted"`
	Action   engine.Action   `json:"action"`
	Status   engine.Status   `json:"status"`
	State    json.RawMessage `json:"state"`
	Message  string          `json:"message,omitempty"`
}

type configView struct {
	Game     engine.GameID   `json:"game"`
	Filename string          `json:"filename"`
	Source   string          `json:"source"`
	Config   json.RawMessage `json:"config"`
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Arcade",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Arcade - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAMES: Tetris, Snake, FlippyBird, Memory, Puzzle.

PLAYING A GAME:
1. create_session with a game name (and your player_id to appear on leaderboards)
2. ready_game to load your high score
3. start_game to start the clock
4. act / bulk_act to send inputs, game_state to look at the board
The game ends on its own (collision, time budget, top out or a win) and the
score is recorded once.

AVAILABLE TOOLS:
- game_instructions: Rules and action vocabulary for a game
- list_games: List the games and their actions
- create_session / get_session / list_sessions: Manage play sessions
- ready_game / start_game: Move a session to Ready, then Playing
- lobby_game: Back to the lobby from Ready, Playing or Over
- act: Send one input - requires intent explanation
- bulk_act: Send several inputs in order - requires intent explanation
- game_state: Current board of a session
- list_configs: Tuning in effect for each game
- leaderboard: Top players for a game
- player_stats: Lifetime stats of a player

NOTE: Snake, Tetris and FlippyBird keep moving between your calls.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get rules, scoring and the action vocabulary of a game, or of all games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"game": map[string]any{
					"type":        "string",
					"description": "Game name (optional)",
				},
			},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List the available games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListGames)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new play session for a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"game": map[string]any{
					"type":        "string",
					"description": "Game to play: tetris, snake, flippy, memory or puzzle",
				},
				"player_id": map[string]any{
					"type":        "string",
					"description": "Player name used for stats (optional, defaults to guest)",
				},
			},
			Required: []string{"game"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active play sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"game": map[string]any{
					"type":        "string",
					"description": "Only list sessions of this game (optional)",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "ready_game",
		Description: "Reset a session to Ready with your stored high score",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReady)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "lobby_game",
		Description: "Return a session to the lobby, abandoning any round in progress",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleLobby)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start play on a Ready session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleStart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "act",
		Description: "Send one input to a playing session (e.g. up, left, rotate, hard_drop, jump, select:5, select:1,2)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"action": map[string]any{
					"type":        "string",
					"description": "Input token",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "What you are trying to achieve with this input",
				},
			},
			Required: []string{"session_id", "action", "intent"},
		},
	}, c.handleAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_act",
		Description: "Send several inputs in order; stops at the first error or when the game ends",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"actions": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Input tokens, in order",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "What you are trying to achieve with these inputs",
				},
			},
			Required: []string{"session_id", "actions", "intent"},
		},
	}, c.handleBulkAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board of a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	// Configuration and stats
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List the tuning in effect for every game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Top players of a game by high score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"game": map[string]any{
					"type":        "string",
					"description": "Game name",
				},
				"limit": map[string]any{
					"type":        "number",
					"description": "Number of entries (default 10)",
				},
			},
			Required: []string{"game"},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_stats",
		Description: "Lifetime stats of a player across all games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"player_id": map[string]any{
					"type":        "string",
					"description": "Player name",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handlePlayerStats)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Handler serves MCP JSON-RPC messages posted over HTTP
func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
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
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// Tool handlers

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Games []catalog.Info `json:"games"`
	}
	if err := c.apiCall(ctx, "GET", "/api/games", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Games (%d):\n\n", len(response.Games))
	for _, g := range response.Games {
		fmt.Fprintf(&b, "- %s: %s\n  Actions: %s\n", g.ID, g.Description, joinActions(g.Actions))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	game := stringArg(args, "game")
	if game == "" {
		return mcp.NewToolResultError("game is required"), nil
	}

	body := map[string]string{"game": game}
	if player := stringArg(args, "player_id"); player != "" {
		body["player_id"] = player
	}

	var session sessionView
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nGame: %s\nPlayer: %s\nStatus: %s\n\nNext: ready_game, then start_game.",
		session.ID, session.Game, session.PlayerID, session.Status)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/sessions"
	if game := stringArg(request.GetArguments(), "game"); game != "" {
		path += "?game=" + url.QueryEscape(game)
	}

	var response struct {
		Count    int           `json:"count"`
		Sessions []sessionView `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Game: %s, Player: %s, Status: %s, Created: %s)\n",
			s.ID, s.Game, s.PlayerID, s.Status, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionCall(ctx, request, "GET", "")
}

func (c *Client) handleReady(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionCall(ctx, request, "POST", "/ready")
}

func (c *Client) handleLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionCall(ctx, request, "POST", "/lobby")
}

func (c *Client) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.sessionCall(ctx, request, "POST", "/start")
}

// sessionCall runs a session endpoint that answers with a SessionInfo
func (c *Client) sessionCall(ctx context.Context, request mcp.CallToolRequest, method, suffix string) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var session sessionView
	if err := c.apiCall(ctx, method, sessionPath(sessionID, suffix), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSession(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	// The state endpoint has no game id, so read the session instead
	var session sessionView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board, err := renderState(session.Game, session.State)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(board), nil
}

func (c *Client) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	action := stringArg(args, "action")

	// Intent is only there to make the caller think
	_ = stringArg(args, "intent")

	if sessionID == "" || action == "" {
		return mcp.NewToolResultError("session_id and action are required"), nil
	}

	var session sessionView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result actionView
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/action"), map[string]string{"action": action}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(session.Game, action, &result)), nil
}

func (c *Client) handleBulkAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	raw, _ := args["actions"].([]any)
	_ = stringArg(args, "intent")

	actions := make([]string, 0, len(raw))
	for _, a := range raw {
		if s, ok := a.(string); ok && strings.TrimSpace(s) != "" {
			actions = append(actions, strings.TrimSpace(s))
		}
	}

	if sessionID == "" || len(actions) == 0 {
		return mcp.NewToolResultError("session_id and at least one action are required"), nil
	}
	if len(actions) > maxBulkActions {
		return mcp.NewToolResultError(fmt.Sprintf("at most %d actions per call", maxBulkActions)), nil
	}

	var session sessionView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	var last *actionView
	executed := 0
	for i, action := range actions {
		var result actionView
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/action"), map[string]string{"action": action}, &result); err != nil {
			fmt.Fprintf(&b, "%2d. %s -> error: %v\n", i+1, action, err)
			break
		}
		executed++
		last = &result

		mark := "ok"
		if !result.Accepted {
			mark = "ignored"
		}
		fmt.Fprintf(&b, "%2d. %s -> %s\n", i+1, action, mark)
		if result.Status == engine.StatusOver {
			b.WriteString("Game over, remaining actions skipped.\n")
			break
		}
	}

	header := fmt.Sprintf("Executed %d/%d actions\n\n", executed, len(actions))
	if last == nil {
		return mcp.NewToolResultText(header + b.String()), nil
	}

	board, err := renderState(session.Game, last.State)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(header + b.String() + "\n" + board), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Configs []configView `json:"configs"`
	}
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Configurations (%d):\n\n", len(response.Configs))
	for _, cfg := range response.Configs {
		fmt.Fprintf(&b, "- %s (%s, %s)\n  %s\n", cfg.Game, cfg.Filename, cfg.Source, string(cfg.Config))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	game := stringArg(args, "game")
	if game == "" {
		return mcp.NewToolResultError("game is required"), nil
	}

	path := "/api/leaderboard/" + url.PathEscape(game)
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Game    string                   `json:"game"`
		Entries []stats.LeaderboardEntry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Leaderboard: %s\n\n", response.Game)
	if len(response.Entries) == 0 {
		b.WriteString("No games recorded yet.\n")
	}
	for _, e := range response.Entries {
		fmt.Fprintf(&b, "%2d. %-16s %6d (%d games)\n", e.Rank, e.PlayerID, e.HighScore, e.GamesPlayed)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handlePlayerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player := stringArg(request.GetArguments(), "player_id")
	if player == "" {
		return mcp.NewToolResultError("player_id is required"), nil
	}

	var ps stats.PlayerStats
	if err := c.apiCall(ctx, "GET", "/api/players/"+url.PathEscape(player)+"/stats", nil, &ps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s\nGames played: %d\nTotal playtime: %ds\n", ps.PlayerID, ps.TotalGames, ps.TotalPlaytime)
	if ps.FavoriteGame != "" {
		fmt.Fprintf(&b, "Favorite game: %s\n", ps.FavoriteGame)
	}
	for _, g := range ps.Games {
		fmt.Fprintf(&b, "\n%s: %d played, high score %d, %ds played", g.Game, g.GamesPlayed, g.HighScore, g.TotalPlaytime)
		if g.BestTime != nil {
			fmt.Fprintf(&b, ", best time %ds", *g.BestTime)
		}
		for _, k := range sortedKeys(g.Counters) {
			fmt.Fprintf(&b, "\n  %s: %d", k, g.Counters[k])
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := stringArg(request.GetArguments(), "game")
	if raw == "" {
		var b strings.Builder
		b.WriteString("ARCADE GAMES\n\n")
		for _, id := range engine.AllGames {
			b.WriteString(instructions[id])
			b.WriteString("\n")
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	id, err := engine.ParseGameID(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(instructions[id]), nil
}

// Formatting helpers

func formatSession(s *sessionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nGame: %s\nPlayer: %s\nStatus: %s\nCreated: %s\nLast accessed: %s\n\n",
		s.ID, s.Game, s.PlayerID, s.Status,
		s.CreatedAt.Format(time.RFC3339), s.LastAccessedAt.Format(time.RFC3339))

	board, err := renderState(s.Game, s.State)
	if err != nil {
		fmt.Fprintf(&b, "(state unavailable: %v)\n", err)
		return b.String()
	}
	b.WriteString(board)
	return b.String()
}

func formatActionResult(game engine.GameID, action string, r *actionView) string {
	var b strings.Builder
	if r.Accepted {
		fmt.Fprintf(&b, "Action %q accepted (%s)\n", action, r.Action.Kind)
	} else {
		fmt.Fprintf(&b, "Action %q not applied\n", action)
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "%s\n", r.Message)
	}
	if r.Status == engine.StatusOver {
		b.WriteString("GAME OVER\n")
	}
	b.WriteString("\n")

	board, err := renderState(game, r.State)
	if err != nil {
		fmt.Fprintf(&b, "(state unavailable: %v)\n", err)
		return b.String()
	}
	b.WriteString(board)
	return b.String()
}

func joinActions(actions []engine.ActionKind) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
