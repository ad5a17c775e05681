package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/snake-game-server/game/engine"
	"github.com/wricardo/snake-game-server/game/keys"
	"github.com/wricardo/snake-game-server/game/service"
	"github.com/wricardo/snake-game-server/transport/websocket"
)

// Server exposes the game service as MCP tools
type Server struct {
	service   service.GameService
	hub       *websocket.Hub // nil in stdio mode
	mcpServer *server.MCPServer
	version   string
}

// NewServer creates an MCP server backed by the game service. Moves are
// published to hub when it is non-nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, version string) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		version: version,
	}

	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Snake Game",
		s.version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snake Game - MCP Interface

GAME OBJECTIVE:
Steer the snake (head first) to eat apples. Each apple adds one segment and one point.
Reaching the ruleset's win threshold discloses the session key once.

AVAILABLE TOOLS:
- snake_start: Start a new game (optional config_id)
- snake_move: Move one cell UP, DOWN, LEFT or RIGHT; pass count to bind a key
- snake_state: Show the board of a game
- snake_list_games: List running games
- snake_list_configs: List rulesets

Reversing straight into your own neck is ignored; the snake keeps its heading.
Leaving the board or running into your body ends the game.`),
	)

	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "snake_start",
		Description: "Start a new snake game, optionally with a named ruleset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Ruleset identifier from snake_list_configs (optional)",
				},
			},
		},
	}, s.handleStart)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "snake_move",
		Description: "Advance the snake one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID returned by snake_start",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"UP", "DOWN", "LEFT", "RIGHT"},
					"description": "Direction to move",
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Count the session key is derived from, as in GET /snake?count= (optional)",
				},
			},
			Required: []string{"game_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "snake_state",
		Description: "Show the current board of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "snake_list_games",
		Description: "List all running games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "snake_list_configs",
		Description: "List available rulesets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListConfigs)
}

// GetMCPServer returns the underlying MCP server, for ServeStdio
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeHTTP answers JSON-RPC messages posted to the MCP endpoint
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	response := s.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no response
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal MCP response")
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseData)
}

// Tool handlers

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	configID, _ := args["config_id"].(string)

	info, err := s.service.StartGame(ctx, configID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(info)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	direction, _ := args["direction"].(string)

	var sessionKey string
	if raw, ok := args["count"]; ok && raw != nil {
		count, err := parseCountArg(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sessionKey = keys.Derive(count)
	}

	result, err := s.service.Move(ctx, service.MoveRequest{
		GameID:     gameID,
		Direction:  direction,
		SessionKey: sessionKey,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if s.hub != nil && !result.NoOp {
		s.hub.PublishMove(result.Snapshot, result.Won)
	}

	gridSize := 0
	if info, err := s.service.GetGame(ctx, gameID); err == nil {
		gridSize = info.GridSize
	}

	return mcp.NewToolResultText(formatMoveResult(result, gridSize)), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	info, err := s.service.GetGame(ctx, gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(info)), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := s.service.ListGames(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(games) == 0 {
		return mcp.NewToolResultText("No games running. Use snake_start to begin."), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Games (%d):\n\n", len(games)))
	for _, g := range games {
		b.WriteString(fmt.Sprintf("• %s [%s] score %d/%d, %s\n",
			g.ID, g.ConfigName, g.State.Score, g.WinThreshold, g.State.Status))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configs, err := s.service.ListConfigs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Rulesets:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Win at: %d apples\n\n",
			config.ConfigID, config.Name, config.Description,
			config.GridSize, config.GridSize, config.WinThreshold)
	}

	return mcp.NewToolResultText(result), nil
}

// parseCountArg accepts JSON numbers and numeric strings
func parseCountArg(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case float64:
		if v >= 1<<63 || v < -(1<<63) || v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v", keys.ErrInvalidCount, v)
		}
		return int64(v), nil
	case string:
		return keys.ParseCount(v)
	case json.Number:
		return keys.ParseCount(v.String())
	default:
		return 0, fmt.Errorf("%w: %v", keys.ErrInvalidCount, raw)
	}
}

// Formatting

func formatGameInfo(info *service.GameInfo) string {
	return fmt.Sprintf("Game: %s\nRuleset: %s (win at %d)\n\n%s",
		info.ID, info.ConfigName, info.WinThreshold,
		formatBoard(info.State, info.GridSize))
}

func formatMoveResult(result *service.MoveResult, gridSize int) string {
	var b strings.Builder

	switch {
	case result.NoOp:
		b.WriteString("Game is over; the move was ignored.\n")
	case result.Won:
		b.WriteString(fmt.Sprintf("🎉 Win threshold reached! Key: %s\n", result.Key))
	case result.Ate:
		b.WriteString("Apple eaten!\n")
	case result.Status == engine.StatusGameOver:
		b.WriteString("💀 Collision, game over.\n")
	}

	b.WriteString(formatBoard(result.Snapshot, gridSize))
	return b.String()
}

// formatBoard renders the snapshot as text: H head, o body, A apple
func formatBoard(snap engine.Snapshot, gridSize int) string {
	var b strings.Builder

	head := "-"
	if len(snap.Snake) > 0 {
		head = snap.Snake[0].String()
	}
	b.WriteString(fmt.Sprintf("Head: %s | Heading: %s | Length: %d | Score: %d | Status: %s\n",
		head, snap.Direction, len(snap.Snake), snap.Score, snap.Status))
	if snap.Apple == engine.NoApple {
		b.WriteString("Apple: none, the board is full\n")
	} else {
		b.WriteString(fmt.Sprintf("Apple: %s\n", snap.Apple))
	}

	if gridSize <= 0 || gridSize > 40 {
		return b.String()
	}

	cells := make(map[engine.Coord]byte, len(snap.Snake)+1)
	cells[snap.Apple] = 'A'
	for i, c := range snap.Snake {
		if i == 0 {
			cells[c] = 'H'
		} else {
			cells[c] = 'o'
		}
	}

	b.WriteString("\n")
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			if ch, ok := cells[engine.Coord{Row: row, Col: col}]; ok {
				b.WriteByte(ch)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
