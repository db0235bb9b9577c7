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

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/service"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Spirits & Villagers",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Spirits & Villagers - Admin MCP Interface

This is a thin client that proxies all requests to the REST API server.
Players take part through the WebSocket endpoint; these tools only inspect
and administer the server. Roles and teams are never revealed here.

AVAILABLE TOOLS:
- list_sessions: List sessions, optionally filtered by phase
- get_session: Phase, players and vote counts of one session
- delete_session: Stop and remove a session
- list_configs: List available rosters
- get_config: Show the roles, teams and timings of one roster`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List game sessions, most recently active first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"phase": map[string]interface{}{
					"type":        "string",
					"description": "Only list sessions in this phase (lobby, day, defense, night, ended)",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the public state of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Stop a session's timers and remove it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to delete",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rosters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_config",
		Description: "Show one roster",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Roster identifier as returned by list_configs",
				},
			},
			Required: []string{"config_id"},
		},
	}, c.handleGetConfig)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
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

func stringArg(request mcp.CallToolRequest, name string) string {
	args, _ := request.Params.Arguments.(map[string]interface{})
	value, _ := args[name].(string)
	return strings.TrimSpace(value)
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	path := "/api/sessions"
	if phase := stringArg(request, "phase"); phase != "" {
		path += "?phase=" + url.QueryEscape(phase)
	}

	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Roster: %s, Phase: %s, Players: %d/%d, Created: %s)\n",
			s.ID, s.ConfigName, s.State.Phase, len(s.State.Players), s.State.Capacity,
			s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var response map[string]string
	if err := c.apiCall(ctx, "DELETE", "/api/sessions/"+url.PathEscape(sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Rosters:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  Players: %d (%d Spirits, %d Villagers)\n\n",
			config.ConfigID, config.Description, config.Capacity, config.Spirits, config.Villagers)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID := stringArg(request, "config_id")
	if configID == "" {
		return mcp.NewToolResultError("config_id is required"), nil
	}

	var config engine.GameConfig
	if err := c.apiCall(ctx, "GET", "/api/configs/"+url.PathEscape(configID), nil, &config); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatConfig(&config)), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	state := session.State

	fmt.Fprintf(&b, "Session: %s\nRoster: %s\nCreated: %s\n",
		session.ID, session.ConfigName, session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Phase: %s\n", state.Phase)
	if state.Deadline != nil {
		fmt.Fprintf(&b, "Phase ends: %s\n", state.Deadline.Format("15:04:05"))
	}
	if state.Winner != engine.OutcomeNone {
		fmt.Fprintf(&b, "Winner: %s\n", state.Winner)
	}
	if state.Accused != "" {
		fmt.Fprintf(&b, "On trial: %s\n", state.Accused)
	}

	fmt.Fprintf(&b, "\nPlayers (%d/%d):\n", len(state.Players), state.Capacity)
	for _, p := range state.Players {
		status := "alive"
		if !p.Alive {
			status = "dead"
		} else if p.Silenced {
			status = "silenced"
		}
		line := fmt.Sprintf("- %s [%s]", p.Nickname, status)
		if votes := state.VoteCounts[p.Nickname]; votes > 0 {
			line += fmt.Sprintf(" votes: %d", votes)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func formatConfig(config *engine.GameConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Roster: %s\n", config.Name)
	if config.Description != "" {
		fmt.Fprintf(&b, "%s\n", config.Description)
	}
	fmt.Fprintf(&b, "Players: %d\nDay: %ds, Defense: %ds, Night: %ds\n\nRoles:\n",
		config.Capacity, config.DaySeconds, config.DefenseSeconds, config.NightSeconds)
	for _, role := range config.Roles {
		fmt.Fprintf(&b, "- %s (%s, %s)\n", role.Name, role.Team, role.Capability)
	}

	return b.String()
}
