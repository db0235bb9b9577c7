// Package mcp exposes the session server's administrative surface as
// Model Context Protocol tools.
//
// Client is a thin proxy: every tool calls the REST API of a running server
// and renders the JSON response as text. It holds no game state of its own.
//
// Tools:
//   - list_sessions: GET /api/sessions
//   - get_session: GET /api/sessions/{id}
//   - delete_session: DELETE /api/sessions/{id}
//   - list_configs: GET /api/configs
//   - get_config: GET /api/configs/{name}
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Streamable HTTP on an existing router
//	router.Handle("/mcp", server.NewStreamableHTTPServer(client.GetMCPServer()))
//
//	// Or stdio for a local MCP host
//	server.ServeStdio(client.GetMCPServer())
//
// Session details carry only the public player view. Roster details are
// configuration, not game state, so get_config lists roles with their teams.
package mcp
