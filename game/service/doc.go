// Package service provides the business logic layer for the session server.
//
// The service package implements:
//   - Lobby matchmaking: joins fill the open lobby or start a new one
//   - Routing of player events to the caller's session
//   - Disconnect handling for lobby and in-game players
//   - Session read models for the REST and MCP surfaces
//   - Roster catalogue access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, lookup by ID or connection, and
// lifecycle. ConfigManager loads and stores rosters.
//
// Architecture:
//
// The service layer sits between the transports (WebSocket, HTTP, MCP) and
// the game engine. Each session owns its own engine.Scheduler; the service
// only finds the right one. Validation errors returned by the engine are
// logged at debug level and handed back so the transport can drop them
// without telling the client.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, hub)
//
//	// A websocket connection joins
//	result, err := gameService.Join(ctx, connID, "alice")
package service
