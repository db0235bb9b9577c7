// Package api provides the HTTP surface of the session server.
//
// The api package implements:
//   - Read-only session inspection and administrative deletion
//   - Roster listing, retrieval and upload
//   - A health endpoint
//   - The WebSocket upgrade that players connect through
//   - Static file serving, avatars included
//
// Endpoints:
//
// Sessions:
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&phase=day)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Rosters:
//   - GET /api/configs - List available rosters
//   - GET /api/configs/{name} - Get a roster
//   - POST /api/configs - Validate and save a roster
//
// Other:
//   - GET /api/health - Liveness with session and connection counts
//   - GET /ws - WebSocket upgrade for players
//   - GET /avatars/Avatar{n}.png - Avatar images
//
// Session read models carry the public player view only. Roles and teams
// never leave the engine through this package.
//
// Usage:
//
//	server := api.NewServer(gameService, hub, "public")
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "session not found: session not found"}
package api
