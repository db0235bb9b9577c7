// Package session provides session management for the session server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Lobby discovery for matchmaking
//   - A connection to session index
//   - Disposal of finished and abandoned sessions
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// service.Session represents an individual game session with its own
// engine.Scheduler and metadata like creation time and last access time.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. The manager ensures
// IDs are unique and generates them with cryptographic randomness. Lookups
// are case-insensitive.
//
// Lifecycle:
//
// A session is created when a join finds no lobby with a free seat. Once its
// game ends, CleanupEndedSessions disposes of it; CleanupExpiredSessions
// removes sessions nobody touched for the retention window. Removing a
// session stops its phase timer.
package session
