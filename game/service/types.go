package service

import (
	"time"

	"github.com/ekincelikten/rp-game-server/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	State          engine.Snapshot `json:"state"`
}

// JoinResult describes the seat a connection took
type JoinResult struct {
	SessionID string `json:"session_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
}

// ConfigInfo provides information about a roster
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use with LoadConfig
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	Spirits     int    `json:"spirits"`
	Villagers   int    `json:"villagers"`
}
