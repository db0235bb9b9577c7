// Package config provides configuration management for the session server.
//
// The config package handles:
//   - Process settings (AppConfig) read from the environment
//   - Loading game rosters from JSON or YAML files
//   - Roster validation and caching
//   - Default roster management and roster discovery
//
// Roster Format:
//
// Rosters are stored in the roster directory (configs by default). Each
// roster defines a capacity, one role per seat with its team and night
// capability, and optional phase durations:
//
//	{
//	  "name": "classic",
//	  "capacity": 6,
//	  "roles": [
//	    {"name": "Wraith", "team": "Spirits", "capability": "kill"},
//	    {"name": "Citizen", "team": "Villagers", "capability": "none"}
//	  ],
//	  "day_seconds": 90,
//	  "night_seconds": 20,
//	  "defense_seconds": 10
//	}
//
// Missing durations default to 90, 20 and 10 seconds, and a missing
// avatar_count to the full pool of 12.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific roster
//	roster, err := manager.LoadConfig("classic")
//
//	// List available rosters
//	rosters, err := manager.ListConfigs()
//
// Validation:
//
// Every roster is checked with engine.ValidateGameConfig: the role count
// matches the capacity, role names are unique, teams and capabilities are
// known, Spirits are a strict minority, durations are positive and the avatar
// pool holds at most 12 entries.
package config
