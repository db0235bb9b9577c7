package engine

import (
	"fmt"
)

// ValidateGameConfig validates a roster for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Capacity < MinCapacity || config.Capacity > MaxCapacity {
		return fmt.Errorf("config validation: capacity must be between %d and %d, got %d", MinCapacity, MaxCapacity, config.Capacity)
	}
	if len(config.Roles) != config.Capacity {
		return fmt.Errorf("config validation: roster must have %d roles to match capacity, got %d", config.Capacity, len(config.Roles))
	}

	seen := make(map[string]bool, len(config.Roles))
	for i, role := range config.Roles {
		if role.Name == "" {
			return fmt.Errorf("config validation: role %d has no name", i+1)
		}
		if seen[role.Name] {
			return fmt.Errorf("config validation: role '%s' appears more than once", role.Name)
		}
		seen[role.Name] = true

		if role.Team != TeamSpirits && role.Team != TeamVillagers {
			return fmt.Errorf("config validation: role '%s' has unknown team '%s'", role.Name, role.Team)
		}
		switch role.Capability {
		case CapabilityNone, CapabilityKill, CapabilityProtect, CapabilitySilence, CapabilityJail, CapabilityInvestigate:
		default:
			return fmt.Errorf("config validation: role '%s' has unknown capability '%s'", role.Name, role.Capability)
		}
	}

	spirits, villagers := CountTeams(config.Roles)
	if spirits == 0 {
		return fmt.Errorf("config validation: roster needs at least one %s role", TeamSpirits)
	}
	if spirits >= villagers {
		return fmt.Errorf("config validation: %s must be a minority, got %d against %d", TeamSpirits, spirits, villagers)
	}

	if config.DaySeconds <= 0 || config.NightSeconds <= 0 || config.DefenseSeconds <= 0 {
		return fmt.Errorf("config validation: day, night and defense durations must be positive")
	}
	if config.AvatarCount < 1 || config.AvatarCount > MaxAvatars {
		return fmt.Errorf("config validation: avatar_count must be between 1 and %d, got %d", MaxAvatars, config.AvatarCount)
	}

	return nil
}

// ApplyDefaults fills zero durations and avatar count with the reference values
func ApplyDefaults(config *GameConfig) {
	if config.DaySeconds == 0 {
		config.DaySeconds = DefaultDaySeconds
	}
	if config.NightSeconds == 0 {
		config.NightSeconds = DefaultNightSeconds
	}
	if config.DefenseSeconds == 0 {
		config.DefenseSeconds = DefaultDefenseSeconds
	}
	if config.AvatarCount == 0 {
		config.AvatarCount = MaxAvatars
	}
}

// CountTeams returns how many roles of each team a roster holds
func CountTeams(roles []Role) (spirits, villagers int) {
	for _, role := range roles {
		switch role.Team {
		case TeamSpirits:
			spirits++
		case TeamVillagers:
			villagers++
		}
	}
	return spirits, villagers
}

// DefaultGameConfig returns the reference six-player roster
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Six players: two Spirits against four Villagers",
		Capacity:    6,
		Roles: []Role{
			{Name: "Wraith", Team: TeamSpirits, Capability: CapabilityKill},
			{Name: "Banshee", Team: TeamSpirits, Capability: CapabilitySilence},
			{Name: "Jailer", Team: TeamVillagers, Capability: CapabilityJail},
			{Name: "Healer", Team: TeamVillagers, Capability: CapabilityProtect},
			{Name: "Medium", Team: TeamVillagers, Capability: CapabilityInvestigate},
			{Name: "Citizen", Team: TeamVillagers, Capability: CapabilityNone},
		},
		DaySeconds:     DefaultDaySeconds,
		NightSeconds:   DefaultNightSeconds,
		DefenseSeconds: DefaultDefenseSeconds,
		AvatarCount:    MaxAvatars,
	}
}
