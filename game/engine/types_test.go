package engine

import (
	"testing"
	"time"
)

func TestActionKindCapability(t *testing.T) {
	tests := []struct {
		kind     ActionKind
		expected Capability
	}{
		{ActionKill, CapabilityKill},
		{ActionProtect, CapabilityProtect},
		{ActionSilence, CapabilitySilence},
		{ActionJail, CapabilityJail},
		{ActionExecute, CapabilityJail},
		{ActionInvestigate, CapabilityInvestigate},
		{ActionKind("dance"), CapabilityNone},
	}

	for _, test := range tests {
		if got := test.kind.Capability(); got != test.expected {
			t.Errorf("Expected %s to require %s, got %s", test.kind, test.expected, got)
		}
	}
}

func TestAvatarPath(t *testing.T) {
	if got := AvatarPath(7); got != "/avatars/Avatar7.png" {
		t.Errorf("Expected /avatars/Avatar7.png, got %s", got)
	}
}

func TestPlayerRoleAccessors(t *testing.T) {
	p := &Player{Nickname: "alice"}
	if p.Team() != "" || p.RoleName() != "" {
		t.Error("Expected empty team and role before dealing")
	}

	p.Role = &Role{Name: "Medium", Team: TeamVillagers, Capability: CapabilityInvestigate}
	if p.Team() != TeamVillagers {
		t.Errorf("Expected team %s, got %s", TeamVillagers, p.Team())
	}
	if p.RoleName() != "Medium" {
		t.Errorf("Expected role Medium, got %s", p.RoleName())
	}
}

func TestGameConfigDurations(t *testing.T) {
	config := DefaultGameConfig()
	if config.DayDuration() != 90*time.Second {
		t.Errorf("Expected 90s day, got %v", config.DayDuration())
	}
	if config.NightDuration() != 20*time.Second {
		t.Errorf("Expected 20s night, got %v", config.NightDuration())
	}
	if config.DefenseDuration() != 10*time.Second {
		t.Errorf("Expected 10s defense, got %v", config.DefenseDuration())
	}
}

func TestNewGameState(t *testing.T) {
	st := NewGameState("ab12", 6)
	if st.Phase != PhaseLobby {
		t.Errorf("Expected lobby phase, got %s", st.Phase)
	}
	if st.HasTimer() {
		t.Error("Expected no timer in a new lobby")
	}
	if st.VoteCounts == nil || st.Verdicts == nil || st.NightActions == nil {
		t.Error("Expected per-phase maps to be initialized")
	}
}
