package engine

import (
	"fmt"
	"time"
)

// Phase is the state of a session's state machine
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseDay     Phase = "day"
	PhaseNight   Phase = "night"
	PhaseDefense Phase = "defense"
	PhaseEnded   Phase = "ended"
)

// Team is one of the two opposing factions
type Team string

const (
	TeamSpirits   Team = "Spirits"
	TeamVillagers Team = "Villagers"
)

// Capability is the night action a role may perform
type Capability string

const (
	CapabilityNone        Capability = "none"
	CapabilityKill        Capability = "kill"
	CapabilityProtect     Capability = "protect"
	CapabilitySilence     Capability = "silence"
	CapabilityJail        Capability = "jail" // jail plus the one-time execute
	CapabilityInvestigate Capability = "investigate"
)

// ActionKind is a night action submitted by a player
type ActionKind string

const (
	ActionKill        ActionKind = "kill"
	ActionProtect     ActionKind = "protect"
	ActionSilence     ActionKind = "silence"
	ActionJail        ActionKind = "jail"
	ActionExecute     ActionKind = "execute"
	ActionInvestigate ActionKind = "investigate"
)

// Capability returns the role capability required to submit the action
func (k ActionKind) Capability() Capability {
	switch k {
	case ActionKill:
		return CapabilityKill
	case ActionProtect:
		return CapabilityProtect
	case ActionSilence:
		return CapabilitySilence
	case ActionJail, ActionExecute:
		return CapabilityJail
	case ActionInvestigate:
		return CapabilityInvestigate
	default:
		return CapabilityNone
	}
}

// Decision is a defense verdict
type Decision string

const (
	DecisionGuilty   Decision = "guilty"
	DecisionInnocent Decision = "innocent"
)

// Outcome is the result of a win-condition evaluation
type Outcome string

const (
	OutcomeNone         Outcome = ""
	OutcomeVillagersWin Outcome = "Villagers"
	OutcomeSpiritsWin   Outcome = "Spirits"
)

// Validation and default constants
const (
	MinCapacity            = 3
	MaxCapacity            = 16
	MaxAvatars             = 12
	MaxNicknameLength      = 24
	DefaultDaySeconds      = 90
	DefaultNightSeconds    = 20
	DefaultDefenseSeconds  = 10
	MinRemainingDayTime    = time.Second
	NotificationBufferSize = 256
)

// Role is a named capability bundle bound to one team
type Role struct {
	Name       string     `json:"name" mapstructure:"name"`
	Team       Team       `json:"team" mapstructure:"team"`
	Capability Capability `json:"capability" mapstructure:"capability"`
}

// Player is a participant of a single session
type Player struct {
	ConnID   string
	Nickname string
	Avatar   int
	Role     *Role
	Alive    bool
	Silenced bool
	Jailed   bool
}

// Team returns the player's team, or "" before roles are dealt
func (p *Player) Team() Team {
	if p.Role == nil {
		return ""
	}
	return p.Role.Team
}

// RoleName returns the player's role name, or "" before roles are dealt
func (p *Player) RoleName() string {
	if p.Role == nil {
		return ""
	}
	return p.Role.Name
}

// AvatarPath returns the static asset path of the player's avatar
func (p *Player) AvatarPath() string {
	return AvatarPath(p.Avatar)
}

// AvatarPath maps an avatar index to its static asset path
func AvatarPath(index int) string {
	return fmt.Sprintf("/avatars/Avatar%d.png", index)
}

// Vote is one entry of the day's ordered accusation log
type Vote struct {
	Voter  string `json:"voter"`
	Target string `json:"target"`
}

// NightAction is a pending concealed action
type NightAction struct {
	Kind   ActionKind
	Role   string
	Actor  string
	Target string
}

// actionKey identifies a pending night action. The Jailer holds two slots
// (jail and execute); every other role holds one.
type actionKey struct {
	role string
	kind ActionKind
}

// GameConfig is a roster definition loaded from the roster directory
type GameConfig struct {
	Name           string `json:"name" mapstructure:"name"`
	Description    string `json:"description" mapstructure:"description"`
	Capacity       int    `json:"capacity" mapstructure:"capacity"`
	Roles          []Role `json:"roles" mapstructure:"roles"`
	DaySeconds     int    `json:"day_seconds" mapstructure:"day_seconds"`
	NightSeconds   int    `json:"night_seconds" mapstructure:"night_seconds"`
	DefenseSeconds int    `json:"defense_seconds" mapstructure:"defense_seconds"`
	AvatarCount    int    `json:"avatar_count" mapstructure:"avatar_count"`
}

// DayDuration returns the configured day length
func (c *GameConfig) DayDuration() time.Duration {
	return time.Duration(c.DaySeconds) * time.Second
}

// NightDuration returns the configured night length
func (c *GameConfig) NightDuration() time.Duration {
	return time.Duration(c.NightSeconds) * time.Second
}

// DefenseDuration returns the configured defense window
func (c *GameConfig) DefenseDuration() time.Duration {
	return time.Duration(c.DefenseSeconds) * time.Second
}

// GameState is the session aggregate. Every component operates on the
// GameState it is handed; nothing is kept outside of it.
type GameState struct {
	SessionID string
	Capacity  int
	Phase     Phase
	Players   []*Player
	Winner    Outcome

	// Day
	VoteCounts  map[string]int
	VoteLog     []Vote
	Accusations map[string]string // voter -> current target
	Accused     string
	DefenseUsed bool
	Verdicts    map[string]Decision

	// Night
	NightActions map[actionKey]NightAction
	JailMark     string
	ExecuteUsed  bool

	// Scheduling
	PhaseStartedAt time.Time
	RemainingDay   time.Duration
	timer          *phaseTimer
}

// NewGameState creates an empty lobby
func NewGameState(sessionID string, capacity int) *GameState {
	st := &GameState{
		SessionID: sessionID,
		Capacity:  capacity,
		Phase:     PhaseLobby,
		Players:   make([]*Player, 0, capacity),
	}
	st.resetDay()
	st.resetNight()
	return st
}

// FindByNickname returns the player with the given nickname
func (st *GameState) FindByNickname(nickname string) *Player {
	for _, p := range st.Players {
		if p.Nickname == nickname {
			return p
		}
	}
	return nil
}

// FindByConn returns the player bound to the given connection
func (st *GameState) FindByConn(connID string) *Player {
	for _, p := range st.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// AlivePlayers returns the players that are still alive
func (st *GameState) AlivePlayers() []*Player {
	alive := make([]*Player, 0, len(st.Players))
	for _, p := range st.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// HasTimer reports whether a phase timer is armed
func (st *GameState) HasTimer() bool {
	return st.timer != nil
}

func (st *GameState) resetDay() {
	st.VoteCounts = make(map[string]int)
	st.VoteLog = []Vote{}
	st.Accusations = make(map[string]string)
	st.Accused = ""
	st.DefenseUsed = false
	st.Verdicts = make(map[string]Decision)
	st.RemainingDay = 0
}

func (st *GameState) resetNight() {
	st.NightActions = make(map[actionKey]NightAction)
	st.JailMark = ""
}
