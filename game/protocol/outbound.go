package protocol

// Outbound event names
const (
	EventUpdatePlayers       = "updatePlayers"
	EventAssignRole          = "assignRole"
	EventPhaseChange         = "phaseChange"
	EventVoteUpdate          = "voteUpdate"
	EventDefensePhase        = "defensePhase"
	EventChatMessage         = "chatMessage"
	EventGameOver            = "gameOver"
	EventGhostChatInfo       = "ghostChatInfo"
	EventJailChat            = "jailChat"
	EventAnnouncement        = "announcement"
	EventPlayerSilenced      = "playerSilenced"
	EventInvestigationResult = "investigationResult"
)

// Announcement kinds
const (
	AnnounceHanged    = "hanged"
	AnnounceAcquitted = "acquitted"
	AnnounceKilled    = "killed"
	AnnounceSaved     = "saved"
	AnnounceExecuted  = "executed"
)

// Message is an outbound notification
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NewMessage wraps a payload in a named message
func NewMessage(event string, data any) Message {
	return Message{Event: event, Data: data}
}

// PlayerView is the public projection of a player
type PlayerView struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Alive    bool   `json:"alive"`
	Silenced bool   `json:"silenced"`
}

type UpdatePlayers struct {
	Players []PlayerView `json:"players"`
}

// AssignRole is sent privately. Role is empty until roles are dealt.
type AssignRole struct {
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

type PhaseChange struct {
	Phase   string `json:"phase"`
	Seconds int    `json:"seconds"`
}

type VoteEntry struct {
	Voter  string `json:"voter"`
	Target string `json:"target"`
}

type VoteUpdate struct {
	Counts map[string]int `json:"counts"`
	Log    []VoteEntry    `json:"log"`
}

type DefensePhase struct {
	Accused string `json:"accused"`
	Seconds int    `json:"seconds"`
}

type ChatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type GameOver struct {
	Winner string `json:"winner"`
}

type Teammate struct {
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

type GhostChatInfo struct {
	Teammates []Teammate `json:"teammates"`
}

// JailChat opens the jail side-channel to the pair, or carries one line on
// it when From is set
type JailChat struct {
	Jailer string `json:"jailer"`
	Jailed string `json:"jailed"`
	From   string `json:"from,omitempty"`
	Text   string `json:"text,omitempty"`
}

type Announcement struct {
	Kind     string `json:"kind"`
	Nickname string `json:"nickname"`
}

type PlayerSilenced struct {
	Nickname string `json:"nickname"`
}

type InvestigationResult struct {
	Target string `json:"target"`
	Role   string `json:"role"`
	Team   string `json:"team"`
}
