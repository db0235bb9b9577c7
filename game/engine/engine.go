package engine

import (
	"time"

	"github.com/ekincelikten/rp-game-server/game/protocol"
)

// Engine provides the operations of a single session
type Engine interface {
	// Membership
	Join(connID, nickname string) (*Player, error)
	Leave(connID string) error
	HasPlayer(connID string) bool
	HasOpenSeat() bool

	// Player actions
	Chat(connID, message string) error
	Accuse(connID, target string) error
	Verdict(connID string, decision Decision) error
	SubmitAction(connID string, kind ActionKind, target string) error

	// State
	Snapshot() Snapshot
	Phase() Phase
	Winner() Outcome
	IsEnded() bool
	GetConfig() *GameConfig

	// Stop cancels the live timer and ends the session without a winner
	Stop()
}

// Notifier delivers an outbound message to one connection. Implementations
// must not block.
type Notifier interface {
	Send(connID string, msg protocol.Message)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(connID string, msg protocol.Message)

// Send calls f(connID, msg)
func (f NotifierFunc) Send(connID string, msg protocol.Message) {
	f(connID, msg)
}

// Snapshot is the public read model of a session. Roles and teams are
// never included.
type Snapshot struct {
	SessionID      string                `json:"session_id"`
	Roster         string                `json:"roster"`
	Phase          Phase                 `json:"phase"`
	Capacity       int                   `json:"capacity"`
	Players        []protocol.PlayerView `json:"players"`
	VoteCounts     map[string]int        `json:"vote_counts"`
	Accused        string                `json:"accused,omitempty"`
	Winner         Outcome               `json:"winner,omitempty"`
	PhaseStartedAt time.Time             `json:"phase_started_at"`
	Deadline       *time.Time            `json:"deadline,omitempty"`
}

// PlayerViews projects the players onto their public view
func PlayerViews(players []*Player) []protocol.PlayerView {
	views := make([]protocol.PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, protocol.PlayerView{
			Nickname: p.Nickname,
			Avatar:   p.AvatarPath(),
			Alive:    p.Alive,
			Silenced: p.Silenced,
		})
	}
	return views
}
