package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/protocol"
)

// actionFor maps a role capability onto the night action the bot submits
var actionFor = map[engine.Capability]engine.ActionKind{
	engine.CapabilityKill:        engine.ActionKill,
	engine.CapabilityProtect:     engine.ActionProtect,
	engine.CapabilitySilence:     engine.ActionSilence,
	engine.CapabilityJail:        engine.ActionJail,
	engine.CapabilityInvestigate: engine.ActionInvestigate,
}

// frame is an inbound message as the bot reads it off the wire
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Bot plays one seat by picking uniformly among the moves open to it
type Bot struct {
	nickname string
	roster   map[string]engine.Role
	rng      *rand.Rand
	delay    time.Duration
	log      *zap.Logger

	conn    *websocket.Conn
	role    engine.Role
	players []protocol.PlayerView
	winner  string
}

// NewBot creates a bot for the given roster
func NewBot(nickname string, roster *engine.GameConfig, rng *rand.Rand, delay time.Duration) *Bot {
	roles := make(map[string]engine.Role, len(roster.Roles))
	for _, r := range roster.Roles {
		roles[r.Name] = r
	}
	return &Bot{
		nickname: nickname,
		roster:   roles,
		rng:      rng,
		delay:    delay,
		log:      zap.L().With(zap.String("bot", nickname)),
	}
}

// FetchRoster reads a roster from the server's REST API
func FetchRoster(ctx context.Context, serverURL, name string) (*engine.GameConfig, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", serverURL+"/api/configs/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch roster %s: status %d", name, resp.StatusCode)
	}

	var roster engine.GameConfig
	if err := json.NewDecoder(resp.Body).Decode(&roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	return &roster, nil
}

// Play joins a lobby on the server and plays until the game ends. It
// returns the winning faction.
func (b *Bot) Play(ctx context.Context, serverURL string) (string, error) {
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to connect: %w", err)
	}
	b.conn = conn
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := b.send(protocol.EventJoin, protocol.JoinRequest{Nickname: b.nickname}); err != nil {
		return "", err
	}

	for b.winner == "" {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("connection lost: %w", err)
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			b.log.Warn("bad frame", zap.Error(err))
			continue
		}
		if err := b.handle(f); err != nil {
			return "", err
		}
	}

	return b.winner, nil
}

func (b *Bot) handle(f frame) error {
	switch f.Event {
	case protocol.EventAssignRole:
		var msg protocol.AssignRole
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return err
		}
		if msg.Role != "" {
			b.role = b.roster[msg.Role]
			b.log.Info("role dealt", zap.String("role", msg.Role))
		}

	case protocol.EventUpdatePlayers:
		var msg protocol.UpdatePlayers
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return err
		}
		b.players = msg.Players

	case protocol.EventPhaseChange:
		var msg protocol.PhaseChange
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return err
		}
		return b.onPhase(msg.Phase)

	case protocol.EventDefensePhase:
		var msg protocol.DefensePhase
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return err
		}
		if msg.Accused != b.nickname && b.alive() {
			b.pause()
			return b.send(protocol.EventVerdict, protocol.VerdictRequest{Decision: b.pickVerdict()})
		}

	case protocol.EventGameOver:
		var msg protocol.GameOver
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			return err
		}
		b.winner = msg.Winner
		b.log.Info("game over", zap.String("winner", msg.Winner))
	}
	return nil
}

func (b *Bot) onPhase(phase string) error {
	if !b.alive() {
		return nil
	}

	switch engine.Phase(phase) {
	case engine.PhaseDay:
		if target, ok := b.pickAccusation(); ok {
			b.pause()
			return b.send(protocol.EventAccuse, protocol.AccuseRequest{Target: target})
		}

	case engine.PhaseNight:
		if kind, target, ok := b.pickNightAction(); ok {
			b.pause()
			return b.send(protocol.EventNightAction, protocol.NightActionRequest{Kind: string(kind), Target: target})
		}
	}
	return nil
}

// pickAccusation chooses another living player
func (b *Bot) pickAccusation() (string, bool) {
	others := b.livingOthers()
	if len(others) == 0 {
		return "", false
	}
	return others[b.rng.IntN(len(others))], true
}

func (b *Bot) pickVerdict() string {
	if b.rng.IntN(2) == 0 {
		return protocol.VerdictGuilty
	}
	return protocol.VerdictInnocent
}

// pickNightAction chooses the role's action and a living target. Protectors
// may pick themselves; everyone else targets another player.
func (b *Bot) pickNightAction() (engine.ActionKind, string, bool) {
	kind, ok := actionFor[b.role.Capability]
	if !ok {
		return "", "", false
	}

	candidates := b.livingOthers()
	if kind == engine.ActionProtect {
		candidates = append(candidates, b.nickname)
	}
	if len(candidates) == 0 {
		return "", "", false
	}
	return kind, candidates[b.rng.IntN(len(candidates))], true
}

func (b *Bot) livingOthers() []string {
	var others []string
	for _, p := range b.players {
		if p.Alive && p.Nickname != b.nickname {
			others = append(others, p.Nickname)
		}
	}
	return others
}

func (b *Bot) alive() bool {
	for _, p := range b.players {
		if p.Nickname == b.nickname {
			return p.Alive
		}
	}
	return false
}

func (b *Bot) pause() {
	if b.delay > 0 {
		time.Sleep(time.Duration(b.rng.Int64N(int64(b.delay))))
	}
}

func (b *Bot) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(protocol.Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	b.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return b.conn.WriteMessage(websocket.TextMessage, msg)
}
