package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/protocol"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier engine.Notifier
	mu       sync.Mutex // serializes lobby matchmaking
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, notifier engine.Notifier) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		notifier: notifier,
	}
}

// Dispatch routes a validated inbound event to the caller's session.
// Rejected events are logged and reported to the caller, which is expected
// to drop them silently.
func (s *gameServiceImpl) Dispatch(ctx context.Context, connID string, in protocol.Inbound) error {
	if in == nil {
		return fmt.Errorf("nil inbound event")
	}

	var err error
	switch req := in.(type) {
	case protocol.JoinRequest:
		_, err = s.Join(ctx, connID, req.Nickname)
	case protocol.ChatRequest:
		err = s.Chat(ctx, connID, req.Message)
	case protocol.AccuseRequest:
		err = s.Accuse(ctx, connID, req.Target)
	case protocol.VerdictRequest:
		err = s.Verdict(ctx, connID, engine.Decision(req.Decision))
	case protocol.NightActionRequest:
		err = s.NightAction(ctx, connID, engine.ActionKind(req.Kind), req.Target)
	default:
		err = fmt.Errorf("unsupported event %q", in.EventName())
	}

	if err != nil {
		zap.L().Debug("discarded event",
			zap.String("conn", connID),
			zap.String("event", in.EventName()),
			zap.Error(err))
	}
	return err
}

// Join seats the connection in the open lobby, creating one with the default
// roster when none has a free seat
func (s *gameServiceImpl) Join(ctx context.Context, connID, nickname string) (*JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessions.FindByConn(connID); err == nil {
		return nil, engine.ErrConnectionInUse
	}

	sess := s.sessions.FindOpenLobby()
	if sess == nil {
		var err error
		sess, err = s.sessions.Create("", s.configs.GetDefault(), s.notifier)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		zap.L().Info("session created", zap.String("session", sess.ID), zap.String("roster", sess.Config.Name))
	}

	player, err := sess.Engine.Join(connID, nickname)
	if err != nil {
		return nil, err
	}

	s.sessions.BindConn(connID, sess.ID)
	s.sessions.UpdateLastAccessed(sess.ID)

	return &JoinResult{
		SessionID: sess.ID,
		Nickname:  player.Nickname,
		Avatar:    player.AvatarPath(),
	}, nil
}

// Chat relays a chat line within the caller's session
func (s *gameServiceImpl) Chat(ctx context.Context, connID, message string) error {
	sess, err := s.sessionFor(connID)
	if err != nil {
		return err
	}
	return sess.Engine.Chat(connID, message)
}

// Accuse casts a day accusation
func (s *gameServiceImpl) Accuse(ctx context.Context, connID, target string) error {
	sess, err := s.sessionFor(connID)
	if err != nil {
		return err
	}
	return sess.Engine.Accuse(connID, target)
}

// Verdict casts a defense verdict
func (s *gameServiceImpl) Verdict(ctx context.Context, connID string, decision engine.Decision) error {
	sess, err := s.sessionFor(connID)
	if err != nil {
		return err
	}
	return sess.Engine.Verdict(connID, decision)
}

// NightAction submits a concealed night action
func (s *gameServiceImpl) NightAction(ctx context.Context, connID string, kind engine.ActionKind, target string) error {
	sess, err := s.sessionFor(connID)
	if err != nil {
		return err
	}
	return sess.Engine.SubmitAction(connID, kind, target)
}

// Disconnect releases a connection. A player still in a lobby gives up the
// seat; once roles are dealt the player stays in the game.
func (s *gameServiceImpl) Disconnect(ctx context.Context, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.FindByConn(connID)
	if err != nil {
		return nil
	}
	defer s.sessions.UnbindConn(connID)

	if err := sess.Engine.Leave(connID); err != nil {
		if errors.Is(err, engine.ErrWrongPhase) {
			zap.L().Info("player disconnected mid-game", zap.String("session", sess.ID), zap.String("conn", connID))
			return nil
		}
		return err
	}
	return nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return toSessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, toSessionInfo(sess))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteSession stops and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Delete(sessionID)
}

// ListConfigs returns all available rosters
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a roster by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
				ids := make([]string, 0, len(available))
				for _, c := range available {
					ids = append(ids, c.ConfigID)
				}
				return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, ids, err)
			}
		}
		return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	return config, nil
}

// SaveConfig validates and stores a roster
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) sessionFor(connID string) (*Session, error) {
	sess, err := s.sessions.FindByConn(connID)
	if err != nil {
		return nil, engine.ErrNotInSession
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	return sess, nil
}

func toSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.Config.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.Snapshot(),
	}
}
