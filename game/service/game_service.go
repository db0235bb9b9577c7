package service

import (
	"context"
	"errors"
	"time"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/protocol"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// GameService defines all game-related operations
type GameService interface {
	// Player events
	Dispatch(ctx context.Context, connID string, in protocol.Inbound) error
	Join(ctx context.Context, connID, nickname string) (*JoinResult, error)
	Chat(ctx context.Context, connID, message string) error
	Accuse(ctx context.Context, connID, target string) error
	Verdict(ctx context.Context, connID string, decision engine.Decision) error
	NightAction(ctx context.Context, connID string, kind engine.ActionKind, target string) error
	Disconnect(ctx context.Context, connID string) error

	// Session Management
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, notifier engine.Notifier) (*Session, error)
	Get(id string) (*Session, error)
	FindOpenLobby() *Session
	FindByConn(connID string) (*Session, error)
	BindConn(connID, sessionID string)
	UnbindConn(connID string)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles roster loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         engine.Engine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
