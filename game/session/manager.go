package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConnNotBound         = errors.New("connection not bound to a session")
)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	conns    map[string]string // connection ID -> lower-cased session ID
	opts     []engine.Option
	mu       sync.RWMutex
}

// NewManager creates a new session manager. The options are passed to every
// scheduler it creates.
func NewManager(opts ...engine.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		conns:    make(map[string]string),
		opts:     opts,
	}
}

// Create creates a new session with the given ID and roster
func (m *Manager) Create(id string, config *engine.GameConfig, notifier engine.Notifier) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}

	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewScheduler(id, config, notifier, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// FindOpenLobby returns the oldest session still waiting for players
func (m *Manager) FindOpenLobby() *service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var open *service.Session
	for _, session := range m.sessions {
		if !session.Engine.HasOpenSeat() {
			continue
		}
		if open == nil || session.CreatedAt.Before(open.CreatedAt) {
			open = session
		}
	}
	return open
}

// FindByConn returns the session a connection joined
func (m *Manager) FindByConn(connID string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.conns[connID]
	if !ok {
		return nil, ErrConnNotBound
	}
	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// BindConn records that a connection belongs to a session
func (m *Manager) BindConn(connID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[connID] = strings.ToLower(sessionID)
}

// UnbindConn forgets a connection
func (m *Manager) UnbindConn(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, connID)
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete stops and removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	m.remove(lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupEndedSessions disposes of sessions whose game is over. The final
// notifications have already been queued when a session reaches that phase.
func (m *Manager) CleanupEndedSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.Engine.IsEnded() {
			m.remove(id)
			removed++
		}
	}
	return removed
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			m.remove(id)
			removed++
		}
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// remove stops the session's engine and drops it with its connections.
// The caller holds the write lock.
func (m *Manager) remove(lowerID string) {
	session := m.sessions[lowerID]
	session.Engine.Stop()
	delete(m.sessions, lowerID)

	for conn, id := range m.conns {
		if id == lowerID {
			delete(m.conns, conn)
		}
	}
	zap.L().Info("session removed", zap.String("session", session.ID))
}

// generateSessionID generates a random 4-character session ID that is not in use
func (m *Manager) generateSessionID() string {
	for {
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
