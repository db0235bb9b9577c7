package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ekincelikten/rp-game-server/game/engine"
	"github.com/ekincelikten/rp-game-server/game/protocol"
	"github.com/ekincelikten/rp-game-server/game/service"
)

var discard = engine.NotifierFunc(func(string, protocol.Message) {})

// stubEngine overrides the lifecycle queries the manager relies on
type stubEngine struct {
	engine.Engine
	ended   bool
	stopped bool
}

func (e *stubEngine) IsEnded() bool     { return e.ended }
func (e *stubEngine) HasOpenSeat() bool { return false }
func (e *stubEngine) Stop()             { e.stopped = true }

func addStub(m *Manager, id string, eng *stubEngine, lastAccessed time.Time) {
	m.sessions[strings.ToLower(id)] = &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         engine.DefaultGameConfig(),
		CreatedAt:      lastAccessed,
		LastAccessedAt: lastAccessed,
	}
}

func TestManager_Create(t *testing.T) {
	t.Run("creates session with custom ID", func(t *testing.T) {
		m := NewManager()
		session, err := m.Create("Lobby1", engine.DefaultGameConfig(), discard)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		defer session.Engine.Stop()

		if session.ID != "Lobby1" {
			t.Errorf("Expected ID 'Lobby1', got '%s'", session.ID)
		}
		if session.Engine.Phase() != engine.PhaseLobby {
			t.Errorf("Expected lobby phase, got %s", session.Engine.Phase())
		}
		if session.CreatedAt.IsZero() || session.LastAccessedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("creates session with auto-generated ID", func(t *testing.T) {
		m := NewManager()
		session, err := m.Create("", engine.DefaultGameConfig(), discard)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		defer session.Engine.Stop()

		if len(session.ID) != 4 {
			t.Errorf("Expected 4-char ID, got '%s'", session.ID)
		}
	})

	t.Run("rejects duplicate ID", func(t *testing.T) {
		m := NewManager()
		if _, err := m.Create("dup", engine.DefaultGameConfig(), discard); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		_, err := m.Create("dup", engine.DefaultGameConfig(), discard)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects duplicate ID case-insensitively", func(t *testing.T) {
		m := NewManager()
		if _, err := m.Create("abcd", engine.DefaultGameConfig(), discard); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		_, err := m.Create("ABCD", engine.DefaultGameConfig(), discard)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects invalid roster", func(t *testing.T) {
		m := NewManager()
		config := engine.DefaultGameConfig()
		config.Capacity = 7

		if _, err := m.Create("bad", config, discard); err == nil {
			t.Error("Expected error for invalid roster")
		}
		if m.Count() != 0 {
			t.Errorf("Expected no sessions, got %d", m.Count())
		}
	})
}

func TestManager_Get(t *testing.T) {
	m := NewManager()
	if _, err := m.Create("AbCd", engine.DefaultGameConfig(), discard); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	for _, id := range []string{"AbCd", "abcd", "ABCD"} {
		t.Run(id, func(t *testing.T) {
			session, err := m.Get(id)
			if err != nil {
				t.Fatalf("Expected session, got %v", err)
			}
			if session.ID != "AbCd" {
				t.Errorf("Expected ID 'AbCd', got '%s'", session.ID)
			}
		})
	}

	t.Run("unknown ID", func(t *testing.T) {
		if _, err := m.Get("zzzz"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_FindOpenLobby(t *testing.T) {
	t.Run("no sessions", func(t *testing.T) {
		m := NewManager()
		if session := m.FindOpenLobby(); session != nil {
			t.Errorf("Expected nil, got %s", session.ID)
		}
	})

	t.Run("prefers the oldest lobby", func(t *testing.T) {
		m := NewManager()
		first, _ := m.Create("first", engine.DefaultGameConfig(), discard)
		second, _ := m.Create("second", engine.DefaultGameConfig(), discard)
		first.CreatedAt = second.CreatedAt.Add(-time.Minute)

		if session := m.FindOpenLobby(); session == nil || session.ID != "first" {
			t.Errorf("Expected 'first', got %v", session)
		}
	})

	t.Run("skips full and running sessions", func(t *testing.T) {
		m := NewManager()
		full, _ := m.Create("full", engine.DefaultGameConfig(), discard)
		defer full.Engine.Stop()
		for i := 1; i <= 6; i++ {
			if _, err := full.Engine.Join(fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i)); err != nil {
				t.Fatalf("join %d: %v", i, err)
			}
		}
		addStub(m, "ended", &stubEngine{ended: true}, time.Now())

		if session := m.FindOpenLobby(); session != nil {
			t.Errorf("Expected nil, got %s", session.ID)
		}

		open, _ := m.Create("open", engine.DefaultGameConfig(), discard)
		if session := m.FindOpenLobby(); session != open {
			t.Errorf("Expected 'open', got %v", session)
		}
	})
}

func TestManager_ConnIndex(t *testing.T) {
	m := NewManager()
	if _, err := m.Create("room", engine.DefaultGameConfig(), discard); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := m.FindByConn("c1"); !errors.Is(err, ErrConnNotBound) {
		t.Errorf("Expected ErrConnNotBound, got %v", err)
	}

	m.BindConn("c1", "ROOM")
	session, err := m.FindByConn("c1")
	if err != nil {
		t.Fatalf("Expected bound session, got %v", err)
	}
	if session.ID != "room" {
		t.Errorf("Expected 'room', got '%s'", session.ID)
	}

	m.UnbindConn("c1")
	if _, err := m.FindByConn("c1"); !errors.Is(err, ErrConnNotBound) {
		t.Errorf("Expected ErrConnNotBound after unbind, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()
	eng := &stubEngine{}
	addStub(m, "gone", eng, time.Now())
	m.BindConn("c1", "gone")

	if err := m.Delete("GONE"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if !eng.stopped {
		t.Error("Expected engine to be stopped")
	}
	if _, err := m.Get("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := m.FindByConn("c1"); !errors.Is(err, ErrConnNotBound) {
		t.Errorf("Expected connection to be unbound, got %v", err)
	}
	if err := m.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"aaaa", "bbbb", "cccc"} {
		addStub(m, id, &stubEngine{}, time.Now())
	}

	if got := len(m.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}
	if m.Count() != 3 {
		t.Errorf("Expected count 3, got %d", m.Count())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	m := NewManager()
	old := time.Now().Add(-time.Hour)
	addStub(m, "room", &stubEngine{}, old)

	if err := m.UpdateLastAccessed("room"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	session, _ := m.Get("room")
	if !session.LastAccessedAt.After(old) {
		t.Error("Expected LastAccessedAt to move forward")
	}
	if err := m.UpdateLastAccessed("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupEndedSessions(t *testing.T) {
	m := NewManager()
	ended := &stubEngine{ended: true}
	running := &stubEngine{}
	addStub(m, "done", ended, time.Now())
	addStub(m, "live", running, time.Now())
	m.BindConn("c1", "done")

	if removed := m.CleanupEndedSessions(); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if !ended.stopped || running.stopped {
		t.Error("Expected only the ended engine to be stopped")
	}
	if _, err := m.Get("live"); err != nil {
		t.Errorf("Expected running session to remain, got %v", err)
	}
	if _, err := m.FindByConn("c1"); !errors.Is(err, ErrConnNotBound) {
		t.Errorf("Expected connection to be unbound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	m := NewManager()
	stale := &stubEngine{}
	addStub(m, "old", stale, time.Now().Add(-2*time.Hour))
	addStub(m, "new", &stubEngine{}, time.Now())

	if removed := m.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if !stale.stopped {
		t.Error("Expected expired engine to be stopped")
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", m.Count())
	}
}
