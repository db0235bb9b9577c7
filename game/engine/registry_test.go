package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestJoinPlayer(t *testing.T) {
	st := NewGameState("test", 6)
	rng := newTestRand(1)

	p, err := JoinPlayer(st, rng, "c1", "  alice ", MaxAvatars)
	if err != nil {
		t.Fatalf("Expected join to succeed, got: %v", err)
	}
	if p.Nickname != "alice" {
		t.Errorf("Expected trimmed nickname alice, got %q", p.Nickname)
	}
	if p.Avatar < 1 || p.Avatar > MaxAvatars {
		t.Errorf("Expected avatar in 1..%d, got %d", MaxAvatars, p.Avatar)
	}
	if !p.Alive || p.Role != nil {
		t.Error("Expected a living player without a role")
	}
	if st.FindByConn("c1") != p || st.FindByNickname("alice") != p {
		t.Error("Expected player to be found by connection and nickname")
	}
}

func TestJoinPlayer_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(st *GameState)
		connID   string
		nickname string
		want     error
	}{
		{"empty nickname", nil, "c9", "", ErrNicknameRequired},
		{"blank nickname", nil, "c9", "   ", ErrNicknameRequired},
		{"too long", nil, "c9", strings.Repeat("x", MaxNicknameLength+1), ErrNicknameTooLong},
		{"taken", nil, "c9", "p1", ErrNicknameTaken},
		{"connection in use", nil, "c1", "newbie", ErrConnectionInUse},
		{"full", func(st *GameState) { st.Capacity = 2 }, "c9", "newbie", ErrSessionFull},
		{"not lobby", func(st *GameState) { st.Phase = PhaseDay }, "c9", "newbie", ErrWrongPhase},
		{"ended", func(st *GameState) { st.Phase = PhaseEnded }, "c9", "newbie", ErrGameEnded},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			st := NewGameState("test", 6)
			rng := newTestRand(2)
			for i := 1; i <= 2; i++ {
				if _, err := JoinPlayer(st, rng, fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i), MaxAvatars); err != nil {
					t.Fatalf("setup join failed: %v", err)
				}
			}
			if test.setup != nil {
				test.setup(st)
			}

			_, err := JoinPlayer(st, rng, test.connID, test.nickname, MaxAvatars)
			if !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
			if len(st.Players) != 2 {
				t.Errorf("Expected rejected join to leave 2 players, got %d", len(st.Players))
			}
		})
	}
}

func TestJoinPlayer_AvatarsUniqueUntilExhausted(t *testing.T) {
	st := NewGameState("test", MaxCapacity)
	rng := newTestRand(3)

	seen := make(map[int]bool)
	for i := 1; i <= MaxCapacity; i++ {
		p, err := JoinPlayer(st, rng, fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i), MaxAvatars)
		if err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
		if p.Avatar < 1 || p.Avatar > MaxAvatars {
			t.Fatalf("avatar %d out of range", p.Avatar)
		}
		if i <= MaxAvatars {
			if seen[p.Avatar] {
				t.Errorf("Expected unique avatar for join %d, got repeat %d", i, p.Avatar)
			}
			seen[p.Avatar] = true
		}
	}
	if len(seen) != MaxAvatars {
		t.Errorf("Expected all %d avatars used, got %d", MaxAvatars, len(seen))
	}
}

func TestJoinPlayer_SmallAvatarPool(t *testing.T) {
	st := NewGameState("test", 4)
	rng := newTestRand(4)
	for i := 1; i <= 4; i++ {
		p, err := JoinPlayer(st, rng, fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i), 2)
		if err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
		if p.Avatar < 1 || p.Avatar > 2 {
			t.Errorf("Expected avatar within pool of 2, got %d", p.Avatar)
		}
	}
}

func TestRemovePlayer(t *testing.T) {
	st := NewGameState("test", 6)
	rng := newTestRand(5)
	JoinPlayer(st, rng, "c1", "p1", MaxAvatars)
	JoinPlayer(st, rng, "c2", "p2", MaxAvatars)

	p, err := RemovePlayer(st, "c1")
	if err != nil {
		t.Fatalf("Expected removal to succeed, got: %v", err)
	}
	if p.Nickname != "p1" || len(st.Players) != 1 {
		t.Errorf("Expected p1 removed leaving 1 player, got %d", len(st.Players))
	}

	if _, err := RemovePlayer(st, "c1"); !errors.Is(err, ErrNotInSession) {
		t.Errorf("Expected ErrNotInSession, got %v", err)
	}

	st.Phase = PhaseDay
	if _, err := RemovePlayer(st, "c2"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Expected ErrWrongPhase after start, got %v", err)
	}
}
