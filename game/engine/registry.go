package engine

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// JoinPlayer adds a player to a lobby-phase session. The avatar is drawn
// without replacement from 1..avatarCount while any index is free, and at
// random once the pool is exhausted.
func JoinPlayer(state *GameState, rng *rand.Rand, connID, nickname string, avatarCount int) (*Player, error) {
	switch state.Phase {
	case PhaseLobby:
	case PhaseEnded:
		return nil, ErrGameEnded
	default:
		return nil, ErrWrongPhase
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrNicknameRequired
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return nil, ErrNicknameTooLong
	}
	if state.FindByNickname(nickname) != nil {
		return nil, ErrNicknameTaken
	}
	if state.FindByConn(connID) != nil {
		return nil, ErrConnectionInUse
	}
	if len(state.Players) >= state.Capacity {
		return nil, ErrSessionFull
	}

	player := &Player{
		ConnID:   connID,
		Nickname: nickname,
		Avatar:   pickAvatar(state, rng, avatarCount),
		Alive:    true,
	}
	state.Players = append(state.Players, player)
	return player, nil
}

// RemovePlayer drops a player from a session that has not started yet
func RemovePlayer(state *GameState, connID string) (*Player, error) {
	if state.Phase != PhaseLobby {
		return nil, ErrWrongPhase
	}
	for i, p := range state.Players {
		if p.ConnID == connID {
			state.Players = append(state.Players[:i], state.Players[i+1:]...)
			return p, nil
		}
	}
	return nil, ErrNotInSession
}

func pickAvatar(state *GameState, rng *rand.Rand, count int) int {
	if count < 1 || count > MaxAvatars {
		count = MaxAvatars
	}

	used := make(map[int]bool, len(state.Players))
	for _, p := range state.Players {
		used[p.Avatar] = true
	}
	free := make([]int, 0, count)
	for i := 1; i <= count; i++ {
		if !used[i] {
			free = append(free, i)
		}
	}

	if len(free) > 0 {
		return free[rng.IntN(len(free))]
	}
	return rng.IntN(count) + 1
}
