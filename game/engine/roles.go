package engine

import (
	cryptorand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// NewRand returns a ChaCha8 generator seeded from crypto/rand
func NewRand() *rand.Rand {
	var seed [32]byte
	_, _ = cryptorand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// AssignRoles deals the roster to the players. The players are permuted with
// Fisher–Yates and roster[i] goes to the i-th shuffled player, so the dealt
// multiset always equals the roster. Every player is reset to alive, unjailed
// and unsilenced.
func AssignRoles(rng *rand.Rand, players []*Player, roster []Role) error {
	if len(players) != len(roster) {
		return fmt.Errorf("%w: %d players, %d roles", ErrRosterMismatch, len(players), len(roster))
	}

	shuffled := make([]*Player, len(players))
	copy(shuffled, players)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	for i, p := range shuffled {
		role := roster[i]
		p.Role = &role
		p.Alive = true
		p.Jailed = false
		p.Silenced = false
	}
	return nil
}
