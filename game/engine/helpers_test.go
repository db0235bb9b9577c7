package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ekincelikten/rp-game-server/game/protocol"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// dealtState seats players p1..pn (connections c1..cn) holding the roles in order
func dealtState(phase Phase, roles ...Role) *GameState {
	st := NewGameState("test", len(roles))
	for i, r := range roles {
		role := r
		st.Players = append(st.Players, &Player{
			ConnID:   fmt.Sprintf("c%d", i+1),
			Nickname: fmt.Sprintf("p%d", i+1),
			Avatar:   i + 1,
			Role:     &role,
			Alive:    true,
		})
	}
	st.Phase = phase
	return st
}

// classicState seats the default roster: p1 Wraith, p2 Banshee, p3 Jailer,
// p4 Healer, p5 Medium, p6 Citizen
func classicState(phase Phase) *GameState {
	return dealtState(phase, DefaultGameConfig().Roles...)
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward, firing due timers in deadline order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

// Active returns the number of timers that can still fire
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type sentMessage struct {
	conn string
	msg  protocol.Message
}

type recorder struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recorder) Send(connID string, msg protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{conn: connID, msg: msg})
}

func (r *recorder) events(connID, event string) []protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Message
	for _, s := range r.sent {
		if s.conn == connID && s.msg.Event == event {
			out = append(out, s.msg)
		}
	}
	return out
}

func (r *recorder) last(connID, event string) (protocol.Message, bool) {
	msgs := r.events(connID, event)
	if len(msgs) == 0 {
		return protocol.Message{}, false
	}
	return msgs[len(msgs)-1], true
}
