// Package engine provides the session rules of the Spirits and Villagers
// party game.
//
// The engine package implements the game mechanics including:
//   - Lobby membership, nickname uniqueness and avatar allocation
//   - Role dealing with a Fisher–Yates shuffle
//   - Day accusations, the defense window and its verdict
//   - Concealed night actions and their ordered resolution
//   - Win-condition evaluation after every elimination
//
// Core Types:
//
// GameState is the session aggregate: players, the current phase, the day's
// tally, the night's pending actions and the single live phase timer. The
// component functions (JoinPlayer, AssignRoles, CastAccusation, CastVerdict,
// SubmitNightAction, ResolveNight, Evaluate) operate on the GameState they
// are handed and keep nothing else.
//
// Scheduler implements the Engine interface. It owns one GameState, serializes
// every inbound event and timer firing behind a mutex and emits notifications
// through a Notifier. Timers come from a Clock so tests can drive them.
//
// Usage:
//
//	sched, err := engine.NewScheduler("ab12", engine.DefaultGameConfig(), notifier)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// The sixth join deals roles and starts the first day
//	player, err := sched.Join(connID, "alice")
//
// Game Rules:
//
// A full lobby deals one role per player. During the day players accuse each
// other; the first player accused by a majority of the living gets a short
// defense, after which a guilty verdict hangs them and night falls, and an
// acquittal resumes the day with the time it had left. At night roles act in
// secret: the Jailer detains and may execute once per game, killers strike
// unless the victim is protected or jailed, silencers mute a player for the
// next day and investigators learn a role. Villagers win when no Spirit is
// alive; Spirits win once they match the Villagers in number.
package engine
