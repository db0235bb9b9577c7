package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekincelikten/rp-game-server/game/protocol"
)

// Scheduler drives one session through lobby, day, defense, night and ended.
// Every inbound event and every timer firing runs to completion under mu.
type Scheduler struct {
	mu       sync.Mutex
	state    *GameState
	config   *GameConfig
	clock    Clock
	notifier Notifier
	rng      *rand.Rand
	gen      uint64
	log      *zap.Logger
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces the real clock
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithRand replaces the crypto-seeded random source
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		s.rng = rng
	}
}

// NewScheduler creates a lobby for the given roster
func NewScheduler(sessionID string, config *GameConfig, notifier Notifier, opts ...Option) (*Scheduler, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}

	s := &Scheduler{
		state:    NewGameState(sessionID, config.Capacity),
		config:   config,
		clock:    RealClock(),
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRand()
	}
	s.log = zap.L().With(zap.String("session", sessionID))
	s.state.PhaseStartedAt = s.clock.Now()
	return s, nil
}

var _ Engine = (*Scheduler)(nil)

// Join adds a player to the lobby and deals roles once the lobby is full
func (s *Scheduler) Join(connID, nickname string) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := JoinPlayer(s.state, s.rng, connID, nickname, s.config.AvatarCount)
	if err != nil {
		return nil, err
	}
	s.log.Info("player joined",
		zap.String("nickname", p.Nickname),
		zap.Int("players", len(s.state.Players)),
		zap.Int("capacity", s.state.Capacity))

	s.notifier.Send(p.ConnID, protocol.NewMessage(protocol.EventAssignRole, protocol.AssignRole{Avatar: p.AvatarPath()}))
	s.broadcastPlayers()

	if len(s.state.Players) == s.state.Capacity {
		s.startGame()
	}
	return p, nil
}

// Leave removes a player while the session is still a lobby
func (s *Scheduler) Leave(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := RemovePlayer(s.state, connID)
	if err != nil {
		return err
	}
	s.log.Info("player left lobby", zap.String("nickname", p.Nickname))
	s.broadcastPlayers()
	return nil
}

// HasPlayer reports whether the connection belongs to this session
func (s *Scheduler) HasPlayer(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FindByConn(connID) != nil
}

// HasOpenSeat reports whether the session is a lobby with free capacity
func (s *Scheduler) HasOpenSeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase == PhaseLobby && len(s.state.Players) < s.state.Capacity
}

// Chat relays a chat line. At night the jail pair talks only to each other,
// and otherwise only living Spirits may talk, among themselves.
func (s *Scheduler) Chat(connID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == PhaseEnded {
		return ErrGameEnded
	}
	sender, err := livingActor(s.state, connID)
	if err != nil {
		return err
	}
	if sender.Silenced {
		return ErrSilenced
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	msg := protocol.NewMessage(protocol.EventChatMessage, protocol.ChatMessage{
		From: sender.Nickname,
		Text: fmt.Sprintf("%s: %s", sender.Nickname, message),
	})

	if s.state.Phase == PhaseNight {
		if jailer, jailed := s.jailPair(); jailer != nil && (sender == jailer || sender == jailed) {
			line := protocol.NewMessage(protocol.EventJailChat, protocol.JailChat{
				Jailer: jailer.Nickname,
				Jailed: jailed.Nickname,
				From:   sender.Nickname,
				Text:   message,
			})
			s.notifier.Send(jailer.ConnID, line)
			s.notifier.Send(jailed.ConnID, line)
			return nil
		}
		if sender.Team() != TeamSpirits {
			return ErrWrongPhase
		}
		for _, p := range s.state.Players {
			if p.Alive && p.Team() == TeamSpirits {
				s.notifier.Send(p.ConnID, msg)
			}
		}
		return nil
	}

	s.broadcast(msg)
	return nil
}

// Accuse casts a day accusation and opens the defense window when the
// threshold is first reached
func (s *Scheduler) Accuse(connID, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accused, err := CastAccusation(s.state, connID, target)
	if err != nil {
		return err
	}
	s.broadcastVotes()

	if accused != "" {
		s.enterDefense(accused)
	}
	return nil
}

// Verdict casts a defense verdict
func (s *Scheduler) Verdict(connID string, decision Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CastVerdict(s.state, connID, decision)
}

// SubmitAction records a concealed night action. Recording the night's jail
// mark opens the jail side-channel to the pair.
func (s *Scheduler) SubmitAction(connID string, kind ActionKind, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := s.state.JailMark != ""
	if err := SubmitNightAction(s.state, connID, kind, target); err != nil {
		return err
	}
	if kind == ActionJail && !marked {
		if jailer, jailed := s.jailPair(); jailer != nil {
			open := protocol.NewMessage(protocol.EventJailChat, protocol.JailChat{Jailer: jailer.Nickname, Jailed: jailed.Nickname})
			s.notifier.Send(jailer.ConnID, open)
			s.notifier.Send(jailed.ConnID, open)
		}
	}
	return nil
}

// Snapshot returns the public read model
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int, len(s.state.VoteCounts))
	for k, v := range s.state.VoteCounts {
		counts[k] = v
	}
	snap := Snapshot{
		SessionID:      s.state.SessionID,
		Roster:         s.config.Name,
		Phase:          s.state.Phase,
		Capacity:       s.state.Capacity,
		Players:        PlayerViews(s.state.Players),
		VoteCounts:     counts,
		Accused:        s.state.Accused,
		Winner:         s.state.Winner,
		PhaseStartedAt: s.state.PhaseStartedAt,
	}
	if s.state.timer != nil {
		deadline := s.state.timer.deadline
		snap.Deadline = &deadline
	}
	return snap
}

// Phase returns the current phase
func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase
}

// Winner returns the winning team once the game has ended
func (s *Scheduler) Winner() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Winner
}

// IsEnded reports whether the session reached its terminal phase
func (s *Scheduler) IsEnded() bool {
	return s.Phase() == PhaseEnded
}

// GetConfig returns the roster the session was created with
func (s *Scheduler) GetConfig() *GameConfig {
	return s.config
}

// Stop cancels the live timer and ends the session
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimer()
	s.state.Phase = PhaseEnded
}

func (s *Scheduler) startGame() {
	if err := AssignRoles(s.rng, s.state.Players, s.config.Roles); err != nil {
		s.log.Error("failed to deal roles", zap.Error(err))
		return
	}
	s.log.Info("roles dealt", zap.String("roster", s.config.Name))

	for _, p := range s.state.Players {
		s.notifier.Send(p.ConnID, protocol.NewMessage(protocol.EventAssignRole, protocol.AssignRole{
			Role:   p.RoleName(),
			Avatar: p.AvatarPath(),
		}))
	}
	s.broadcastPlayers()
	s.enterDay()
}

func (s *Scheduler) enterDay() {
	if outcome := Evaluate(s.state); outcome != OutcomeNone {
		s.endGame(outcome)
		return
	}

	s.state.Phase = PhaseDay
	s.state.resetDay()
	s.state.resetNight()
	s.state.PhaseStartedAt = s.clock.Now()
	s.armTimer(PhaseDay, s.config.DayDuration(), s.enterNight)
	s.log.Info("day started", zap.Int("alive", len(s.state.AlivePlayers())))
	s.broadcastPhase(s.config.DayDuration())
}

// resumeDay continues an interrupted day with the time it had left. The
// tally survives so the day cannot open a second defense.
func (s *Scheduler) resumeDay(remaining time.Duration) {
	s.state.Phase = PhaseDay
	s.state.Accused = ""
	s.state.Verdicts = make(map[string]Decision)
	s.state.PhaseStartedAt = s.clock.Now().Add(remaining - s.config.DayDuration())
	s.state.RemainingDay = 0
	s.armTimer(PhaseDay, remaining, s.enterNight)
	s.log.Info("day resumed", zap.Duration("remaining", remaining))
	s.broadcastPhase(remaining)
}

func (s *Scheduler) enterDefense(accused string) {
	remaining := s.config.DayDuration() - s.clock.Now().Sub(s.state.PhaseStartedAt)
	if remaining < MinRemainingDayTime {
		remaining = MinRemainingDayTime
	}

	s.state.RemainingDay = remaining
	s.state.Phase = PhaseDefense
	s.state.PhaseStartedAt = s.clock.Now()
	s.armTimer(PhaseDefense, s.config.DefenseDuration(), s.evaluateDefense)
	s.log.Info("defense started", zap.String("accused", accused), zap.Duration("remaining_day", remaining))

	s.broadcastPhase(s.config.DefenseDuration())
	s.broadcast(protocol.NewMessage(protocol.EventDefensePhase, protocol.DefensePhase{
		Accused: accused,
		Seconds: s.config.DefenseSeconds,
	}))
}

func (s *Scheduler) evaluateDefense() {
	guilty, innocent := TallyVerdicts(s.state)
	accused := s.state.FindByNickname(s.state.Accused)
	s.log.Info("defense closed",
		zap.String("accused", s.state.Accused),
		zap.Int("guilty", guilty),
		zap.Int("innocent", innocent))

	if accused != nil && guilty > innocent {
		accused.Alive = false
		s.announce(protocol.AnnounceHanged, accused.Nickname)
		s.broadcastPlayers()
		s.state.RemainingDay = 0
		s.enterNight()
		return
	}

	if accused != nil {
		s.announce(protocol.AnnounceAcquitted, accused.Nickname)
	}
	s.resumeDay(s.state.RemainingDay)
}

func (s *Scheduler) enterNight() {
	if outcome := Evaluate(s.state); outcome != OutcomeNone {
		s.endGame(outcome)
		return
	}

	s.state.Phase = PhaseNight
	s.state.Accused = ""
	s.state.resetNight()
	s.state.PhaseStartedAt = s.clock.Now()
	s.armTimer(PhaseNight, s.config.NightDuration(), s.resolveNight)
	s.log.Info("night started")
	s.broadcastPhase(s.config.NightDuration())

	spirits := make([]*Player, 0)
	for _, p := range s.state.Players {
		if p.Alive && p.Team() == TeamSpirits {
			spirits = append(spirits, p)
		}
	}
	for _, p := range spirits {
		teammates := make([]protocol.Teammate, 0, len(spirits)-1)
		for _, mate := range spirits {
			if mate != p {
				teammates = append(teammates, protocol.Teammate{Nickname: mate.Nickname, Role: mate.RoleName()})
			}
		}
		s.notifier.Send(p.ConnID, protocol.NewMessage(protocol.EventGhostChatInfo, protocol.GhostChatInfo{Teammates: teammates}))
	}
}

func (s *Scheduler) resolveNight() {
	report := ResolveNight(s.state)
	s.log.Info("night resolved",
		zap.String("jailed", report.Jailed),
		zap.String("executed", report.Executed),
		zap.Strings("killed", report.Killed),
		zap.Strings("saved", report.Saved),
		zap.Strings("silenced", report.Silenced))

	if report.Jailed != "" {
		pair := protocol.NewMessage(protocol.EventJailChat, protocol.JailChat{Jailer: report.Jailer, Jailed: report.Jailed})
		for _, nick := range []string{report.Jailer, report.Jailed} {
			if p := s.state.FindByNickname(nick); p != nil {
				s.notifier.Send(p.ConnID, pair)
			}
		}
	}
	if report.Executed != "" {
		s.announce(protocol.AnnounceExecuted, report.Executed)
	}
	for _, nick := range report.Killed {
		s.announce(protocol.AnnounceKilled, nick)
	}
	for _, nick := range report.Saved {
		s.announce(protocol.AnnounceSaved, nick)
	}
	for _, nick := range report.Silenced {
		s.broadcast(protocol.NewMessage(protocol.EventPlayerSilenced, protocol.PlayerSilenced{Nickname: nick}))
	}
	for _, inv := range report.Investigations {
		s.notifier.Send(inv.Investigator, protocol.NewMessage(protocol.EventInvestigationResult, protocol.InvestigationResult{
			Target: inv.Target,
			Role:   inv.Role,
			Team:   string(inv.Team),
		}))
	}
	s.broadcastPlayers()

	if report.Outcome != OutcomeNone {
		s.endGame(report.Outcome)
		return
	}
	s.enterDay()
}

// jailPair returns the jailer and the jailed player while the pending jail
// action still matches the night's jail mark
func (s *Scheduler) jailPair() (jailer, jailed *Player) {
	jail, ok := firstAction(s.state, ActionJail)
	if !ok || s.state.JailMark == "" || jail.Target != s.state.JailMark {
		return nil, nil
	}
	jailer = s.state.FindByNickname(jail.Actor)
	jailed = s.state.FindByNickname(jail.Target)
	if jailer == nil || jailed == nil || !jailed.Alive {
		return nil, nil
	}
	return jailer, jailed
}

func (s *Scheduler) endGame(outcome Outcome) {
	s.cancelTimer()
	s.state.Phase = PhaseEnded
	s.state.Winner = outcome
	s.state.PhaseStartedAt = s.clock.Now()
	s.log.Info("game over", zap.String("winner", string(outcome)))

	s.broadcastPlayers()
	s.broadcast(protocol.NewMessage(protocol.EventGameOver, protocol.GameOver{Winner: string(outcome)}))
}

// armTimer replaces the live timer. The firing carries the generation it was
// armed with and is dropped if the session has moved on since.
func (s *Scheduler) armTimer(phase Phase, d time.Duration, fire func()) {
	s.cancelTimer()
	s.gen++
	gen := s.gen
	t := &phaseTimer{gen: gen, phase: phase, deadline: s.clock.Now().Add(d)}
	t.handle = s.clock.AfterFunc(d, func() { s.handleTimer(gen, fire) })
	s.state.timer = t
}

func (s *Scheduler) cancelTimer() {
	if s.state.timer == nil {
		return
	}
	s.state.timer.handle.Stop()
	s.state.timer = nil
}

func (s *Scheduler) handleTimer(gen uint64, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.timer == nil || s.state.timer.gen != gen {
		s.log.Debug("dropped stale timer", zap.Uint64("gen", gen))
		return
	}
	s.log.Debug("timer fired", zap.String("phase", string(s.state.timer.phase)))
	s.state.timer = nil
	fire()
}

func (s *Scheduler) broadcast(msg protocol.Message) {
	for _, p := range s.state.Players {
		s.notifier.Send(p.ConnID, msg)
	}
}

func (s *Scheduler) broadcastPlayers() {
	s.broadcast(protocol.NewMessage(protocol.EventUpdatePlayers, protocol.UpdatePlayers{Players: PlayerViews(s.state.Players)}))
}

func (s *Scheduler) broadcastPhase(d time.Duration) {
	s.broadcast(protocol.NewMessage(protocol.EventPhaseChange, protocol.PhaseChange{
		Phase:   string(s.state.Phase),
		Seconds: int(d / time.Second),
	}))
}

func (s *Scheduler) broadcastVotes() {
	counts := make(map[string]int, len(s.state.VoteCounts))
	for k, v := range s.state.VoteCounts {
		counts[k] = v
	}
	entries := make([]protocol.VoteEntry, 0, len(s.state.VoteLog))
	for _, v := range s.state.VoteLog {
		entries = append(entries, protocol.VoteEntry{Voter: v.Voter, Target: v.Target})
	}
	s.broadcast(protocol.NewMessage(protocol.EventVoteUpdate, protocol.VoteUpdate{Counts: counts, Log: entries}))
}

func (s *Scheduler) announce(kind, nickname string) {
	s.broadcast(protocol.NewMessage(protocol.EventAnnouncement, protocol.Announcement{Kind: kind, Nickname: nickname}))
}
