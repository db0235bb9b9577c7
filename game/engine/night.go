package engine

// Investigation is the private result delivered to an investigator
type Investigation struct {
	Investigator string // connection ID
	Target       string
	Role         string
	Team         Team
}

// NightReport describes everything a night resolution changed
type NightReport struct {
	Jailer         string
	Jailed         string
	Executed       string
	Killed         []string
	Saved          []string
	Silenced       []string
	Investigations []Investigation
	Outcome        Outcome
}

// SubmitNightAction records a concealed action for the actor's role. A role
// holds one pending action per kind; a later submission replaces it. The
// first jail target of the night is recorded as the jail mark.
func SubmitNightAction(state *GameState, actorConn string, kind ActionKind, target string) error {
	if err := requirePhase(state, PhaseNight); err != nil {
		return err
	}
	actor, err := livingActor(state, actorConn)
	if err != nil {
		return err
	}

	required := kind.Capability()
	if required == CapabilityNone {
		return ErrUnknownAction
	}
	if actor.Role == nil || actor.Role.Capability != required {
		return ErrNotAuthorized
	}

	t := state.FindByNickname(target)
	if t == nil || !t.Alive {
		return ErrInvalidTarget
	}
	if kind == ActionExecute && state.ExecuteUsed {
		return ErrExecuteUsed
	}

	if kind == ActionJail && state.JailMark == "" {
		state.JailMark = target
	}
	state.NightActions[actionKey{role: actor.Role.Name, kind: kind}] = NightAction{
		Kind:   kind,
		Role:   actor.Role.Name,
		Actor:  actor.Nickname,
		Target: target,
	}
	return nil
}

// ResolveNight applies the pending night actions in order: jail, execute,
// kill against protect, silence, investigate. Resolution stops early once a
// team has won. Jailed flags never outlive the call.
func ResolveNight(state *GameState) NightReport {
	report := NightReport{}
	defer func() {
		for _, p := range state.Players {
			p.Jailed = false
		}
	}()

	jailed := resolveJail(state, &report)

	executed := false
	if exec, ok := firstAction(state, ActionExecute); ok && !state.ExecuteUsed && jailed != nil && exec.Target == jailed.Nickname {
		jailed.Alive = false
		state.ExecuteUsed = true
		report.Executed = jailed.Nickname
		executed = true
		if report.Outcome = Evaluate(state); report.Outcome != OutcomeNone {
			return report
		}
	}

	if !executed {
		protected := make(map[string]bool)
		for _, a := range actionsOf(state, ActionProtect) {
			protected[a.Target] = true
		}
		for _, a := range actionsOf(state, ActionKill) {
			victim := state.FindByNickname(a.Target)
			if victim == nil || !victim.Alive {
				continue
			}
			if victim.Jailed || protected[victim.Nickname] {
				report.Saved = append(report.Saved, victim.Nickname)
				continue
			}
			victim.Alive = false
			report.Killed = append(report.Killed, victim.Nickname)
			if report.Outcome = Evaluate(state); report.Outcome != OutcomeNone {
				return report
			}
		}
	}

	for _, p := range state.Players {
		p.Silenced = false
	}
	for _, a := range actionsOf(state, ActionSilence) {
		target := state.FindByNickname(a.Target)
		if target == nil || !target.Alive || target.Silenced {
			continue
		}
		target.Silenced = true
		report.Silenced = append(report.Silenced, target.Nickname)
	}

	for _, a := range actionsOf(state, ActionInvestigate) {
		investigator := state.FindByNickname(a.Actor)
		target := state.FindByNickname(a.Target)
		if investigator == nil || target == nil || target.Role == nil {
			continue
		}
		report.Investigations = append(report.Investigations, Investigation{
			Investigator: investigator.ConnID,
			Target:       target.Nickname,
			Role:         target.Role.Name,
			Team:         target.Role.Team,
		})
	}

	return report
}

func resolveJail(state *GameState, report *NightReport) *Player {
	jail, ok := firstAction(state, ActionJail)
	if !ok || jail.Target != state.JailMark {
		return nil
	}
	target := state.FindByNickname(jail.Target)
	if target == nil || !target.Alive {
		return nil
	}
	target.Jailed = true
	report.Jailer = jail.Actor
	report.Jailed = target.Nickname
	return target
}

// actionsOf returns the pending actions of a kind in seating order so that
// resolution never depends on map iteration.
func actionsOf(state *GameState, kind ActionKind) []NightAction {
	var actions []NightAction
	seen := make(map[string]bool)
	for _, p := range state.Players {
		if p.Role == nil || seen[p.Role.Name] {
			continue
		}
		seen[p.Role.Name] = true
		if a, ok := state.NightActions[actionKey{role: p.Role.Name, kind: kind}]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

func firstAction(state *GameState, kind ActionKind) (NightAction, bool) {
	actions := actionsOf(state, kind)
	if len(actions) == 0 {
		return NightAction{}, false
	}
	return actions[0], true
}
