package engine

// AccusationThreshold is the number of accusations that sends a target to
// defense: a strict majority of the session's players, dead ones included.
func AccusationThreshold(players int) int {
	return players/2 + 1
}

// CastAccusation records the voter's current accusation. A voter holds one
// accusation at a time; accusing someone else moves the vote. It returns the
// accused nickname when the target is the first to reach the threshold this
// day, and "" otherwise.
func CastAccusation(state *GameState, voterConn, target string) (string, error) {
	if err := requirePhase(state, PhaseDay); err != nil {
		return "", err
	}
	voter, err := livingActor(state, voterConn)
	if err != nil {
		return "", err
	}
	accused := state.FindByNickname(target)
	if accused == nil || !accused.Alive {
		return "", ErrInvalidTarget
	}

	if prev, ok := state.Accusations[voter.Nickname]; ok {
		if prev == target {
			return "", ErrDuplicateVote
		}
		state.VoteCounts[prev]--
		if state.VoteCounts[prev] <= 0 {
			delete(state.VoteCounts, prev)
		}
	}
	state.Accusations[voter.Nickname] = target
	state.VoteCounts[target]++
	state.VoteLog = append(state.VoteLog, Vote{Voter: voter.Nickname, Target: target})

	if state.DefenseUsed {
		return "", nil
	}
	if state.VoteCounts[target] >= AccusationThreshold(len(state.Players)) {
		state.DefenseUsed = true
		state.Accused = target
		return target, nil
	}
	return "", nil
}

// CastVerdict records the voter's defense verdict. Each living player other
// than the accused holds one verdict; a repeat replaces the earlier one.
func CastVerdict(state *GameState, voterConn string, decision Decision) error {
	if err := requirePhase(state, PhaseDefense); err != nil {
		return err
	}
	if decision != DecisionGuilty && decision != DecisionInnocent {
		return ErrInvalidDecision
	}
	voter, err := livingActor(state, voterConn)
	if err != nil {
		return err
	}
	if voter.Nickname == state.Accused {
		return ErrNotAuthorized
	}
	state.Verdicts[voter.Nickname] = decision
	return nil
}

// TallyVerdicts counts the guilty and innocent verdicts
func TallyVerdicts(state *GameState) (guilty, innocent int) {
	for _, d := range state.Verdicts {
		switch d {
		case DecisionGuilty:
			guilty++
		case DecisionInnocent:
			innocent++
		}
	}
	return guilty, innocent
}

func requirePhase(state *GameState, phase Phase) error {
	if state.Phase == PhaseEnded {
		return ErrGameEnded
	}
	if state.Phase != phase {
		return ErrWrongPhase
	}
	return nil
}

func livingActor(state *GameState, connID string) (*Player, error) {
	p := state.FindByConn(connID)
	if p == nil {
		return nil, ErrNotInSession
	}
	if !p.Alive {
		return nil, ErrNotAlive
	}
	return p, nil
}
