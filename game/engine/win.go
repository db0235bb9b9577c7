package engine

// Evaluate reports the winning team, if any, over the living players.
// Villagers win once no Spirit is alive; Spirits win once no Villager is
// alive or they reach parity.
func Evaluate(state *GameState) Outcome {
	var dealt, spirits, villagers int
	for _, p := range state.Players {
		if p.Role == nil {
			continue
		}
		dealt++
		if !p.Alive {
			continue
		}
		switch p.Role.Team {
		case TeamSpirits:
			spirits++
		case TeamVillagers:
			villagers++
		}
	}

	if dealt == 0 {
		return OutcomeNone
	}
	if spirits == 0 {
		return OutcomeVillagersWin
	}
	if villagers == 0 || spirits >= villagers {
		return OutcomeSpiritsWin
	}
	return OutcomeNone
}
