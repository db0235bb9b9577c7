package engine

import (
	"errors"
	"testing"
)

func TestAccusationThreshold(t *testing.T) {
	tests := []struct {
		players  int
		expected int
	}{
		{6, 4},
		{5, 3},
		{4, 3},
		{3, 2},
		{2, 2},
	}
	for _, test := range tests {
		if got := AccusationThreshold(test.players); got != test.expected {
			t.Errorf("AccusationThreshold(%d) = %d, expected %d", test.players, got, test.expected)
		}
	}
}

func TestCastAccusation_ThresholdBoundary(t *testing.T) {
	st := classicState(PhaseDay)

	for _, voter := range []string{"c1", "c2", "c3"} {
		accused, err := CastAccusation(st, voter, "p6")
		if err != nil {
			t.Fatalf("accusation from %s failed: %v", voter, err)
		}
		if accused != "" {
			t.Fatalf("Expected no defense after %s, got %q", voter, accused)
		}
	}
	if st.DefenseUsed {
		t.Error("Expected no defense with 3 of 6 accusations")
	}

	accused, err := CastAccusation(st, "c4", "p6")
	if err != nil {
		t.Fatalf("fourth accusation failed: %v", err)
	}
	if accused != "p6" || st.Accused != "p6" || !st.DefenseUsed {
		t.Errorf("Expected p6 sent to defense at 4 of 6, got %q", accused)
	}
	if len(st.VoteLog) != 4 || st.VoteLog[3] != (Vote{Voter: "p4", Target: "p6"}) {
		t.Errorf("Expected ordered log of 4 entries, got %v", st.VoteLog)
	}
}

func TestCastAccusation_LaterCrossingIgnored(t *testing.T) {
	st := classicState(PhaseDay)
	st.DefenseUsed = true

	for _, voter := range []string{"c1", "c2", "c3", "c4"} {
		accused, err := CastAccusation(st, voter, "p5")
		if err != nil {
			t.Fatalf("accusation from %s failed: %v", voter, err)
		}
		if accused != "" {
			t.Errorf("Expected crossing to be ignored after a defense, got %q", accused)
		}
	}
	if st.VoteCounts["p5"] != 4 {
		t.Errorf("Expected votes still counted, got %d", st.VoteCounts["p5"])
	}
}

// A voter holds a single accusation: switching targets moves the vote and
// repeating the same target is refused, so one player can never count twice
// toward the threshold. Plain increment-only counting would allow that.
func TestCastAccusation_MovesVote(t *testing.T) {
	st := classicState(PhaseDay)

	if _, err := CastAccusation(st, "c1", "p5"); err != nil {
		t.Fatal(err)
	}
	if _, err := CastAccusation(st, "c1", "p5"); !errors.Is(err, ErrDuplicateVote) {
		t.Errorf("Expected ErrDuplicateVote, got %v", err)
	}
	if _, err := CastAccusation(st, "c1", "p6"); err != nil {
		t.Fatal(err)
	}

	if _, ok := st.VoteCounts["p5"]; ok {
		t.Errorf("Expected p5 count removed, got %d", st.VoteCounts["p5"])
	}
	if st.VoteCounts["p6"] != 1 {
		t.Errorf("Expected p6 count 1, got %d", st.VoteCounts["p6"])
	}
	if len(st.VoteLog) != 2 {
		t.Errorf("Expected 2 log entries, got %d", len(st.VoteLog))
	}
}

func TestCastAccusation_ThresholdCountsDeadPlayers(t *testing.T) {
	st := classicState(PhaseDay)
	st.FindByNickname("p6").Alive = false

	for _, voter := range []string{"c1", "c2", "c3"} {
		accused, err := CastAccusation(st, voter, "p4")
		if err != nil {
			t.Fatalf("accusation from %s failed: %v", voter, err)
		}
		if accused != "" {
			t.Fatalf("Expected no defense below 4 of 6 players, got %q after %s", accused, voter)
		}
	}

	accused, err := CastAccusation(st, "c5", "p4")
	if err != nil {
		t.Fatal(err)
	}
	if accused != "p4" {
		t.Errorf("Expected the 4th accusation to open the defense, got %q", accused)
	}
}

func TestCastAccusation_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(st *GameState)
		voter  string
		target string
		want   error
	}{
		{"wrong phase", func(st *GameState) { st.Phase = PhaseNight }, "c1", "p2", ErrWrongPhase},
		{"ended", func(st *GameState) { st.Phase = PhaseEnded }, "c1", "p2", ErrGameEnded},
		{"unknown voter", nil, "c42", "p2", ErrNotInSession},
		{"dead voter", func(st *GameState) { st.Players[0].Alive = false }, "c1", "p2", ErrNotAlive},
		{"unknown target", nil, "c1", "nobody", ErrInvalidTarget},
		{"dead target", func(st *GameState) { st.Players[1].Alive = false }, "c1", "p2", ErrInvalidTarget},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			st := classicState(PhaseDay)
			if test.setup != nil {
				test.setup(st)
			}
			if _, err := CastAccusation(st, test.voter, test.target); !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
			if len(st.VoteLog) != 0 {
				t.Error("Expected rejected accusation to leave the log empty")
			}
		})
	}
}

// A voter holds a single verdict and a repeat replaces it, rather than every
// verdict message being counted.
func TestCastVerdict(t *testing.T) {
	st := classicState(PhaseDefense)
	st.Accused = "p6"

	if err := CastVerdict(st, "c1", DecisionGuilty); err != nil {
		t.Fatal(err)
	}
	if err := CastVerdict(st, "c2", DecisionGuilty); err != nil {
		t.Fatal(err)
	}
	if err := CastVerdict(st, "c2", DecisionInnocent); err != nil {
		t.Fatal(err)
	}

	guilty, innocent := TallyVerdicts(st)
	if guilty != 1 || innocent != 1 {
		t.Errorf("Expected latest verdict per player (1 guilty, 1 innocent), got %d and %d", guilty, innocent)
	}

	if err := CastVerdict(st, "c6", DecisionInnocent); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected accused to be barred from voting, got %v", err)
	}
	if err := CastVerdict(st, "c3", Decision("maybe")); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("Expected ErrInvalidDecision, got %v", err)
	}

	st.Phase = PhaseDay
	if err := CastVerdict(st, "c3", DecisionGuilty); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Expected ErrWrongPhase outside defense, got %v", err)
	}
}
