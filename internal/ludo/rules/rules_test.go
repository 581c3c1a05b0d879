package rules

import (
	"math/rand/v2"
	"testing"

	st "github.com/ludomcts/selfplay/internal/ludo/state"
)

func newState(t *testing.T, n int) *st.State {
	t.Helper()
	cfg, err := st.DefaultGameConfig(n)
	if err != nil {
		t.Fatal(err)
	}
	return st.NewInitialState(cfg, []int{1})
}

func findRoll(t *testing.T, all []RollMoves, sum int) RollMoves {
	t.Helper()
	for _, rm := range all {
		if rm.Sum == sum {
			return rm
		}
	}
	t.Fatalf("sum form %d not found", sum)
	return RollMoves{}
}

// Scenario 1: six opens base. A six always rolls again, so sum form 6 is
// the roll {6,1}: every move opens one pawn onto its entry cell and then
// spends the 1 on that same pawn.
func TestScenarioSixOpensBase(t *testing.T) {
	s := newState(t, 2) // player 0 controls Red+Yellow
	all := AllPossibleMoves(s)
	rm := findRoll(t, all, 6)
	if len(rm.Moves) != 8 {
		t.Fatalf("got %d moves for roll [6,1], want 8", len(rm.Moves))
	}
	for _, m := range rm.Moves {
		if m.Len() != 2 {
			t.Fatalf("expected open-then-advance moves of 2 substeps, got %d substeps", m.Len())
		}
		step := m.Step(0)
		colour := st.ColourOf(step.Pawns.Pawns()[0])
		if step.To != st.EntryPos(colour) {
			t.Errorf("step destination %d != entry %d for colour %v", step.To, st.EntryPos(colour), colour)
		}
	}
}

// Scenario 2: auto-block on landing.
func TestScenarioAutoBlockOnLanding(t *testing.T) {
	s := newState(t, 2)
	pP4, _ := st.ParsePawnName("R1")
	pP10, _ := st.ParsePawnName("R2")
	posP4, _ := st.ParsePositionName("P4")
	posP10, _ := st.ParsePositionName("P10")
	s.PawnAt[pP4] = posP4
	s.PawnAt[pP10] = posP10
	s.DiceRoll = st.PackMod7([]int{6})

	valid, dest := ValidateSingle(s, 6, posP4, pP4)
	if !valid || dest != posP10 {
		t.Fatalf("ValidateSingle = (%v,%d), want (true,%d)", valid, dest, posP10)
	}
	move := st.Move{}
	move.Append(st.Step{Pawns: st.NewAggregate(pP4), From: posP4, To: posP10})
	next, err := GenerateNextState(s, move)
	if err != nil {
		t.Fatal(err)
	}
	b, ok := next.BlockAt(posP10, 0)
	if !ok || !b.HasPawn(pP4) || !b.HasPawn(pP10) {
		t.Fatalf("expected block at P10 containing both reds, got %+v", next.Blocks)
	}
	if len(next.SinglesAt(posP10, 0)) != 0 {
		t.Errorf("expected no single reds left at P10, got %v", next.SinglesAt(posP10, 0))
	}
}

// Scenario 3: capture grants an extra move.
func TestScenarioCaptureGrantsExtraMove(t *testing.T) {
	s := newState(t, 2)
	red, _ := st.ParsePawnName("R1")
	green, _ := st.ParsePawnName("G1")
	posP20, _ := st.ParsePositionName("P20")
	posP23, _ := st.ParsePositionName("P23")
	s.PawnAt[red] = posP20
	s.PawnAt[green] = posP23
	s.DiceRoll = st.PackMod7([]int{3})

	move := st.Move{}
	move.Append(st.Step{Pawns: st.NewAggregate(red), From: posP20, To: posP23})
	rnd := rand.New(rand.NewPCG(1, 2))
	next, err := Turn(s, move, s.LastMoveID+1, rnd)
	if err != nil {
		t.Fatal(err)
	}
	if next.PawnAt[green] != st.BaseSlot(st.Green, 0) {
		t.Errorf("green pawn not returned to base: at %d", next.PawnAt[green])
	}
	if next.NumMoreMoves != 1 {
		t.Errorf("num_more_moves = %d, want 1", next.NumMoreMoves)
	}
	if next.CurrentPlayer != 0 {
		t.Errorf("current_player = %d, want 0 (extra move pending)", next.CurrentPlayer)
	}
}

// Scenario 4: a rigid block off-star cannot move on an odd roll, and its
// pawns are not individually movable either.
func TestScenarioBlockMustMoveEven(t *testing.T) {
	s := newState(t, 2)
	r1, _ := st.ParsePawnName("R1")
	r2, _ := st.ParsePawnName("R2")
	posP15, _ := st.ParsePositionName("P15")
	if st.IsStar(posP15) {
		t.Fatalf("test assumption violated: P15 is a star")
	}
	s.PawnAt[r1] = posP15
	s.PawnAt[r2] = posP15
	if err := s.AddBlock(st.Block{Pawns: st.PackPair(r1, r2), Pos: posP15, Rigid: true, Player: 0}); err != nil {
		t.Fatal(err)
	}
	s.DiceRoll = st.PackMod7([]int{3})

	all := AllPossibleMoves(s)
	rm := findRoll(t, all, 3)
	for _, m := range rm.Moves {
		for _, step := range m.Steps() {
			if step.Pawns.Contains(r1) || step.Pawns.Contains(r2) {
				t.Fatalf("rigid off-star block must not move on odd roll, got step %+v", step)
			}
		}
	}
}

// Scenario 5: finale absorbs.
func TestScenarioFinaleAbsorbs(t *testing.T) {
	s := newState(t, 2)
	r1, _ := st.ParsePawnName("R1")
	r2, _ := st.ParsePawnName("R2")
	posRH5, _ := st.ParsePositionName("RH5")
	s.PawnAt[r1] = posRH5
	// r2 stays at its base slot, so a non-finale Red pawn remains.
	s.DiceRoll = st.PackMod7([]int{1})

	valid, dest := ValidateSingle(s, 1, posRH5, r1)
	if !valid || st.PositionName(dest) != "RH6" {
		t.Fatalf("ValidateSingle = (%v,%s), want (true,RH6)", valid, st.PositionName(dest))
	}
	move := st.Move{}
	move.Append(st.Step{Pawns: st.NewAggregate(r1), From: posRH5, To: dest})
	next, err := GenerateNextState(s, move)
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsFinale(next.PawnAt[r1]) {
		t.Errorf("pawn not at finale: %d", next.PawnAt[r1])
	}
	if next.NumMoreMoves != 1 {
		t.Errorf("num_more_moves = %d, want 1 (another red pawn remains)", next.NumMoreMoves)
	}
	_ = r2
}

// Scenario 6: triple six wastes the turn.
func TestScenarioTripleSixWastesTurn(t *testing.T) {
	s := newState(t, 2)
	s.DiceRoll = st.PackMod7([]int{6, 6, 6})
	all := AllPossibleMoves(s)
	rm := findRoll(t, all, st.ImpossibleRollSum)
	if len(rm.Moves) != 1 || !rm.Moves[0].IsPass() {
		t.Fatalf("expected single pass move for {6,6,6}, got %v", rm.Moves)
	}
	rnd := rand.New(rand.NewPCG(1, 2))
	next, err := Turn(s, rm.Moves[0], s.LastMoveID+1, rnd)
	if err != nil {
		t.Fatal(err)
	}
	if next.CurrentPlayer != 1 {
		t.Errorf("current_player = %d, want 1 (turn wasted)", next.CurrentPlayer)
	}
	for p := 1; p <= 16; p++ {
		if next.PawnAt[p] != s.PawnAt[p] {
			t.Errorf("pawn %d moved despite pass move", p)
		}
	}
}

func TestDuplicateTurnIdempotent(t *testing.T) {
	s := newState(t, 2)
	s.DiceRoll = st.PackMod7([]int{6, 6, 6})
	rnd := rand.New(rand.NewPCG(1, 2))
	m := st.Move{}
	first, err := Turn(s, m, s.LastMoveID+1, rnd)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Turn(s, m, s.LastMoveID+1, rnd)
	if err != nil {
		t.Fatal(err)
	}
	// Calling Turn again on the *original* state with the same id must not
	// be confused with calling it on `first` — the guard is purely
	// move_id-based, so the caller is responsible for only ever applying
	// Turn once per id against its own state; this asserts the guard
	// itself rejects a stale id against the already-advanced state.
	if _, err := Turn(first, m, first.LastMoveID, rnd); err == nil {
		t.Errorf("expected ErrStaleMoveID reusing a consumed move_id")
	}
}
