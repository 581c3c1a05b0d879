package rules

import (
	"fmt"
	"math/rand/v2"

	st "github.com/ludomcts/selfplay/internal/ludo/state"
)

// ErrStaleMoveID is returned by Turn when move_id does not match
// last_move_id+1 (spec §6.1, §7 "Invalid move").
var ErrStaleMoveID = fmt.Errorf("ludo: stale move_id")

// GenerateNextState applies move to a clone of s and returns the result,
// fully finalized (turn bookkeeping per spec §4.4 folds into the same
// function as the per-step transitions, following
// original_source/ludobackend/ludo.py's generate_next_state). The dice
// roll field is left untouched; callers that need a fresh roll use Turn.
func GenerateNextState(s *st.State, move st.Move) (*st.State, error) {
	next := s.Clone()
	player := next.CurrentPlayer

	if next.NumMoreMoves > 0 {
		next.NumMoreMoves--
	}

	total := 0
	for _, step := range move.Steps() {
		var grant int
		var err error
		if step.IsBlockStep() {
			pawns := step.Pawns.Pawns()
			grant, err = ApplyBlockStep(next, step.From, pawns[0], pawns[1], step.To)
		} else {
			pawns := step.Pawns.Pawns()
			grant, err = ApplySingleStep(next, step.From, pawns[0], step.To)
		}
		if err != nil {
			return nil, err
		}
		total += grant
	}
	if move.Len() > 0 {
		next.NumMoreMoves = total
	}

	next.LastMoveID++
	if next.NumMoreMoves == 0 {
		next.CurrentPlayer = (player + 1) % next.Config.NPlayers
	}
	RecomputeGameOver(next)
	return next, nil
}

// RecomputeGameOver sets s.GameOver following
// original_source/ludobackend/ludo.py's Ludo.generate_next_state: the
// game ends once every player other than the (new) current player has
// finished all their pawns.
func RecomputeGameOver(s *st.State) {
	for pl := 0; pl < s.Config.NPlayers; pl++ {
		if pl == s.CurrentPlayer {
			continue
		}
		if !s.PlayerFinished(pl) {
			s.GameOver = false
			return
		}
	}
	s.GameOver = true
}

// Turn is the external turn() surface (spec §6.1): it rejects a move
// whose id does not match last_move_id+1, otherwise applies it and rolls
// fresh dice for the new current player.
func Turn(s *st.State, move st.Move, moveID int, rnd *rand.Rand) (*st.State, error) {
	if moveID != s.LastMoveID+1 {
		return nil, ErrStaleMoveID
	}
	next, err := GenerateNextState(s, move)
	if err != nil {
		return nil, err
	}
	if !next.GameOver {
		next.DiceRoll = st.PackMod7(st.RollDice(rnd))
	}
	return next, nil
}
