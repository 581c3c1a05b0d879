package rules

import st "github.com/ludomcts/selfplay/internal/ludo/state"

// RollMoves is one dice roll's worth of enumerated move sequences
// (spec §4.3, §6.1 all_possible_moves).
type RollMoves struct {
	Sum   int
	Roll  []int
	Moves []st.Move
}

// AllPossibleMoves enumerates every legal move sequence for all 15 dice
// rolls plus the impossible {6,6,6} slot, indexed by sum form.
func AllPossibleMoves(s *st.State) []RollMoves {
	sums := st.AllSumForms()
	out := make([]RollMoves, 0, len(sums))
	for _, sum := range sums {
		if sum == st.ImpossibleRollSum {
			out = append(out, RollMoves{Sum: sum, Roll: []int{6, 6, 6}, Moves: []st.Move{st.PassMove}})
			continue
		}
		roll := st.SumToRoll(sum)
		moves := enumerateMoves(s.Clone(), roll, st.Move{})
		out = append(out, RollMoves{Sum: sum, Roll: roll, Moves: moves})
	}
	return out
}

// enumerateMoves performs the depth-first walk of spec §4.3: it consumes
// remainingDice one at a time, branching over every validated candidate
// substep, and emits prefix as a complete move whenever the dice run out,
// the current player's pawns are all finale (early termination), or no
// candidate can use the next die (that die is forfeit — real Ludo play
// uses whatever dice it can and wastes the rest, see DESIGN.md).
func enumerateMoves(s *st.State, remainingDice []int, prefix st.Move) []st.Move {
	if len(remainingDice) == 0 {
		return []st.Move{prefix}
	}
	player := s.CurrentPlayer
	die := remainingDice[0]
	cands := FindNextPossiblePawns(s)

	var results []st.Move
	tried := false

	tryStep := func(pawns st.Aggregate, pos, dest int, apply func(*st.State) (int, error)) {
		tried = true
		child := s.Clone()
		if _, err := apply(child); err != nil {
			return
		}
		next := prefix
		next.Append(st.Step{Pawns: pawns, From: pos, To: dest})
		if st.IsFinale(dest) && !child.HasNonFinalePawns(player) {
			results = append(results, next)
			return
		}
		results = append(results, enumerateMoves(child, remainingDice[1:], next)...)
	}

	seenSingle := map[int]bool{}
	for _, p := range cands.Singles {
		if seenSingle[p] {
			continue
		}
		seenSingle[p] = true
		pos := s.PawnAt[p]
		if valid, dest := ValidateSingle(s, die, pos, p); valid {
			tryStep(st.NewAggregate(p), pos, dest, func(child *st.State) (int, error) {
				return ApplySingleStep(child, pos, p, dest)
			})
		}
	}

	seenPair := map[[2]int]bool{}
	tryPair := func(p0, p1, pos int, blockPawns st.Aggregate) {
		key := [2]int{p0, p1}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seenPair[key] {
			return
		}
		seenPair[key] = true
		if valid, dest := ValidateBlock(s, die, pos, p0, p1); valid {
			tryStep(blockPawns, pos, dest, func(child *st.State) (int, error) {
				return ApplyBlockStep(child, pos, p0, p1, dest)
			})
		}
	}
	for _, pr := range cands.Pairs {
		tryPair(pr[0], pr[1], s.PawnAt[pr[0]], st.PackPair(pr[0], pr[1]))
	}
	for _, b := range cands.Blocks {
		pawns := b.Pawns.Pawns()
		if len(pawns) != 2 {
			continue
		}
		tryPair(pawns[0], pawns[1], b.Pos, b.Pawns)
	}

	if !tried {
		results = append(results, prefix)
	}
	return results
}
