// Package rules implements the Ludo transition function: next-possible-pawn
// enumeration, single-substep validation and application, whole-move
// enumeration over the 15 legal dice outcomes, and turn finalization.
// Grounded on original_source/ludobackend/ludo.py, the clearest (pre-
// Cython) statement of these rules.
package rules

import st "github.com/ludomcts/selfplay/internal/ludo/state"

// Candidates holds the next-possible-pawn set for the current player
// (spec §4.1), before any dice have been applied.
type Candidates struct {
	// Singles holds every individually movable single pawn id, including
	// pawns that belong to a block sitting on a star or non-rigid (those
	// are listed both here and, as a pair, in Blocks).
	Singles []int
	// Pairs holds same-position pairs of the current player's loose
	// singles that could auto-form a block step this turn.
	Pairs [][2]int
	// Blocks holds every extant block of the current player.
	Blocks []st.Block
}

// FindNextPossiblePawns enumerates the candidate set for s.CurrentPlayer.
func FindNextPossiblePawns(s *st.State) Candidates {
	player := s.CurrentPlayer
	var c Candidates

	colours := s.Config.ColoursOf(player)
	ownPawns := make([]int, 0, 8)
	for _, colour := range colours {
		pawns := st.PawnsOf(colour)
		ownPawns = append(ownPawns, pawns[:]...)
	}

	bySinglePos := map[int][]int{}
	for _, p := range ownPawns {
		pos := s.PawnAt[p]
		if st.IsFinale(pos) {
			continue
		}
		if b, inBlock := s.BlockOf(p); inBlock {
			if st.IsStar(b.Pos) || !b.Rigid {
				c.Singles = append(c.Singles, p)
			}
			continue
		}
		c.Singles = append(c.Singles, p)
		bySinglePos[pos] = append(bySinglePos[pos], p)
	}

	for _, ps := range bySinglePos {
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				c.Pairs = append(c.Pairs, [2]int{ps[i], ps[j]})
			}
		}
	}

	for _, b := range s.Blocks {
		if b.Player == player {
			c.Blocks = append(c.Blocks, b)
		}
	}

	return c
}
