package rules

import st "github.com/ludomcts/selfplay/internal/ludo/state"

func sendToBase(s *st.State, p int) {
	c := st.ColourOf(p)
	i := (p - 1) % 4
	s.PawnAt[p] = st.BaseSlot(c, i)
}

// ApplySingleStep applies an already-validated single-pawn substep in
// place on s (the caller owns a clone) and returns the num_more_moves
// granted by it (captures, finale arrival — spec §4.2).
func ApplySingleStep(s *st.State, pos, p, dest int) (int, error) {
	player := s.Config.PlayerOfPawn(p)
	grant := 0

	// Block dissolution at the source: the other pawn stays put.
	if bi := s.BlockIndexOf(p); bi >= 0 {
		s.RemoveBlock(bi)
	}

	// Capture: any opponent single pawn at dest, unless dest is a star.
	if !st.IsStar(dest) {
		for _, q := range s.PawnsAtPos(dest) {
			if s.Config.PlayerOfPawn(q) == player {
				continue
			}
			if _, inBlock := s.BlockOf(q); inBlock {
				continue
			}
			sendToBase(s, q)
			grant++
		}
	}

	s.PawnAt[p] = dest

	// Auto-block at the vacated source cell.
	if !st.IsBaseEntryStar(pos) {
		if rem := s.SinglesAt(pos, player); len(rem) >= 2 {
			if err := s.AddBlock(st.Block{Pawns: st.PackPair(rem[0], rem[1]), Pos: pos, Player: player}); err != nil {
				return 0, err
			}
		}
	}

	// Auto-block at the destination.
	if !st.IsBaseEntryStar(dest) && !st.IsFinale(dest) {
		if atDest := s.SinglesAt(dest, player); len(atDest) >= 2 {
			if err := s.AddBlock(st.Block{Pawns: st.PackPair(atDest[0], atDest[1]), Pos: dest, Player: player}); err != nil {
				return 0, err
			}
		}
	}

	if st.IsFinale(dest) && s.HasNonFinalePawns(player) {
		grant++
	}

	return grant, nil
}

// ApplyBlockStep applies an already-validated block substep (the pair
// p0,p1, currently at pos) in place on s, returning the num_more_moves
// granted (block captures, finale arrival — spec §4.2).
func ApplyBlockStep(s *st.State, pos, p0, p1, dest int) (int, error) {
	player := s.Config.PlayerOfPawn(p0)
	grant := 0

	// Block capture: an opponent block sitting on (non-star) dest.
	if !st.IsStar(dest) {
		for i, b := range s.Blocks {
			if b.Pos == dest && b.Player != player {
				for _, q := range b.Pawns.Pawns() {
					sendToBase(s, q)
				}
				s.RemoveBlock(i)
				grant += 2
				break
			}
		}
	}

	s.PawnAt[p0] = dest
	s.PawnAt[p1] = dest

	if bi := s.BlockIndexOf(p0); bi >= 0 {
		s.Blocks[bi].Pos = dest
	} else {
		// Departing a base-entry star: the block did not exist yet.
		if err := s.AddBlock(st.Block{Pawns: st.PackPair(p0, p1), Pos: dest, Player: player}); err != nil {
			return 0, err
		}
	}

	bi := s.BlockIndexOf(p0)
	switch {
	case st.IsFinale(dest) || st.IsBaseEntryStar(dest):
		s.RemoveBlock(bi)
	case st.IsStar(dest): // intermediate star
		s.Blocks[bi].Rigid = false
	default:
		s.Blocks[bi].Rigid = true
	}

	if st.IsFinale(dest) && s.HasNonFinalePawns(player) {
		grant += 2
	}

	return grant, nil
}
