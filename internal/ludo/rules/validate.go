package rules

import st "github.com/ludomcts/selfplay/internal/ludo/state"

// ValidateSingle validates moving single pawn p, currently at pos, by
// roll. Returns (valid, destination) per spec §4.2.
func ValidateSingle(s *st.State, roll, pos, p int) (bool, int) {
	player := s.Config.PlayerOfPawn(p)
	colour := st.ColourOf(p)

	if st.IsBase(pos) {
		if roll != 6 {
			return false, 0
		}
		return true, st.EntryPos(colour)
	}

	idx, ok := st.TrackIndex(colour, pos)
	if !ok {
		return false, 0
	}
	destIdx := idx + roll
	if destIdx > st.TrackLen-1 {
		return false, 0
	}
	dest := st.TrackPos(colour, destIdx)

	for k := idx + 1; k < destIdx; k++ {
		mid := st.TrackPos(colour, k)
		if st.IsBaseEntryStar(mid) {
			continue
		}
		if blockedByOpponent(s, mid, player) {
			return false, 0
		}
	}

	if hasSameSideBlockAndSingle(s, dest, player) && !st.IsBaseEntryStar(dest) && !st.IsFinale(dest) {
		return false, 0
	}

	return true, dest
}

// blockedByOpponent reports whether any block at pos belongs to a player
// other than player.
func blockedByOpponent(s *st.State, pos, player int) bool {
	for _, b := range s.Blocks {
		if b.Pos == pos && b.Player != player {
			return true
		}
	}
	return false
}

func hasSameSideBlockAndSingle(s *st.State, pos, player int) bool {
	_, hasBlock := s.BlockAt(pos, player)
	if !hasBlock {
		return false
	}
	return len(s.SinglesAt(pos, player)) > 0
}

// ValidateBlock validates moving the block whose two pawns are p0,p1,
// currently at pos, by roll. Returns (valid, destination) per spec §4.2.
func ValidateBlock(s *st.State, roll, pos, p0, p1 int) (bool, int) {
	if roll%2 != 0 {
		return false, 0
	}
	player := s.Config.PlayerOfPawn(p0)
	step := roll / 2
	c0, c1 := st.ColourOf(p0), st.ColourOf(p1)

	idx0, ok0 := st.TrackIndex(c0, pos)
	idx1, ok1 := st.TrackIndex(c1, pos)
	if !ok0 || !ok1 {
		return false, 0
	}
	d0idx, d1idx := idx0+step, idx1+step
	if d0idx > st.TrackLen-1 || d1idx > st.TrackLen-1 {
		return false, 0
	}
	dest0 := st.TrackPos(c0, d0idx)
	dest1 := st.TrackPos(c1, d1idx)
	if dest0 != dest1 {
		return false, 0
	}
	dest := dest0

	for k := idx0 + 1; k < d0idx; k++ {
		mid := st.TrackPos(c0, k)
		if st.IsBaseEntryStar(mid) {
			continue
		}
		if blockedByOpponent(s, mid, player) {
			return false, 0
		}
	}
	for k := idx1 + 1; k < d1idx; k++ {
		mid := st.TrackPos(c1, k)
		if st.IsBaseEntryStar(mid) {
			continue
		}
		if blockedByOpponent(s, mid, player) {
			return false, 0
		}
	}

	if b, ok := s.BlockAt(dest, player); ok && b.Pos != pos && !st.IsFinale(dest) {
		return false, 0
	}

	return true, dest
}
