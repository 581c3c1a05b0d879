// Package tensor implements the deterministic fixed-shape numeric encoder
// (spec §4.5) that turns a state into the `(59, K)` array the Evaluation
// Queue batches up and hands to the value network. The row/column layout
// below follows the flat, per-perspective feature-plane idiom of
// sfnnue/nnue_feature_transformer.go (a fixed accumulator width per
// perspective, filled by a pure function of the position) rather than the
// NNUE weight format itself, which is chess-specific and out of scope.
package tensor

import st "github.com/ludomcts/selfplay/internal/ludo/state"

// Rows is the fixed row count: 2 header rows plus one row per track cell.
const Rows = 2 + st.TrackLen

// headerBase is row 0: how many of each player's pawns are still in base,
// normalized by 4.
const headerBase = 0

// headerFinale is row 1: how many of each player's pawns have reached
// their finale cell, normalized by 4.
const headerFinale = 1

// trackRow0 is the first track-cell row (row index of track position 0).
const trackRow0 = 2

// Cols returns the column count K for an n-player game: one occupancy
// column per player, a block-indicator column, and a broadcast column
// carrying the active player's identity (spec §4.5 "broadcast into one
// column").
func Cols(nPlayers int) int { return nPlayers + 2 }

// Encode produces the (Rows, Cols(n)) array for s, viewed from the
// perspective of s.CurrentPlayer's primary colour (the first colour
// listed for that player in its GameConfig). It is a pure function of s:
// no RNG, no hidden package state.
func Encode(s *st.State) [][]float32 {
	n := s.Config.NPlayers
	cols := Cols(n)
	blockCol := n
	broadcastCol := n + 1

	out := make([][]float32, Rows)
	for r := range out {
		out[r] = make([]float32, cols)
	}

	broadcast := float32(s.CurrentPlayer) / float32(maxInt(n-1, 1))
	for r := range out {
		out[r][broadcastCol] = broadcast
	}

	for pl := 0; pl < n; pl++ {
		baseCount, finaleCount := 0, 0
		for _, c := range s.Config.ColoursOf(pl) {
			for _, p := range st.PawnsOf(c) {
				pos := s.PawnAt[p]
				if st.IsBase(pos) {
					baseCount++
				}
				if st.IsFinale(pos) {
					finaleCount++
				}
			}
		}
		out[headerBase][pl] = float32(baseCount) / 4
		out[headerFinale][pl] = float32(finaleCount) / 4
	}

	primary := s.Config.ColoursOf(s.CurrentPlayer)[0]
	counts := make([][]int, st.TrackLen)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	blocked := make([]bool, st.TrackLen)
	for i := 0; i < st.TrackLen; i++ {
		pos := st.TrackPos(primary, i)
		for _, p := range s.PawnsAtPos(pos) {
			counts[i][s.Config.PlayerOfPawn(p)]++
		}
		for _, b := range s.Blocks {
			if b.Pos == pos {
				blocked[i] = true
				break
			}
		}
	}
	for i := 0; i < st.TrackLen; i++ {
		row := out[trackRow0+i]
		for pl := 0; pl < n; pl++ {
			row[pl] = float32(counts[i][pl]) / 4
		}
		if blocked[i] {
			row[blockCol] = 1
		}
	}

	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
