package state

// MaxBlocks is the highest number of simultaneous blocks a state may carry
// (spec §3.3, §3.7).
const MaxBlocks = 16

// Block is two cooperating pawns occupying the same position. Rigid blocks
// must move as a unit until they reach a star or the finale.
type Block struct {
	Pawns  Aggregate // the two (occasionally teammate cross-colour) pawn ids
	Pos    int
	Rigid  bool
	Player int // owning player index, derived from the pawns' colours
}

// HasPawn reports whether the block contains pawn id p.
func (b Block) HasPawn(p int) bool { return b.Pawns.Contains(p) }

// OtherPawn returns the block's other pawn given one of its members.
func (b Block) OtherPawn(p int) (int, bool) {
	for _, q := range b.Pawns.Pawns() {
		if q != p {
			return q, true
		}
	}
	return 0, false
}
