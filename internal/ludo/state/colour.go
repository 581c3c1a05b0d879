// Package state holds the packed Ludo position representation: board
// coordinates, pawn aggregates, blocks, dice rolls and the move value type.
package state

// Colour identifies one of the four Ludo colours. Colour order (Red, Green,
// Yellow, Blue) fixes every other numbering in this package: base slots,
// track entries, home stretches and pawn ids are all derived from it.
type Colour uint8

const (
	Red Colour = iota
	Green
	Yellow
	Blue
	NumColours = 4
)

func (c Colour) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Yellow:
		return "Y"
	case Blue:
		return "B"
	default:
		return "?"
	}
}

// ColourOf returns the colour owning pawn id p (1..16).
func ColourOf(pawn int) Colour {
	return Colour((pawn - 1) / 4)
}

// PawnsOf returns the four pawn ids belonging to colour c, in order.
func PawnsOf(c Colour) [4]int {
	base := int(c)*4 + 1
	return [4]int{base, base + 1, base + 2, base + 3}
}
