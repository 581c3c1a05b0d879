package state

import (
	"fmt"
	"strconv"
	"strings"
)

var pawnNames = [17]string{
	"", "R1", "R2", "R3", "R4", "G1", "G2", "G3", "G4",
	"Y1", "Y2", "Y3", "Y4", "B1", "B2", "B3", "B4",
}

var baseNames = [4][5]string{
	{"", "RB1", "RB2", "RB3", "RB4"},
	{"", "GB1", "GB2", "GB3", "GB4"},
	{"", "YB1", "YB2", "YB3", "YB4"},
	{"", "BB1", "BB2", "BB3", "BB4"},
}

var homeNames = [4][7]string{
	{"", "RH1", "RH2", "RH3", "RH4", "RH5", "RH6"},
	{"", "GH1", "GH2", "GH3", "GH4", "GH5", "GH6"},
	{"", "YH1", "YH2", "YH3", "YH4", "YH5", "YH6"},
	{"", "BH1", "BH2", "BH3", "BH4", "BH5", "BH6"},
}

// PawnName returns the human-readable pawn name (R1..B4) for pawn id p.
func PawnName(p int) string {
	if p < 1 || p > 16 {
		return fmt.Sprintf("?%d", p)
	}
	return pawnNames[p]
}

// ParsePawnName is the inverse of PawnName.
func ParsePawnName(name string) (int, error) {
	for p, n := range pawnNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("ludo: unknown pawn name %q", name)
}

// PositionName returns the human-readable position name: RB1..BB4 for base
// slots, P1..P52 for main-track cells, RH1..BH6 for home-stretch cells.
func PositionName(pos int) string {
	switch {
	case IsBase(pos):
		c := Colour((pos - 1) / 4)
		i := (pos-1)%4 + 1
		return baseNames[c][i]
	case IsMainTrack(pos):
		return "P" + strconv.Itoa(pos-MainTrackLow+1)
	case IsHomeStretch(pos):
		c := HomeColour(pos)
		i := (pos-HomeStretchLo)%6 + 1
		return homeNames[c][i]
	default:
		return fmt.Sprintf("?%d", pos)
	}
}

// ParsePositionName is the inverse of PositionName.
func ParsePositionName(name string) (int, error) {
	if strings.HasPrefix(name, "P") {
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 1 || n > MainTrackLen {
			return 0, fmt.Errorf("ludo: invalid main-track name %q", name)
		}
		return MainTrackLow + n - 1, nil
	}
	for c := range baseNames {
		for i, n := range baseNames[c] {
			if n == name {
				return BaseSlot(Colour(c), i-1), nil
			}
		}
	}
	for c := range homeNames {
		for i, n := range homeNames[c] {
			if n == name {
				return HomeStart(Colour(c)) + i - 1, nil
			}
		}
	}
	return 0, fmt.Errorf("ludo: unknown position name %q", name)
}
