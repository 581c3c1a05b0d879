package state

import "fmt"

// GameConfig fixes how many players are in a game and which colours each
// one controls. A 2-player game typically assigns two colours per player
// (e.g. Red+Yellow vs Green+Blue); 3- and 4-player games assign one colour
// each, ground in original_source/ludobackendc/ludoc.py's GameConfig.
type GameConfig struct {
	NPlayers     int
	PlayerColours [][]Colour
	colourPlayer [NumColours]int // colour -> player index
}

// NewGameConfig builds a config from an explicit player -> colours
// assignment. Every colour must be assigned to exactly one player.
func NewGameConfig(playerColours [][]Colour) (*GameConfig, error) {
	n := len(playerColours)
	if n != 2 && n != 3 && n != 4 {
		return nil, fmt.Errorf("ludo: unsupported player count %d", n)
	}
	cfg := &GameConfig{NPlayers: n, PlayerColours: playerColours}
	for i := range cfg.colourPlayer {
		cfg.colourPlayer[i] = -1
	}
	seen := 0
	for player, colours := range playerColours {
		for _, c := range colours {
			if cfg.colourPlayer[c] != -1 {
				return nil, fmt.Errorf("ludo: colour %s assigned twice", c)
			}
			cfg.colourPlayer[c] = player
			seen++
		}
	}
	if seen != NumColours {
		return nil, fmt.Errorf("ludo: all four colours must be assigned, got %d", seen)
	}
	return cfg, nil
}

// DefaultGameConfig returns the canonical assignment for n players:
// 2p -> {Red,Yellow} vs {Green,Blue}; 3p -> one colour each plus Blue
// paired with Red; 4p -> one colour each.
func DefaultGameConfig(n int) (*GameConfig, error) {
	switch n {
	case 2:
		return NewGameConfig([][]Colour{{Red, Yellow}, {Green, Blue}})
	case 3:
		return NewGameConfig([][]Colour{{Red, Blue}, {Green}, {Yellow}})
	case 4:
		return NewGameConfig([][]Colour{{Red}, {Green}, {Yellow}, {Blue}})
	default:
		return nil, fmt.Errorf("ludo: unsupported player count %d", n)
	}
}

// PlayerOf returns the player index owning colour c.
func (g *GameConfig) PlayerOf(c Colour) int { return g.colourPlayer[c] }

// PlayerOfPawn returns the player index owning pawn id p.
func (g *GameConfig) PlayerOfPawn(p int) int { return g.colourPlayer[ColourOf(p)] }

// ColoursOf returns the colours controlled by player.
func (g *GameConfig) ColoursOf(player int) []Colour { return g.PlayerColours[player] }
