package state

import "fmt"

// State is the packed Ludo position (spec §3.4). It is a plain value
// struct: the rule engine deep-copies it on every derived state (§3.4
// "Ownership / lifecycle", carried forward per spec.md §9's "deepcopy
// state at every generation" design note) rather than attempting
// copy-on-write sharing across goroutines.
type State struct {
	Config        *GameConfig // shared, immutable for the life of a game
	CurrentPlayer int
	DiceRoll      uint16 // mod-7 packed, see roll.go
	NumMoreMoves  int
	LastMoveID    int
	GameOver      bool

	// PawnAt[p] is the position of pawn id p (1..16); index 0 is unused.
	// This is the single source of truth for pawn location; the
	// per-(player,pos) aggregates of spec §3.4 are derived on demand by
	// PawnPosAggregates, since states are small enough (16 pawns) that
	// scanning beats maintaining a second mutable structure in lockstep.
	PawnAt [17]int

	Blocks []Block
}

// NewInitialState builds the starting position: every pawn in its base
// slot, no blocks, player 0 to move with the given dice roll (as sampled
// by RollDice, possibly {6,6,6}).
func NewInitialState(cfg *GameConfig, roll []int) *State {
	s := &State{
		Config:   cfg,
		DiceRoll: PackMod7(roll),
		Blocks:   make([]Block, 0, MaxBlocks),
	}
	for c := Colour(0); c < NumColours; c++ {
		pawns := PawnsOf(c)
		for i, p := range pawns {
			s.PawnAt[p] = BaseSlot(c, i)
		}
	}
	return s
}

// Clone returns a deep copy. Config is shared (immutable).
func (s *State) Clone() *State {
	cp := *s
	cp.Blocks = append([]Block(nil), s.Blocks...)
	return &cp
}

// Roll returns the decoded current dice roll.
func (s *State) Roll() []int { return UnpackMod7(s.DiceRoll) }

// PawnsAtPos returns every pawn id physically located at pos, in
// ascending id order.
func (s *State) PawnsAtPos(pos int) []int {
	var out []int
	for p := 1; p <= 16; p++ {
		if s.PawnAt[p] == pos {
			out = append(out, p)
		}
	}
	return out
}

// BlockOf returns the block containing pawn p, if any.
func (s *State) BlockOf(p int) (Block, bool) {
	for _, b := range s.Blocks {
		if b.HasPawn(p) {
			return b, true
		}
	}
	return Block{}, false
}

// BlockIndexOf returns the index into s.Blocks of the block containing
// pawn p, or -1.
func (s *State) BlockIndexOf(p int) int {
	for i, b := range s.Blocks {
		if b.HasPawn(p) {
			return i
		}
	}
	return -1
}

// BlockAt returns the block belonging to player at pos, if any.
func (s *State) BlockAt(pos, player int) (Block, bool) {
	for _, b := range s.Blocks {
		if b.Pos == pos && b.Player == player {
			return b, true
		}
	}
	return Block{}, false
}

// SinglesAt returns the pawn ids of player at pos that are not part of
// any block.
func (s *State) SinglesAt(pos, player int) []int {
	var out []int
	for _, p := range s.PawnsAtPos(pos) {
		if s.Config.PlayerOfPawn(p) != player {
			continue
		}
		if _, in := s.BlockOf(p); in {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RemoveBlock removes the block at index i (order of remaining blocks is
// not preserved).
func (s *State) RemoveBlock(i int) {
	last := len(s.Blocks) - 1
	s.Blocks[i] = s.Blocks[last]
	s.Blocks = s.Blocks[:last]
}

// AddBlock appends a new block, enforcing the MaxBlocks invariant
// (spec §3.7). Returns an error wrapping ErrInvariantViolation if the
// state is already full.
func (s *State) AddBlock(b Block) error {
	if len(s.Blocks) >= MaxBlocks {
		return fmt.Errorf("%w: already have %d blocks", ErrInvariantViolation, len(s.Blocks))
	}
	s.Blocks = append(s.Blocks, b)
	return nil
}

// HasNonFinalePawns reports whether player has any pawn outside its
// finale cells.
func (s *State) HasNonFinalePawns(player int) bool {
	for _, c := range s.Config.ColoursOf(player) {
		for _, p := range PawnsOf(c) {
			if s.PawnAt[p] != Finale(c) {
				return true
			}
		}
	}
	return false
}

// PlayerFinished reports whether every pawn of player has reached its
// finale cell.
func (s *State) PlayerFinished(player int) bool {
	return !s.HasNonFinalePawns(player)
}

// PawnPosAggregates computes the spec §3.4 pawn_pos[player][pos] view on
// demand from PawnAt.
func (s *State) PawnPosAggregates() [][]Aggregate {
	out := make([][]Aggregate, s.Config.NPlayers)
	for pl := range out {
		out[pl] = make([]Aggregate, NumPositions)
	}
	for p := 1; p <= 16; p++ {
		pos := s.PawnAt[p]
		pl := s.Config.PlayerOfPawn(p)
		out[pl][pos] = out[pl][pos].Add(p)
	}
	return out
}
