package state

import "fmt"

// BlockDict is the human-readable form of a Block, as it appears in the
// all_blocks list of Get()/Set() (spec §6.1).
type BlockDict struct {
	Pawns []string `json:"pawns"`
	Pos   string   `json:"pos"`
	Rigid bool     `json:"rigid"`
}

// Get converts the packed state to the stable-keyed human-readable
// dictionary described in spec §6.1.
func (s *State) Get() map[string]any {
	out := map[string]any{
		"n_players":       s.Config.NPlayers,
		"game_over":       s.GameOver,
		"current_player":  s.CurrentPlayer,
		"num_more_moves":  s.NumMoreMoves,
		"dice_roll":       s.Roll(),
		"last_move_id":    s.LastMoveID,
	}
	for pl := 0; pl < s.Config.NPlayers; pl++ {
		player := map[string]string{}
		for _, c := range s.Config.ColoursOf(pl) {
			for _, p := range PawnsOf(c) {
				player[PawnName(p)] = PositionName(s.PawnAt[p])
			}
		}
		out[fmt.Sprintf("Player %d", pl)] = player
	}
	blocks := make([]BlockDict, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		names := make([]string, 0, 2)
		for _, p := range b.Pawns.Pawns() {
			names = append(names, PawnName(p))
		}
		blocks = append(blocks, BlockDict{Pawns: names, Pos: PositionName(b.Pos), Rigid: b.Rigid})
	}
	out["all_blocks"] = blocks
	return out
}

// Set overwrites s from a dictionary of the shape Get() produces.
// Config must already be assigned (colour/player mapping is not itself
// serialized).
func (s *State) Set(dict map[string]any) error {
	if s.Config == nil {
		return fmt.Errorf("ludo: Set requires a State with Config already assigned")
	}
	if v, ok := dict["current_player"]; ok {
		s.CurrentPlayer = toInt(v)
	}
	if v, ok := dict["num_more_moves"]; ok {
		s.NumMoreMoves = toInt(v)
	}
	if v, ok := dict["last_move_id"]; ok {
		s.LastMoveID = toInt(v)
	}
	if v, ok := dict["game_over"]; ok {
		s.GameOver, _ = v.(bool)
	}
	if v, ok := dict["dice_roll"]; ok {
		roll, err := toIntSlice(v)
		if err != nil {
			return err
		}
		s.DiceRoll = PackMod7(roll)
	}
	for pl := 0; pl < s.Config.NPlayers; pl++ {
		raw, ok := dict[fmt.Sprintf("Player %d", pl)]
		if !ok {
			continue
		}
		mapping, ok := raw.(map[string]string)
		if !ok {
			return fmt.Errorf("ludo: Player %d entry has unexpected shape", pl)
		}
		for pawnName, posName := range mapping {
			pawn, err := ParsePawnName(pawnName)
			if err != nil {
				return err
			}
			pos, err := ParsePositionName(posName)
			if err != nil {
				return err
			}
			s.PawnAt[pawn] = pos
		}
	}
	if raw, ok := dict["all_blocks"]; ok {
		blocks, err := toBlockDicts(raw)
		if err != nil {
			return err
		}
		s.Blocks = s.Blocks[:0]
		for _, bd := range blocks {
			if len(bd.Pawns) != 2 {
				return fmt.Errorf("ludo: block must have exactly 2 pawns, got %d", len(bd.Pawns))
			}
			p0, err := ParsePawnName(bd.Pawns[0])
			if err != nil {
				return err
			}
			p1, err := ParsePawnName(bd.Pawns[1])
			if err != nil {
				return err
			}
			pos, err := ParsePositionName(bd.Pos)
			if err != nil {
				return err
			}
			if err := s.AddBlock(Block{
				Pawns:  PackPair(p0, p1),
				Pos:    pos,
				Rigid:  bd.Rigid,
				Player: s.Config.PlayerOfPawn(p0),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func toInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

func toIntSlice(v any) ([]int, error) {
	switch x := v.(type) {
	case []int:
		return x, nil
	case []any:
		out := make([]int, len(x))
		for i, e := range x {
			out[i] = toInt(e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ludo: dice_roll has unexpected shape %T", v)
	}
}

func toBlockDicts(v any) ([]BlockDict, error) {
	switch x := v.(type) {
	case []BlockDict:
		return x, nil
	case []any:
		out := make([]BlockDict, 0, len(x))
		for _, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ludo: all_blocks entry has unexpected shape %T", e)
			}
			bd := BlockDict{}
			if p, ok := m["pawns"].([]any); ok {
				for _, n := range p {
					if s, ok := n.(string); ok {
						bd.Pawns = append(bd.Pawns, s)
					}
				}
			}
			if p, ok := m["pos"].(string); ok {
				bd.Pos = p
			}
			if r, ok := m["rigid"].(bool); ok {
				bd.Rigid = r
			}
			out = append(out, bd)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ludo: all_blocks has unexpected shape %T", v)
	}
}
