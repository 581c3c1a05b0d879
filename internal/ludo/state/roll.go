package state

import "math/rand/v2"

// Dice rolls are three sequential d6 rolls, stopping as soon as a non-six
// is rolled or after the third die (ground in
// original_source/ludobackend/ludo.py Ludo.__init__'s generate_dice_roll).
// A roll is therefore a slice of length 1..3. The sequence {6,6,6} is a
// legitimate (if rare) outcome of real dice but is never a legal move: it
// is represented by the distinguished ImpossibleRollSum sum-form slot.

// NumLegalRolls is the count of rolls with at least the possibility of a
// legal move: {1..5}, {6,1..5}, {6,6,1..5}.
const NumLegalRolls = 15

// ImpossibleRollSum is the sum-form index for the {6,6,6} outcome, whose
// move set is always the single empty move.
const ImpossibleRollSum = 16

// RollDice samples one real dice-roll sequence: up to 3 sequential d6
// values, stopping at the first non-six.
func RollDice(rnd *rand.Rand) []int {
	roll := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		d := 1 + rnd.IntN(6)
		roll = append(roll, d)
		if d != 6 {
			break
		}
	}
	return roll
}

// PackMod7 packs a roll (1..3 dice values) into the mod-7 representation
// used inside State: the digits of the roll in base 7, first-rolled die
// least significant (spec §3.5).
func PackMod7(roll []int) uint16 {
	var v uint16
	for i := len(roll) - 1; i >= 0; i-- {
		v = v*7 + uint16(roll[i])
	}
	return v
}

// UnpackMod7 inverts PackMod7. The roll's length is fully determined by its
// contents: a die of value 6 always forces another roll, so decoding needs
// no separately stored length.
func UnpackMod7(v uint16) []int {
	d0 := int(v % 7)
	if d0 != 6 {
		return []int{d0}
	}
	v /= 7
	d1 := int(v % 7)
	if d1 != 6 {
		return []int{d0, d1}
	}
	v /= 7
	d2 := int(v % 7)
	return []int{d0, d1, d2}
}

// RollToSum converts a roll to its sum-form index (1..15, or
// ImpossibleRollSum for {6,6,6}).
func RollToSum(roll []int) int {
	switch len(roll) {
	case 1:
		return roll[0]
	case 2:
		return 5 + roll[1]
	case 3:
		if roll[2] == 6 {
			return ImpossibleRollSum
		}
		return 10 + roll[2]
	default:
		return ImpossibleRollSum
	}
}

// SumToRoll inverts RollToSum for the 15 legal sum-form slots.
func SumToRoll(sum int) []int {
	switch {
	case sum >= 1 && sum <= 5:
		return []int{sum}
	case sum >= 6 && sum <= 10:
		return []int{6, sum - 5}
	case sum >= 11 && sum <= 15:
		return []int{6, 6, sum - 10}
	default:
		return nil
	}
}

// AllSumForms enumerates the 15 legal sum-form indices plus the impossible
// slot, in ascending order.
func AllSumForms() []int {
	out := make([]int, 0, NumLegalRolls+1)
	for s := 1; s <= NumLegalRolls; s++ {
		out = append(out, s)
	}
	return append(out, ImpossibleRollSum)
}

// SampleRollSumForMCTS draws a sum-form index from the true roll
// distribution (1/6 per single die, 1/36 per {6,k}, 1/216 per {6,6,k}),
// rerolling on {6,6,6} ("appropriate 6-6-6 reroll absorption", spec §4.7)
// so every MCTS selection branch lands on a slice with at least one move
// candidate's worth of structure.
func SampleRollSumForMCTS(rnd *rand.Rand) int {
	for {
		roll := RollDice(rnd)
		sum := RollToSum(roll)
		if sum != ImpossibleRollSum {
			return sum
		}
	}
}
