package state

// Aggregate is a base-17 packed set of pawn ids sharing one (player, pos)
// cell: each base-17 digit is a pawn id (1..16), digit order is irrelevant
// for equality. The zero Aggregate is the empty set.
type Aggregate uint64

const aggregateBase = 17

// Add returns the aggregate with pawn id p inserted.
func (a Aggregate) Add(p int) Aggregate {
	if a.Contains(p) {
		return a
	}
	digits := a.digits()
	digits = append(digits, p)
	return packDigits(digits)
}

// Remove returns the aggregate with pawn id p removed.
func (a Aggregate) Remove(p int) Aggregate {
	digits := a.digits()
	out := digits[:0]
	for _, d := range digits {
		if d != p {
			out = append(out, d)
		}
	}
	return packDigits(out)
}

// Contains reports whether pawn id p is a member.
func (a Aggregate) Contains(p int) bool {
	for x := a; x != 0; x /= aggregateBase {
		if int(x%aggregateBase) == p {
			return true
		}
	}
	return false
}

// Count returns the number of pawn ids packed into a.
func (a Aggregate) Count() int {
	n := 0
	for x := a; x != 0; x /= aggregateBase {
		n++
	}
	return n
}

// Empty reports whether the aggregate has no members.
func (a Aggregate) Empty() bool { return a == 0 }

// Pawns returns the member pawn ids in packed (least-significant-digit-
// first) order.
func (a Aggregate) Pawns() []int { return a.digits() }

func (a Aggregate) digits() []int {
	if a == 0 {
		return nil
	}
	out := make([]int, 0, 4)
	for x := a; x != 0; x /= aggregateBase {
		out = append(out, int(x%aggregateBase))
	}
	return out
}

func packDigits(digits []int) Aggregate {
	var a Aggregate
	for i := len(digits) - 1; i >= 0; i-- {
		a = a*aggregateBase + Aggregate(digits[i])
	}
	return a
}

// NewAggregate packs the given pawn ids into an Aggregate.
func NewAggregate(pawns ...int) Aggregate {
	return packDigits(pawns)
}

// PackPair encodes a two-pawn block key (used as Block.Pawns).
func PackPair(a, b int) Aggregate { return NewAggregate(a, b) }
