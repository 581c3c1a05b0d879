package state

import "errors"

// ErrInvariantViolation marks engine-corruption conditions: the state
// would need more than MaxBlocks blocks, or a pawn id appears twice
// (spec §7 "Out-of-budget move generation"). These abort the current
// game, not the process.
var ErrInvariantViolation = errors.New("ludo: state invariant violation")
