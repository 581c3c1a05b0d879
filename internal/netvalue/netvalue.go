// Package netvalue defines the value-network boundary the Evaluation
// Queue calls into (spec §6.2): a batched tensor-in, scalar-out
// interface standing in for the external GPU-resident network. Training
// and shipping a real network are non-goals (spec.md §1); this package
// only gives the core something to call.
package netvalue

import "fmt"

// Evaluator scores a batch of flattened position tensors, one scalar in
// [-1, +1] per row. Shaped around the teacher's evaluate()/sfnnue.Networks
// boundary (internal/engine/worker.go, sfnnue/network.go) without
// importing sfnnue itself: the Stockfish NNUE format is chess-specific
// and has no mapping onto this tensor shape.
type Evaluator interface {
	Evaluate(batch [][]float32) ([]float32, error)
}

// ConstantEvaluator always returns the same scalar, regardless of input.
// Used by tests that only care about visit-count bookkeeping, not playing
// strength (spec §8 "deterministic evaluator returning the constant 0").
type ConstantEvaluator struct {
	Value float32
}

// Evaluate implements Evaluator.
func (c ConstantEvaluator) Evaluate(batch [][]float32) ([]float32, error) {
	out := make([]float32, len(batch))
	for i := range out {
		out[i] = c.Value
	}
	return out, nil
}

// MaterialHeuristicEvaluator is a cheap deterministic stand-in for a real
// network: it sums each row's weight and folds that into a bounded
// scalar, just enough signal for the actor loop and tests to exercise
// the full pipeline without a trained model (spec.md §1 excludes the
// network itself from scope).
type MaterialHeuristicEvaluator struct{}

// Evaluate implements Evaluator.
func (MaterialHeuristicEvaluator) Evaluate(batch [][]float32) ([]float32, error) {
	out := make([]float32, len(batch))
	for i, row := range batch {
		var sum float32
		for _, w := range row {
			sum += w
		}
		// squash into (-1, 1) without needing math.Tanh on float32
		out[i] = sum / (sum + 1)
		if sum < 0 {
			out[i] = -(-sum) / (-sum + 1)
		}
	}
	return out, nil
}

// FlattenRows flattens a (rows, cols) tensor into one []float32, the
// shape the queue hands the Evaluator (spec §4.12, §6.2).
func FlattenRows(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0])
	out := make([]float32, 0, len(rows)*cols)
	for _, r := range rows {
		if len(r) != cols {
			panic(fmt.Sprintf("netvalue: ragged tensor row, want %d cols got %d", cols, len(r)))
		}
		out = append(out, r...)
	}
	return out
}
