// Package mcts implements the lock-fine-grained parallel Monte-Carlo
// tree search (spec §4.6–§4.11): node allocation and per-node locking,
// PUCT selection with stochastic-roll branching, virtual-loss backup,
// root pruning and advancement.
//
// Algorithmic ground truth is
// original_source/ludobackendc/mcts.py (create_mcts_node, expand_mcts_node,
// selection, expansion, mcts_job, MCTree.prune_root/take_move/
// select_next_move); the Go concurrency idiom (a mutex embedded in the
// node struct, explicit Lock/Unlock around the critical section) is
// grounded on internal/engine/transposition.go and
// internal/engine/worker.go's shared-state guarding conventions.
package mcts

import (
	"fmt"
	"sync"

	"github.com/ludomcts/selfplay/internal/ludo/rules"
	"github.com/ludomcts/selfplay/internal/ludo/state"
)

// Node is one MCTS tree node (spec §4.6). State is an owned copy; Parent
// is a non-owning back-reference kept for observability and symmetry
// with the source's cyclic-pointer structure (Go's GC makes the
// source's careful "detach before free" dance unnecessary).
type Node struct {
	mu sync.Mutex

	State    *state.State
	Parent   *Node
	expanded bool

	// Moves/Children/P/N/W/Q are flat, roll-partitioned arrays: one entry
	// per enumerated move (including the empty-move placeholder for dead
	// rolls). rollStart[s] is the first index belonging to sum-form s;
	// rollStart[s+1] (or total for s == state.ImpossibleRollSum) is one
	// past the last.
	Moves    []state.Move
	Children []*Node
	P        []float64
	N        []int
	W        []float64
	Q        []float64

	rollStart [state.ImpossibleRollSum + 2]int
	total     int

	// MoveStart/MoveEnd is the active index window: root pruning (§4.10)
	// narrows this to the slice matching the observed dice roll without
	// disturbing the flat arrays.
	MoveStart, MoveEnd int
}

func newNode(s *state.State, parent *Node) *Node {
	return &Node{State: s, Parent: parent}
}

// Expanded reports whether the node has been expanded.
func (n *Node) Expanded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.expanded
}

// expandLocked enumerates all moves and materializes unexpanded
// children, with uniform priors (spec §4.6 "Creation"/"Expansion";
// §9 mandates uniform priors over the source's alternative
// softmax-over-child-value scheme). Caller must already hold n.mu; it
// remains held on return so that a concurrently-racing selector never
// observes expanded==true before P is populated (spec §4.8).
func (n *Node) expandLocked() error {
	if n.expanded {
		return nil
	}
	if n.State.GameOver {
		n.expanded = true
		return nil
	}

	buckets := rules.AllPossibleMoves(n.State)
	total := 0
	for _, b := range buckets {
		total += len(b.Moves)
	}

	moves := make([]state.Move, 0, total)
	children := make([]*Node, 0, total)
	offset := 0
	for _, b := range buckets {
		n.rollStart[b.Sum] = offset
		for _, mv := range b.Moves {
			child, err := rules.GenerateNextState(n.State, mv)
			if err != nil {
				return fmt.Errorf("mcts: expand: %w", err)
			}
			moves = append(moves, mv)
			children = append(children, newNode(child, n))
			offset++
		}
	}

	n.Moves = moves
	n.Children = children
	n.P = make([]float64, total)
	n.N = make([]int, total)
	n.W = make([]float64, total)
	n.Q = make([]float64, total)
	for i := range n.P {
		n.P[i] = 1.0
	}
	n.total = offset
	n.MoveStart, n.MoveEnd = 0, offset
	n.expanded = true
	return nil
}

// rollSlice returns the [start, end) index range of sum-form sum's
// moves within the flat arrays.
func (n *Node) rollSlice(sum int) (int, int) {
	start := n.rollStart[sum]
	end := n.total
	if sum < state.ImpossibleRollSum {
		end = n.rollStart[sum+1]
	}
	return start, end
}

// VisitSum returns the total visit count across the node's active
// window, used by the tree-visit-conservation property (spec §8).
func (n *Node) VisitSum() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	sum := 0
	for i := n.MoveStart; i < n.MoveEnd; i++ {
		sum += n.N[i]
	}
	return sum
}
