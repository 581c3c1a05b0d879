package mcts

import (
	"math/rand/v2"
	"testing"

	"github.com/ludomcts/selfplay/internal/evalqueue"
	"github.com/ludomcts/selfplay/internal/ludo/state"
	"github.com/ludomcts/selfplay/internal/netvalue"
)

func newTestTree(t *testing.T, nPlayers int) *Tree {
	t.Helper()
	cfg, err := state.DefaultGameConfig(nPlayers)
	if err != nil {
		t.Fatal(err)
	}
	s := state.NewInitialState(cfg, []int{6})
	q := evalqueue.New(64)
	tr := NewTree(s, 0, 1.5, 3, q)
	if err := tr.PruneRoot([]int{6}); err != nil {
		t.Fatal(err)
	}
	return tr
}

// A dedicated evaluator goroutine is required whenever a simulation can
// reach a non-terminal leaf and submit to the queue (spec §5 "one
// dedicated evaluator thread per active player's tree").
func runEvaluator(t *testing.T, q *evalqueue.Queue, ev netvalue.Evaluator) func() {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- q.Run(ev, 8) }()
	return func() {
		q.Stop()
		if err := <-done; err != nil {
			t.Errorf("evaluator run: %v", err)
		}
	}
}

// TestVisitConservation checks spec §8's "tree-visit conservation": after
// K simulations on an expanded tree with no queue drops, the active
// window's total visit count equals K.
func TestVisitConservation(t *testing.T) {
	tr := newTestTree(t, 2)
	stop := runEvaluator(t, tr.Queue, netvalue.ConstantEvaluator{Value: 0})
	defer stop()

	rng := rand.New(rand.NewPCG(1, 2))
	const k = 64
	for i := 0; i < k; i++ {
		if _, err := tr.Simulate(rng); err != nil {
			t.Fatalf("simulate %d: %v", i, err)
		}
	}

	if got := tr.Root.VisitSum(); got != k {
		t.Fatalf("visit sum = %d, want %d", got, k)
	}
}

// TestSingleThreadDeterministic checks spec §8: "with n_vl = 0 and serial
// execution, outcomes are deterministic given a seeded roll sampler."
func TestSingleThreadDeterministic(t *testing.T) {
	run := func() []int {
		cfg, _ := state.DefaultGameConfig(2)
		s := state.NewInitialState(cfg, []int{6})
		q := evalqueue.New(64)
		tr := NewTree(s, 0, 1.5, 0, q)
		if err := tr.PruneRoot([]int{6}); err != nil {
			t.Fatal(err)
		}
		stop := runEvaluator(t, q, netvalue.ConstantEvaluator{Value: 0})
		defer stop()

		rng := rand.New(rand.NewPCG(42, 7))
		for i := 0; i < 32; i++ {
			if _, err := tr.Simulate(rng); err != nil {
				t.Fatal(err)
			}
		}
		ns := make([]int, tr.Root.MoveEnd-tr.Root.MoveStart)
		for i := range ns {
			ns[i] = tr.Root.N[tr.Root.MoveStart+i]
		}
		return ns
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("different window sizes: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("visit counts diverge at index %d: %d vs %d", i, a[i], b[i])
		}
	}
}

// TestAdvanceByMove checks that a second, independently-expanded tree
// rooted at the same state can locate and advance to the same move
// chosen on the first tree (spec §4.14 "inform all trees of the selected
// real move").
func TestAdvanceByMove(t *testing.T) {
	cfg, err := state.DefaultGameConfig(2)
	if err != nil {
		t.Fatal(err)
	}
	s := state.NewInitialState(cfg, []int{6})

	q0 := evalqueue.New(64)
	q1 := evalqueue.New(64)
	t0 := NewTree(s, 0, 1.5, 0, q0)
	t1 := NewTree(s, 1, 1.5, 0, q1)
	if err := t0.PruneRoot([]int{6}); err != nil {
		t.Fatal(err)
	}
	if err := t1.PruneRoot([]int{6}); err != nil {
		t.Fatal(err)
	}

	_, move, err := t0.SelectMove(0, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	moveIdx := -1
	for i := t0.Root.MoveStart; i < t0.Root.MoveEnd; i++ {
		if t0.Root.Moves[i] == move {
			moveIdx = i
			break
		}
	}
	if err := t0.Advance(moveIdx); err != nil {
		t.Fatal(err)
	}
	if err := t1.AdvanceByMove(move); err != nil {
		t.Fatalf("advance by move on second tree: %v", err)
	}
	if t0.Root.State.CurrentPlayer != t1.Root.State.CurrentPlayer {
		t.Fatalf("trees disagree on resulting current player: %d vs %d",
			t0.Root.State.CurrentPlayer, t1.Root.State.CurrentPlayer)
	}
}

// TestQueueFullUnwindsVirtualLoss checks spec §7: a simulation that loses
// its leaf to a full evaluation queue unwinds the virtual loss it applied
// without crediting any backup, leaving no lasting mark on N/W.
func TestQueueFullUnwindsVirtualLoss(t *testing.T) {
	tr := newTestTree(t, 2)
	// A length-2 ring has exactly one usable slot; fill it directly so
	// the simulation's own submission is guaranteed to observe the ring
	// full (no evaluator goroutine drains it).
	tr.Queue = evalqueue.New(2)
	if idx := tr.Queue.Submit(tr.Root.State); idx == evalqueue.FullSentinel {
		t.Fatal("setup: expected the first submission to succeed")
	}

	rng := rand.New(rand.NewPCG(3, 4))
	_, err := tr.Simulate(rng)
	if err != ErrQueueFull {
		t.Fatalf("got err = %v, want ErrQueueFull", err)
	}
	if tr.Root.VisitSum() != 0 {
		t.Fatalf("a lost simulation must not leave visits behind, got %d", tr.Root.VisitSum())
	}
}
