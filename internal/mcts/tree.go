package mcts

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/ludomcts/selfplay/internal/evalqueue"
	"github.com/ludomcts/selfplay/internal/ludo/state"
)

// ErrQueueFull is returned by Simulate when a leaf could not be
// submitted for evaluation because the queue had no free slot (spec
// §7 "Queue full"); the caller's virtual losses have already been
// unwound and the simulation counts as lost, not as an error to abort
// the game over.
var ErrQueueFull = errors.New("mcts: evaluation queue full")

// Tree is one player's view of the game: a root node plus the PUCT
// constants and evaluation queue shared by every simulation run
// against it. A Tree is safe for concurrent Simulate calls; Advance
// and PruneRoot are not meant to run concurrently with Simulate (they
// mutate the root itself, exactly like the source's single-threaded
// prune_root/take_move calls between search rounds).
type Tree struct {
	Root  *Node
	Owner int

	CPuct float64
	NVl   int

	Queue *evalqueue.Queue
}

// NewTree creates a tree rooted at a (cloned) copy of s, searching on
// behalf of owner.
func NewTree(s *state.State, owner int, cPuct float64, nVl int, q *evalqueue.Queue) *Tree {
	return &Tree{
		Root:  newNode(s.Clone(), nil),
		Owner: owner,
		CPuct: cPuct,
		NVl:   nVl,
		Queue: q,
	}
}

// pathEdge records one taken edge during selection: the node whose
// statistics own index idx.
type pathEdge struct {
	node *Node
	idx  int
}

// EnsureRootExpanded expands the root if it is not already (spec
// §4.10: "ONLY CALL ON AN EXPANDED NODE" in the source's prune_root;
// the Go root is expanded lazily on first use instead of eagerly at
// construction).
func (t *Tree) EnsureRootExpanded() error {
	t.Root.mu.Lock()
	defer t.Root.mu.Unlock()
	return t.Root.expandLocked()
}

// PruneRoot narrows the root's active window to the slice of children
// consistent with the observed dice roll, discarding every other
// branch (spec §4.10). roll is the raw 1-3 die-face slice, e.g.
// []int{6, 4}.
func (t *Tree) PruneRoot(roll []int) error {
	if err := t.EnsureRootExpanded(); err != nil {
		return err
	}
	root := t.Root
	root.mu.Lock()
	defer root.mu.Unlock()

	sum := state.RollToSum(roll)
	ms, me := root.rollSlice(sum)
	for i := root.MoveStart; i < ms; i++ {
		root.Children[i] = nil
	}
	for i := me; i < root.MoveEnd; i++ {
		root.Children[i] = nil
	}
	root.MoveStart, root.MoveEnd = ms, me
	return nil
}

// Advance replaces the root with the child at moveIdx (spec §4.6 "Root
// advancement"), auto-expanding the new root immediately so the next
// PruneRoot/Simulate round sees it ready (mirrors the source's
// take_move: "if not self.root.expanded: self.expand_root(model)").
func (t *Tree) Advance(moveIdx int) error {
	root := t.Root
	if moveIdx < root.MoveStart || moveIdx >= root.MoveEnd {
		return fmt.Errorf("mcts: advance: move index %d outside active window [%d,%d)", moveIdx, root.MoveStart, root.MoveEnd)
	}
	newRoot := root.Children[moveIdx]
	if newRoot == nil {
		return fmt.Errorf("mcts: advance: child at index %d was pruned", moveIdx)
	}
	root.Children[moveIdx] = nil // detach: mirrors the source's non-owning handoff
	newRoot.Parent = nil

	newRoot.mu.Lock()
	err := newRoot.expandLocked()
	newRoot.mu.Unlock()
	if err != nil {
		return err
	}

	t.Root = newRoot
	return nil
}

// AdvanceByMove locates m among the root's active-window children and
// advances to it (spec §4.14 "inform all trees of the selected real
// move (each advances its own root)"): every player's tree is rooted at
// the same actual game state differing only in Owner, so enumeration is
// deterministic and m is guaranteed to appear in each tree's window
// once PruneRoot has been applied for the same dice roll.
func (t *Tree) AdvanceByMove(m state.Move) error {
	root := t.Root
	root.mu.Lock()
	idx := -1
	for i := root.MoveStart; i < root.MoveEnd; i++ {
		if root.Moves[i] == m {
			idx = i
			break
		}
	}
	root.mu.Unlock()
	if idx == -1 {
		return fmt.Errorf("mcts: advance by move: move not found in active window")
	}
	return t.Advance(idx)
}

// selectUntilLeaf walks down from node applying PUCT selection and
// virtual loss until it reaches an unexpanded or terminal node,
// recording every taken edge into path. When useRootWindow is true the
// very first step reuses node's own (possibly pruned) active window
// instead of sampling a fresh roll, honoring the real dice roll that
// gated this search round (spec §4.10); every subsequent step, and
// every step on any later call, samples a fresh roll via
// state.SampleRollSumForMCTS (spec §4.7, §9 open-question resolution:
// one fresh roll per descent step, never reused across simulations).
func (t *Tree) selectUntilLeaf(node *Node, rng *rand.Rand, useRootWindow bool, path *[]pathEdge) *Node {
	for {
		node.mu.Lock()
		expanded := node.expanded
		gameOver := node.State.GameOver
		node.mu.Unlock()
		if !expanded || gameOver {
			return node
		}

		var ms, me int
		if useRootWindow {
			ms, me = node.MoveStart, node.MoveEnd
			useRootWindow = false
		} else {
			sum := state.SampleRollSumForMCTS(rng)
			ms, me = node.rollSlice(sum)
		}
		if me <= ms {
			ms, me = node.MoveStart, node.MoveEnd
		}

		mi := t.pickChild(node, ms, me)
		*path = append(*path, pathEdge{node: node, idx: mi})
		node = node.Children[mi]
	}
}

// pickChild scores the active window with PUCT, applies virtual loss
// to the winner, and returns its index (spec §4.7). Ties keep the
// first index encountered, matching a strict '<' replace comparison.
func (t *Tree) pickChild(n *Node, ms, me int) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	sumN := 0
	for i := ms; i < me; i++ {
		sumN += n.N[i]
	}
	sqrtSum := math.Sqrt(float64(sumN))

	best := ms
	bestScore := n.Q[ms] + t.CPuct*n.P[ms]*sqrtSum/float64(1+n.N[ms])
	for i := ms + 1; i < me; i++ {
		score := n.Q[i] + t.CPuct*n.P[i]*sqrtSum/float64(1+n.N[i])
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	n.N[best] += t.NVl
	n.W[best] -= float64(t.NVl)
	n.Q[best] = safeDiv(n.W[best], n.N[best])
	return best
}

// expandRace expands node under its lock, or — if another simulation
// already expanded it first — releases immediately and resumes
// selection from it (spec §4.8 "Expansion race"). When it finds the
// node still unexpanded it returns with the node's lock held, so the
// caller's expandLocked (which also sets the uniform priors) completes
// before any other selector can read the node; the caller releases the
// lock after expansion, before the leaf is evaluated. An already-expanded
// terminal node is returned unlocked.
func (t *Tree) expandRace(node *Node, rng *rand.Rand, path *[]pathEdge) *Node {
	for {
		node.mu.Lock()
		if !node.expanded {
			return node // caller must expandLocked (still holding n.mu) then unlock
		}
		node.mu.Unlock()
		if node.State.GameOver {
			return node
		}
		node = t.selectUntilLeaf(node, rng, false, path)
		node.mu.Lock()
		if !node.expanded {
			return node
		}
		node.mu.Unlock()
		if node.State.GameOver {
			return node
		}
	}
}

// evaluateLeaf scores an expanded-but-unvisited or terminal leaf (spec
// §4.9). Terminal nodes resolve directly from the rules engine's
// completion check; non-terminal leaves are submitted to the shared
// evaluation queue with current_player overwritten to the tree's
// owner so the network always sees the board from that seat's
// perspective.
func (t *Tree) evaluateLeaf(leaf *Node) (float64, error) {
	if leaf.State.GameOver {
		if leaf.State.PlayerFinished(t.Owner) {
			return 1, nil
		}
		return -1, nil
	}

	sub := leaf.State.Clone()
	sub.CurrentPlayer = t.Owner
	idx := t.Queue.Submit(sub)
	if idx == evalqueue.FullSentinel {
		return 0, ErrQueueFull
	}
	return float64(t.Queue.Await(idx)), nil
}

// backup credits every edge on path with the outcome v, reversing the
// virtual loss applied during selection and folding in the real
// result with the per-ancestor perspective flip (spec §4.9 "Backup").
func (t *Tree) backup(path []pathEdge, v float64) {
	for i := len(path) - 1; i >= 0; i-- {
		e := path[i]
		e.node.mu.Lock()
		mult := -1.0
		if e.node.State.CurrentPlayer == t.Owner {
			mult = 1.0
		}
		e.node.N[e.idx] += 1 - t.NVl
		e.node.W[e.idx] += mult*v + float64(t.NVl)
		e.node.Q[e.idx] = safeDiv(e.node.W[e.idx], e.node.N[e.idx])
		e.node.mu.Unlock()
	}
}

// unwind reverses the virtual loss applied to every edge on path
// without crediting any outcome, for a simulation that was aborted
// before reaching backup (spec §7 "Queue full": "the simulation
// unwinds its virtual losses and exits without contributing a
// backup").
func (t *Tree) unwind(path []pathEdge) {
	for _, e := range path {
		e.node.mu.Lock()
		e.node.N[e.idx] -= t.NVl
		e.node.W[e.idx] += float64(t.NVl)
		e.node.Q[e.idx] = safeDiv(e.node.W[e.idx], e.node.N[e.idx])
		e.node.mu.Unlock()
	}
}

func safeDiv(w float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return w / float64(n)
}

// Simulate runs one full selection/expansion/evaluation/backup round
// (spec §4.9 "mcts_job"), returning the depth of the walk for
// observability. It is safe to call concurrently from many goroutines
// sharing this Tree and its Queue.
func (t *Tree) Simulate(rng *rand.Rand) (int, error) {
	path := make([]pathEdge, 0, 8)
	candidate := t.selectUntilLeaf(t.Root, rng, true, &path)

	// expandRace returns with leaf.mu held exactly when it found leaf
	// still unexpanded; only then is there an expansion to perform and a
	// lock to release, and the lock is released before the evaluation
	// below.
	leaf := t.expandRace(candidate, rng, &path)
	if !leaf.expanded {
		err := leaf.expandLocked()
		leaf.mu.Unlock()
		if err != nil {
			t.unwind(path)
			return 0, err
		}
	}

	v, err := t.evaluateLeaf(leaf)
	if err != nil {
		t.unwind(path)
		return 0, err
	}

	t.backup(path, v)
	return len(path), nil
}

// Candidate is one root child's search statistics, used for move
// sampling and for the actor loop's per-move top-k log (spec §9
// "per-move top-k candidate logging").
type Candidate struct {
	MoveIndex int
	Move      state.Move
	Visits    int
	Q         float64
	Prior     float64
}

// TopCandidates returns the root's active-window children sorted by
// descending visit count, truncated to k (k<=0 means "all").
func (t *Tree) TopCandidates(k int) []Candidate {
	root := t.Root
	root.mu.Lock()
	defer root.mu.Unlock()

	n := root.MoveEnd - root.MoveStart
	cands := make([]Candidate, n)
	for i := 0; i < n; i++ {
		idx := root.MoveStart + i
		cands[i] = Candidate{
			MoveIndex: idx,
			Move:      root.Moves[idx],
			Visits:    root.N[idx],
			Q:         root.Q[idx],
			Prior:     root.P[idx],
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].Visits > cands[j].Visits })
	if k > 0 && k < len(cands) {
		cands = cands[:k]
	}
	return cands
}

// SelectMove samples a move from the root's visit distribution (spec
// §4.11): pi(a|s) ∝ N(s,a)^(1/temp), with temp<=0 meaning "argmax"
// (the fully annealed, greedy endgame policy). It returns the chosen
// child's flat index (for a subsequent Advance call) and the move
// itself.
func (t *Tree) SelectMove(temp float64, rng *rand.Rand) (int, state.Move, error) {
	root := t.Root
	root.mu.Lock()
	defer root.mu.Unlock()

	ms, me := root.MoveStart, root.MoveEnd
	if me <= ms {
		return -1, state.PassMove, errors.New("mcts: select move: empty active window")
	}

	if temp <= 0 {
		best := ms
		for i := ms + 1; i < me; i++ {
			if root.N[i] > root.N[best] {
				best = i
			}
		}
		return best, root.Moves[best], nil
	}

	n := me - ms
	weights := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		w := math.Pow(float64(root.N[ms+i]), 1/temp)
		weights[i] = w
		sum += w
	}
	if sum <= 0 {
		// every child unvisited: fall back to a uniform pick.
		idx := ms + rng.IntN(n)
		return idx, root.Moves[idx], nil
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i := 0; i < n; i++ {
		acc += weights[i]
		if r < acc {
			return ms + i, root.Moves[ms+i], nil
		}
	}
	return me - 1, root.Moves[me-1], nil
}

// HumanStep is one leg of a reconstructed move, named the way a person
// reading a game log would expect (spec §9 "Human-readable move
// rendering", supplemented from
// original_source/ludobackendc/mcts.py's select_next_move name
// mapping).
type HumanStep struct {
	Pawn string
	From string
	To   string
}

// HumanMove renders every step of m via state.PawnName/PositionName,
// joining block-step pawn ids with "+".
func HumanMove(m state.Move) []HumanStep {
	steps := m.Steps()
	out := make([]HumanStep, 0, len(steps))
	for _, s := range steps {
		pawns := s.Pawns.Pawns()
		names := make([]string, len(pawns))
		for i, p := range pawns {
			names[i] = state.PawnName(p)
		}
		out = append(out, HumanStep{
			Pawn: strings.Join(names, "+"),
			From: state.PositionName(s.From),
			To:   state.PositionName(s.To),
		})
	}
	return out
}
