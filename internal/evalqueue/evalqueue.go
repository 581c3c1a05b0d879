// Package evalqueue implements the bounded, cross-thread position
// evaluation queue (spec §4.12): search threads publish leaf states and
// spin-wait on a per-slot flag; a dedicated evaluator goroutine drains
// pending slots in batches and scores them through a netvalue.Evaluator.
//
// Grounded on original_source/ludobackendc/mcts.py's EQ/add_to_eq/
// get_elems_pending/set_elems_result: a ring buffer with a single
// insertion lock guarding `rear`, and a `pending` flag per slot that the
// producer sets and the evaluator clears. The Go translation swaps the
// C struct's bare bool for atomic.Bool so the happens-before relation
// ("result visible before pending := false", spec §5) is expressed with
// the language's memory model instead of a busy volatile read.
package evalqueue

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ludomcts/selfplay/internal/ludo/state"
	"github.com/ludomcts/selfplay/internal/ludo/tensor"
	"github.com/ludomcts/selfplay/internal/netvalue"
)

// FullSentinel is returned by Submit when the queue has no free slot
// (spec §4.12, §7 "Queue full").
const FullSentinel = -1

type slot struct {
	state   *state.State
	pending atomic.Bool
	result  float32
}

// Queue is the bounded ring buffer of pending leaf evaluations.
type Queue struct {
	slots []slot
	front int
	rear  int

	mu   sync.Mutex // guards rear and slot publication (the "insertion lock")
	stop atomic.Bool

	log *log.Logger
}

// New creates a queue with the given ring length (spec's L).
func New(length int) *Queue {
	if length < 2 {
		length = 2
	}
	return &Queue{slots: make([]slot, length), log: log.Default()}
}

// SetLogger overrides the queue's logger (default log.Default()),
// following the teacher's convention of an optional *log.Logger on
// long-running components rather than a structured-logging library.
func (q *Queue) SetLogger(l *log.Logger) { q.log = l }

// Submit deep-copies s into a free slot and returns its index, or
// FullSentinel if the ring is full (spec §4.12 "Producer"). The copy
// belongs to the queue's slot; the caller keeps its own s.
func (q *Queue) Submit(s *state.State) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := (q.rear + 1) % len(q.slots)
	if next == q.front {
		return FullSentinel
	}
	idx := q.rear
	sl := &q.slots[idx]
	sl.state = s.Clone()
	sl.result = 0
	sl.pending.Store(true)
	q.rear = next
	return idx
}

// Await spin-waits (short sleep, spec §4.12 "Search thread") until the
// slot's result is ready, then returns it.
func (q *Queue) Await(idx int) float32 {
	sl := &q.slots[idx]
	for sl.pending.Load() {
		time.Sleep(100 * time.Microsecond)
	}
	return sl.result
}

// Drain scans [front, rear) collecting up to n slots still pending,
// encodes their states, batch-evaluates them through ev, writes back
// results, clears pending, and advances front past any now-contiguous
// cleared run (spec §4.12 "Consumer"). Returns the number of slots
// evaluated.
func (q *Queue) Drain(ev netvalue.Evaluator, n int) (int, error) {
	q.mu.Lock()
	front, rear := q.front, q.rear
	q.mu.Unlock()

	indices := make([]int, 0, n)
	batch := make([][]float32, 0, n)
	for i := front; i != rear && len(indices) < n; i = (i + 1) % len(q.slots) {
		sl := &q.slots[i]
		if !sl.pending.Load() {
			continue
		}
		indices = append(indices, i)
		batch = append(batch, netvalue.FlattenRows(tensor.Encode(sl.state)))
	}
	if len(indices) == 0 {
		return 0, nil
	}

	results, err := ev.Evaluate(batch)
	if err != nil {
		return 0, err
	}
	for k, idx := range indices {
		q.slots[idx].result = results[k]
		q.slots[idx].pending.Store(false)
	}

	q.mu.Lock()
	for q.front != q.rear && !q.slots[q.front].pending.Load() {
		q.front = (q.front + 1) % len(q.slots)
	}
	q.mu.Unlock()

	return len(indices), nil
}

// Stop requests the evaluator loop to exit after finishing its current
// batch (spec §4.12 "Shutdown").
func (q *Queue) Stop() { q.stop.Store(true) }

// Stopped reports whether Stop has been called.
func (q *Queue) Stopped() bool { return q.stop.Load() }

// Run drives the evaluator side: repeatedly drains up to batchSize
// pending slots through ev, sleeping briefly when nothing is pending,
// until Stop is called and one final drain empties the queue.
func (q *Queue) Run(ev netvalue.Evaluator, batchSize int) error {
	for {
		n, err := q.Drain(ev, batchSize)
		if err != nil {
			q.log.Printf("evalqueue: drain: %v", err)
			return err
		}
		if q.Stopped() {
			// Finish any stragglers published just before shutdown.
			for {
				n, err := q.Drain(ev, batchSize)
				if err != nil {
					q.log.Printf("evalqueue: drain during shutdown: %v", err)
					return err
				}
				if n == 0 {
					return nil
				}
			}
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}
