package shadowtrace

import (
	"fmt"

	"github.com/y-shindoh/multi-queue/internal/deque"
)

// ShadowTraceQueue is a fixed fan-in multi-queue that keeps global arrival
// order in a shadow trace: an auxiliary FIFO of sub-queue indexes, one entry
// per enqueue, carrying no values. A per-sub-queue dequeue that is not the
// current global front cannot cheaply locate its trace entry, so the removal
// is recorded as owed in pending[i] and the stale entry is purged lazily when
// it surfaces at the trace front. Global and per-sub-queue operations are all
// amortized O(1), and no arrival counter exists that could overflow.
//
// Invariant kept across every operation: the trace, read front to back while
// skipping entries owed to pending, names the sub-queues of the live values
// in arrival order, and the pending counts sum to exactly the number of stale
// entries still in the trace.
//
// Not safe for concurrent use; callers needing that must serialize access
// externally.
type ShadowTraceQueue[T any] struct {
	queues  []*deque.Deque[T]
	trace   *deque.Deque[int]
	pending []int // owed removals per sub-queue, not yet purged from trace
	length  int   // values stored across all sub-queues
}

// New creates a ShadowTraceQueue with k empty sub-queues.
// It panics when k is not positive.
func New[T any](k int) *ShadowTraceQueue[T] {
	if k <= 0 {
		panic(fmt.Sprintf("shadowtrace: sub-queue count %d is not positive", k))
	}
	queues := make([]*deque.Deque[T], k)
	for i := range queues {
		queues[i] = deque.New[T](8)
	}
	return &ShadowTraceQueue[T]{
		queues:  queues,
		trace:   deque.New[int](16),
		pending: make([]int, k),
	}
}

func (q *ShadowTraceQueue[T]) checkIndex(i int) {
	if i < 0 || i >= len(q.queues) {
		panic(fmt.Sprintf("shadowtrace: sub-queue index %d out of range [0,%d)", i, len(q.queues)))
	}
}

// compact pops stale entries off the trace front until the front entry names
// a sub-queue with no owed removals. After compact, the trace front (if any)
// names the sub-queue holding the true global front. Each stale entry is
// popped exactly once over the structure's lifetime, which is what keeps the
// deferred scheme amortized O(1).
func (q *ShadowTraceQueue[T]) compact() {
	for {
		i, ok := q.trace.Front()
		if !ok || q.pending[i] == 0 {
			return
		}
		q.trace.PopFront()
		q.pending[i]--
	}
}

// Len returns the number of values stored across all sub-queues.
func (q *ShadowTraceQueue[T]) Len() int {
	return q.length
}

// LenAt returns the number of values in sub-queue i.
func (q *ShadowTraceQueue[T]) LenAt(i int) int {
	q.checkIndex(i)
	return q.queues[i].Len()
}

// Empty reports whether no values are stored at all.
func (q *ShadowTraceQueue[T]) Empty() bool {
	return q.length == 0
}

// EmptyAt reports whether sub-queue i holds no values.
func (q *ShadowTraceQueue[T]) EmptyAt(i int) bool {
	q.checkIndex(i)
	return q.queues[i].Empty()
}

// Front returns the globally-oldest value without removing it.
// It panics when the structure is empty. Finding the true front may require
// purging stale trace entries, so Front performs the same compaction a
// Dequeue would; the receiver mutates internally but the observable state
// does not change.
func (q *ShadowTraceQueue[T]) Front() T {
	if q.length == 0 {
		panic("shadowtrace: Front on empty multi-queue")
	}
	q.compact()
	i, _ := q.trace.Front()
	val, _ := q.queues[i].Front()
	return val
}

// FrontAt returns the oldest value of sub-queue i without removing it.
// It panics when that sub-queue is empty.
func (q *ShadowTraceQueue[T]) FrontAt(i int) T {
	q.checkIndex(i)
	val, ok := q.queues[i].Front()
	if !ok {
		panic(fmt.Sprintf("shadowtrace: FrontAt on empty sub-queue %d", i))
	}
	return val
}

// Enqueue appends val to sub-queue i and records its arrival in the trace.
// It always reports true: the trace stores no per-value tag, so there is no
// counter to exhaust.
func (q *ShadowTraceQueue[T]) Enqueue(i int, val T) bool {
	q.checkIndex(i)
	q.queues[i].PushBack(val)
	q.trace.PushBack(i)
	q.length++
	return true
}

// Dequeue removes the globally-oldest value. It does nothing when the
// structure is empty.
func (q *ShadowTraceQueue[T]) Dequeue() {
	if q.length == 0 {
		return
	}
	q.compact()
	i, _ := q.trace.Front()
	q.trace.PopFront()
	q.queues[i].PopFront()
	q.length--
}

// DequeueAt removes the oldest value of sub-queue i. It does nothing when
// that sub-queue is empty.
//
// When the removed value is also the current global front, its trace entry is
// purged immediately, together with any stale entries that purge exposes.
// Otherwise the trace entry sits somewhere in the middle of the trace; the
// removal is recorded in pending[i] and the entry is skipped when it
// eventually reaches the front.
func (q *ShadowTraceQueue[T]) DequeueAt(i int) {
	q.checkIndex(i)
	if _, ok := q.queues[i].PopFront(); !ok {
		return
	}
	q.length--
	q.compact()
	if front, ok := q.trace.Front(); ok && front == i {
		q.trace.PopFront()
		q.compact()
	} else {
		q.pending[i]++
	}
}
