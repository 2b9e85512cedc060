package tagscan

import (
	"fmt"
	"math"

	"github.com/y-shindoh/multi-queue/internal/deque"
)

// unit is one stored element: the value plus the arrival tag assigned when it
// was enqueued. Tags are unique per live element, so the global-front scan
// never ties.
type unit[T any] struct {
	seq   uint64
	value T
}

// TagScanQueue is a fixed fan-in multi-queue that keeps global arrival order
// by tagging every value with a monotonically increasing sequence number.
// The merged front is found by a linear scan over the sub-queue fronts, so
// global Front/Dequeue cost O(K) while every per-sub-queue operation is O(1).
//
// Not safe for concurrent use; callers needing that must serialize access
// externally.
type TagScanQueue[T any] struct {
	queues []*deque.Deque[unit[T]]
	count  uint64 // next arrival tag; reset to 0 whenever the structure drains
	length int    // values stored across all sub-queues
}

// New creates a TagScanQueue with k empty sub-queues.
// It panics when k is not positive.
func New[T any](k int) *TagScanQueue[T] {
	if k <= 0 {
		panic(fmt.Sprintf("tagscan: sub-queue count %d is not positive", k))
	}
	queues := make([]*deque.Deque[unit[T]], k)
	for i := range queues {
		queues[i] = deque.New[unit[T]](8)
	}
	return &TagScanQueue[T]{queues: queues}
}

// checkIndex panics when i does not name a sub-queue. Out-of-range indexes
// are caller contract violations, the same class of bug as a slice index out
// of range.
func (q *TagScanQueue[T]) checkIndex(i int) {
	if i < 0 || i >= len(q.queues) {
		panic(fmt.Sprintf("tagscan: sub-queue index %d out of range [0,%d)", i, len(q.queues)))
	}
}

// findOldestFront scans the sub-queue fronts for the smallest arrival tag and
// returns the owning sub-queue index, or -1 when every sub-queue is empty.
func (q *TagScanQueue[T]) findOldestFront() int {
	k := -1
	var oldest uint64
	for i, sub := range q.queues {
		u, ok := sub.Front()
		if !ok {
			continue
		}
		if k >= 0 && oldest <= u.seq {
			continue
		}
		oldest = u.seq
		k = i
	}
	return k
}

// Len returns the number of values stored across all sub-queues.
func (q *TagScanQueue[T]) Len() int {
	return q.length
}

// LenAt returns the number of values in sub-queue i.
func (q *TagScanQueue[T]) LenAt(i int) int {
	q.checkIndex(i)
	return q.queues[i].Len()
}

// Empty reports whether no values are stored at all.
func (q *TagScanQueue[T]) Empty() bool {
	return q.length == 0
}

// EmptyAt reports whether sub-queue i holds no values.
func (q *TagScanQueue[T]) EmptyAt(i int) bool {
	q.checkIndex(i)
	return q.queues[i].Empty()
}

// Front returns the globally-oldest value without removing it.
// It panics when the structure is empty: an empty merged view has no front,
// and returning a zero T would hide the caller's bug.
func (q *TagScanQueue[T]) Front() T {
	if q.length == 0 {
		panic("tagscan: Front on empty multi-queue")
	}
	i := q.findOldestFront()
	u, _ := q.queues[i].Front()
	return u.value
}

// FrontAt returns the oldest value of sub-queue i without removing it.
// It panics when that sub-queue is empty.
func (q *TagScanQueue[T]) FrontAt(i int) T {
	q.checkIndex(i)
	u, ok := q.queues[i].Front()
	if !ok {
		panic(fmt.Sprintf("tagscan: FrontAt on empty sub-queue %d", i))
	}
	return u.value
}

// Enqueue appends val to sub-queue i, tagged after every value currently
// present. It reports false, leaving all state unchanged, only when the
// arrival counter would overflow its range.
func (q *TagScanQueue[T]) Enqueue(i int, val T) bool {
	q.checkIndex(i)
	if q.count == math.MaxUint64 {
		return false
	}
	q.queues[i].PushBack(unit[T]{seq: q.count, value: val})
	q.count++
	q.length++
	return true
}

// Dequeue removes the globally-oldest value. It does nothing when the
// structure is empty. Note the asymmetry with Front: removal of a value that
// does not exist is harmless, reading one is not.
func (q *TagScanQueue[T]) Dequeue() {
	if q.length == 0 {
		return
	}
	i := q.findOldestFront()
	q.queues[i].PopFront()
	q.length--
	q.maybeResetCount()
}

// DequeueAt removes the oldest value of sub-queue i. It does nothing when
// that sub-queue is empty.
func (q *TagScanQueue[T]) DequeueAt(i int) {
	q.checkIndex(i)
	if _, ok := q.queues[i].PopFront(); !ok {
		return
	}
	q.length--
	q.maybeResetCount()
}

// maybeResetCount restarts the arrival counter once the whole structure has
// drained. Safe only at that point: no live tag survives to be compared
// against a post-reset tag.
func (q *TagScanQueue[T]) maybeResetCount() {
	if q.length == 0 {
		q.count = 0
	}
}
