package shadowtrace

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveFanIn(t *testing.T) {
	require.Panics(t, func() { New[int](0) })
	require.Panics(t, func() { New[int](-1) })
}

func TestIndexOutOfRangePanics(t *testing.T) {
	q := New[int](2)

	require.Panics(t, func() { q.LenAt(2) })
	require.Panics(t, func() { q.EmptyAt(-1) })
	require.Panics(t, func() { q.FrontAt(2) })
	require.Panics(t, func() { q.Enqueue(-1, 0) })
	require.Panics(t, func() { q.DequeueAt(2) })
}

func TestFrontOnEmptyPanics(t *testing.T) {
	q := New[int](2)

	require.Panics(t, func() { q.Front() })
	require.Panics(t, func() { q.FrontAt(0) })

	// The matching pop-style calls are documented no-ops, not panics.
	require.NotPanics(t, func() { q.Dequeue() })
	require.NotPanics(t, func() { q.DequeueAt(0) })
	require.True(t, q.Empty())
}

func TestGlobalOrderAcrossSubQueues(t *testing.T) {
	q := New[int](3)

	routes := []int{2, 0, 1, 0, 2, 1, 1, 0, 2, 2}
	for v, sub := range routes {
		require.True(t, q.Enqueue(sub, v))
	}
	for want := 0; want < len(routes); want++ {
		require.Equal(t, want, q.Front())
		q.Dequeue()
	}
	require.True(t, q.Empty())
}

// staleEntries counts trace entries whose value was already removed.
func (q *ShadowTraceQueue[T]) staleEntries() int {
	return q.trace.Len() - q.length
}

func pendingSum[T any](q *ShadowTraceQueue[T]) int {
	sum := 0
	for _, p := range q.pending {
		sum += p
	}
	return sum
}

// TestDeferredRemovalBookkeeping walks the owed-removal accounting through a
// hand-picked interleaving: the pending counts must always equal the number
// of stale entries physically left in the trace.
func TestDeferredRemovalBookkeeping(t *testing.T) {
	q := New[string](2)

	q.Enqueue(0, "a") // trace: 0
	q.Enqueue(1, "b") // trace: 0 1
	q.Enqueue(0, "c") // trace: 0 1 0

	// "b" is not the global front: its removal is owed, not purged.
	q.DequeueAt(1)
	require.Equal(t, 1, q.pending[1])
	require.Equal(t, 1, q.staleEntries())

	// "a" is the global front: purged immediately, and the purge exposes the
	// stale entry for "b", which must go with it.
	q.DequeueAt(0)
	require.Equal(t, 0, q.pending[1])
	require.Equal(t, 0, q.staleEntries())

	require.Equal(t, "c", q.Front())
	q.Dequeue()
	require.True(t, q.Empty())
	require.True(t, q.trace.Empty())
}

// TestOwedRemovalInvariantRandomized drives a random interleaving of all
// mutating operations and checks after every step that the pending counts sum
// to exactly the stale entries still in the trace, and that the live counts
// agree between views.
func TestOwedRemovalInvariantRandomized(t *testing.T) {
	const k = 4
	rng := rand.New(rand.NewSource(42))
	q := New[int](k)

	next := 0
	for step := 0; step < 5000; step++ {
		switch rng.Intn(3) {
		case 0:
			q.Enqueue(rng.Intn(k), next)
			next++
		case 1:
			q.Dequeue()
		default:
			q.DequeueAt(rng.Intn(k))
		}

		require.Equal(t, q.staleEntries(), pendingSum(q),
			"step %d: pending counts out of sync with stale trace entries", step)

		total := 0
		for i := 0; i < k; i++ {
			total += q.LenAt(i)
		}
		require.Equal(t, q.Len(), total, "step %d: fan-in count drift", step)
	}
}

// TestFrontCompactsStaleEntries makes sure a read-only Front can see through
// a pile of stale entries at the trace front.
func TestFrontCompactsStaleEntries(t *testing.T) {
	q := New[int](2)

	// Arrivals: 7 to sub-queue 1, then 0..2 to sub-queue 0, then 8 to
	// sub-queue 1. Removing 0..2 through the per-sub-queue interface while 7
	// is still the global front leaves their trace entries stale in place.
	q.Enqueue(1, 7)
	for i := 0; i < 3; i++ {
		q.Enqueue(0, i)
	}
	q.Enqueue(1, 8)
	for i := 0; i < 3; i++ {
		q.DequeueAt(0)
	}
	require.Equal(t, 3, pendingSum(q))

	// Removing 7 moves the stale entries to the trace front; the next Front
	// must purge all three before it can name 8.
	q.Dequeue()
	require.Equal(t, 8, q.Front())
	require.Equal(t, 0, pendingSum(q))
	require.Equal(t, 1, q.Len())
	q.Dequeue()
	require.True(t, q.Empty())
}
