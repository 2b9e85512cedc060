// Package multiqueue offers a fixed number of independent FIFO sub-queues
// that can also be read and drained as one merged FIFO in true global
// arrival order. Two interchangeable bookkeeping strategies are provided:
// a tagged linear scan (pkg/tagscan) and a shadow trace with deferred
// compaction (pkg/shadowtrace).
package multiqueue

import (
	"fmt"

	"github.com/y-shindoh/multi-queue/pkg/shadowtrace"
	"github.com/y-shindoh/multi-queue/pkg/tagscan"
)

// Queue is the runtime interface shared by both strategies.
//
// A note on empty views: Front and FrontAt treat an empty view as a caller
// contract violation and panic, while Dequeue and DequeueAt on an empty view
// are documented no-ops. The asymmetry is deliberate and part of the
// contract; check Empty/EmptyAt before reading a front.
type Queue[T any] interface {
	// Len returns the number of values stored across all sub-queues.
	Len() int
	// LenAt returns the number of values in sub-queue i.
	LenAt(i int) int
	// Empty reports whether no values are stored at all.
	Empty() bool
	// EmptyAt reports whether sub-queue i holds no values.
	EmptyAt(i int) bool
	// Front returns the globally-oldest value. Panics when empty.
	Front() T
	// FrontAt returns the oldest value of sub-queue i. Panics when that
	// sub-queue is empty.
	FrontAt(i int) T
	// Enqueue appends val to sub-queue i, ordered after every value
	// currently present. False only when the strategy cannot record
	// another arrival (TagScan counter exhaustion); state is unchanged
	// on failure.
	Enqueue(i int, val T) bool
	// Dequeue removes the globally-oldest value. No-op when empty.
	Dequeue()
	// DequeueAt removes the oldest value of sub-queue i. No-op when that
	// sub-queue is empty.
	DequeueAt(i int)
}

// Both strategies must satisfy the runtime interface.
var (
	_ Queue[int] = (*tagscan.TagScanQueue[int])(nil)
	_ Queue[int] = (*shadowtrace.ShadowTraceQueue[int])(nil)
)

// Strategy selects the internal bookkeeping algorithm.
type Strategy int

const (
	// TagScan tags every value with an arrival sequence number and finds
	// the merged front by scanning the K sub-queue fronts. Global
	// Front/Dequeue cost O(K); the arrival counter can in principle be
	// exhausted, which Enqueue reports.
	TagScan Strategy = iota

	// ShadowTrace records arrival order in an auxiliary queue of
	// sub-queue indexes and lazily purges entries invalidated by
	// per-sub-queue dequeues. All operations are amortized O(1) and
	// Enqueue cannot fail.
	ShadowTrace
)

// String returns the strategy name as used by the bench registry.
func (s Strategy) String() string {
	switch s {
	case TagScan:
		return "TagScan"
	case ShadowTrace:
		return "ShadowTrace"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// New creates a multi-queue with k sub-queues using the given strategy.
// It panics when k is not positive or the strategy is unknown.
func New[T any](k int, s Strategy) Queue[T] {
	switch s {
	case TagScan:
		return tagscan.New[T](k)
	case ShadowTrace:
		return shadowtrace.New[T](k)
	default:
		panic(fmt.Sprintf("multiqueue: unknown strategy %d", int(s)))
	}
}
