package queue

// MultiQueueValidationInterface is a *type constraint* that ensures any type Q
// has these methods. We never store Q in a runtime interface here; the
// constraint only validates signatures at compile time where implementations
// are exercised (see internal/testbench).
type MultiQueueValidationInterface[T any] interface {
	// Len returns how many values are currently stored across all sub-queues.
	Len() int

	// LenAt returns how many values sub-queue i currently holds.
	LenAt(i int) int

	// Empty reports whether the whole structure holds no values.
	Empty() bool

	// EmptyAt reports whether sub-queue i holds no values.
	EmptyAt(i int) bool

	// Front returns the globally-oldest value. It must panic when the
	// structure is empty.
	Front() T

	// FrontAt returns the oldest value of sub-queue i. It must panic when
	// that sub-queue is empty.
	FrontAt(i int) T

	// Enqueue appends a value to sub-queue i, ordered after every value
	// currently present. It reports false only when the implementation
	// cannot record another arrival (tag exhaustion), leaving state
	// unchanged.
	Enqueue(i int, val T) bool

	// Dequeue removes the globally-oldest value, or does nothing when the
	// structure is empty.
	Dequeue()

	// DequeueAt removes the oldest value of sub-queue i, or does nothing
	// when that sub-queue is empty.
	DequeueAt(i int)
}
