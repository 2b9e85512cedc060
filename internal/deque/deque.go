// Package deque provides a growable ring-buffer FIFO used as the backing
// container for the multi-queue sub-queues and the shadow order trace.
package deque

// Deque is an unbounded FIFO over a ring buffer whose capacity is always a
// power of 2, so positions wrap with a mask instead of a modulo.
type Deque[T any] struct {
	buffer []T
	mask   uint64
	head   uint64
	tail   uint64
}

// New creates a Deque with at least the given initial capacity
// (rounded up to a power of 2).
func New[T any](capacity uint64) *Deque[T] {
	if capacity < 1 {
		capacity = 1
	}
	if capacity&(capacity-1) != 0 {
		capPow := uint64(1)
		for capPow < capacity {
			capPow <<= 1
		}
		capacity = capPow
	}
	return &Deque[T]{
		buffer: make([]T, capacity),
		mask:   capacity - 1,
	}
}

// PushBack appends a value, growing the ring buffer when it is full.
func (d *Deque[T]) PushBack(val T) {
	if d.tail-d.head == uint64(len(d.buffer)) {
		d.grow()
	}
	d.buffer[d.tail&d.mask] = val
	d.tail++
}

// PopFront removes and returns the oldest value.
// Returns an empty T and false when the deque is empty.
func (d *Deque[T]) PopFront() (T, bool) {
	if d.head == d.tail {
		var zero T
		return zero, false
	}
	slot := &d.buffer[d.head&d.mask]
	val := *slot
	// Zero the vacated slot so stored pointers do not outlive the element.
	var zero T
	*slot = zero
	d.head++
	return val, true
}

// Front returns the oldest value without removing it.
func (d *Deque[T]) Front() (T, bool) {
	if d.head == d.tail {
		var zero T
		return zero, false
	}
	return d.buffer[d.head&d.mask], true
}

// Len returns the number of stored values.
func (d *Deque[T]) Len() int {
	return int(d.tail - d.head)
}

// Empty reports whether no values are stored.
func (d *Deque[T]) Empty() bool {
	return d.head == d.tail
}

// grow doubles the buffer and rewrites the stored values in FIFO order so
// head/tail positions restart from zero.
func (d *Deque[T]) grow() {
	next := make([]T, len(d.buffer)*2)
	n := d.tail - d.head
	for i := uint64(0); i < n; i++ {
		next[i] = d.buffer[(d.head+i)&d.mask]
	}
	d.buffer = next
	d.mask = uint64(len(next)) - 1
	d.head = 0
	d.tail = n
}
