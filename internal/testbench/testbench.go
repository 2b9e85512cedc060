package testbench

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/y-shindoh/multi-queue/internal/queue"
)

// Config describes the workload shape: how many sub-queues the structure was
// built with and what fraction of removals go through the per-sub-queue
// interface instead of the merged view.
type Config struct {
	SubQueues      int
	DequeueAtRatio float64
}

// RunTimedTest drives a multi-queue with an interleaved workload for the
// given duration, then drains it through the merged view. Enqueues are
// routed round-robin across the sub-queues; every other step removes a value,
// split between DequeueAt and global Dequeue per the configured ratio. The
// structure is single-threaded, so the whole workload runs on one goroutine;
// a watcher goroutine only flips the stop flag when the deadline passes.
// Returns the values enqueued, the values dequeued, and the elapsed time.
func RunTimedTest[T any, Q queue.MultiQueueValidationInterface[T]](
	q Q,
	cfg Config,
	testDuration time.Duration,
	valueGenerator func(int) T,
) (enqueued int64, dequeued int64, elapsed time.Duration) {

	ctx, cancel := context.WithTimeout(context.Background(), testDuration)
	defer cancel()

	var done int32
	go func() {
		<-ctx.Done()
		atomic.StoreInt32(&done, 1)
	}()

	// Fixed seed so every implementation sees the same removal pattern.
	rng := rand.New(rand.NewSource(1))

	start := time.Now()
	var produced, consumed int64
	step := 0

	for atomic.LoadInt32(&done) == 0 {
		if q.Enqueue(step%cfg.SubQueues, valueGenerator(step)) {
			produced++
		}
		step++

		// Remove on every other step so the backlog stays shallow and the
		// workload exercises removal as much as insertion.
		if step%2 != 0 || q.Empty() {
			continue
		}
		if rng.Float64() < cfg.DequeueAtRatio {
			// Pick a non-empty sub-queue, starting from a rotating index.
			idx := step % cfg.SubQueues
			for q.EmptyAt(idx) {
				idx = (idx + 1) % cfg.SubQueues
			}
			q.DequeueAt(idx)
		} else {
			q.Dequeue()
		}
		consumed++
	}

	// Drain the backlog through the merged view.
	for !q.Empty() {
		q.Dequeue()
		consumed++
	}

	elapsed = time.Since(start)
	return produced, consumed, elapsed
}
