package testbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/y-shindoh/multi-queue/pkg/shadowtrace"
	"github.com/y-shindoh/multi-queue/pkg/tagscan"
)

func TestRunTimedTestConservesValues(t *testing.T) {
	cfg := Config{SubQueues: 4, DequeueAtRatio: 0.5}
	gen := func(i int) int { return i }

	t.Run("TagScan", func(t *testing.T) {
		q := tagscan.New[int](cfg.SubQueues)
		enqueued, dequeued, elapsed := RunTimedTest(q, cfg, 50*time.Millisecond, gen)

		require.Positive(t, enqueued)
		require.Equal(t, enqueued, dequeued, "every enqueued value must be drained")
		require.True(t, q.Empty())
		require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	})

	t.Run("ShadowTrace", func(t *testing.T) {
		q := shadowtrace.New[int](cfg.SubQueues)
		enqueued, dequeued, elapsed := RunTimedTest(q, cfg, 50*time.Millisecond, gen)

		require.Positive(t, enqueued)
		require.Equal(t, enqueued, dequeued)
		require.True(t, q.Empty())
		require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	})
}

func TestRunTimedTestSingleSubQueue(t *testing.T) {
	cfg := Config{SubQueues: 1, DequeueAtRatio: 1.0}
	q := shadowtrace.New[int](1)

	enqueued, dequeued, _ := RunTimedTest(q, cfg, 20*time.Millisecond, func(i int) int { return i })
	require.Equal(t, enqueued, dequeued)
	require.True(t, q.Empty())
}
