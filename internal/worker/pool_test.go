package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joshdurbin/linktrack/internal/metrics"
)

func newTestPool(t *testing.T, cfg Config) (*Pool, *metrics.Metrics, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.New()
	return New(cfg, zap.New(core), m), m, logs
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool, m, _ := newTestPool(t, Config{Workers: 3, QueueSize: 10, TaskTimeout: time.Second})
	pool.Start()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		accepted := pool.Submit("count", func(ctx context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		})
		require.True(t, accepted)
	}
	wg.Wait()

	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, int32(10), count.Load())
	assert.Equal(t, float64(10), testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("count", metrics.ResultOK)))
}

func TestPool_TaskErrorIsLoggedAndCounted(t *testing.T) {
	pool, m, logs := newTestPool(t, Config{Workers: 1, QueueSize: 1, TaskTimeout: time.Second})
	pool.Start()

	pool.Submit("click", func(ctx context.Context) error {
		return errors.New("store down")
	})
	require.NoError(t, pool.Stop(context.Background()))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("click", metrics.ResultError)))
	entries := logs.FilterMessage("background task failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "click", entries[0].ContextMap()["task"])
}

func TestPool_PanicIsRecovered(t *testing.T) {
	pool, m, _ := newTestPool(t, Config{Workers: 1, QueueSize: 2, TaskTimeout: time.Second})
	pool.Start()

	pool.Submit("boom", func(ctx context.Context) error { panic("bad task") })
	ran := make(chan struct{})
	pool.Submit("after", func(ctx context.Context) error {
		close(ran)
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("boom", metrics.ResultError)))
}

func TestPool_SubmitDropsWhenQueueFull(t *testing.T) {
	pool, m, logs := newTestPool(t, Config{Workers: 1, QueueSize: 1, TaskTimeout: time.Second})

	// Not started, so the single slot fills and stays full.
	assert.True(t, pool.Submit("a", func(ctx context.Context) error { return nil }))
	assert.False(t, pool.Submit("b", func(ctx context.Context) error { return nil }))

	assert.Equal(t, 1, pool.Pending())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("b", metrics.ResultDropped)))
	assert.Equal(t, 1, logs.FilterMessage("background task dropped").Len())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool, m, _ := newTestPool(t, Config{Workers: 1, QueueSize: 4, TaskTimeout: time.Second})
	pool.Start()
	require.NoError(t, pool.Stop(context.Background()))

	assert.False(t, pool.Submit("late", func(ctx context.Context) error { return nil }))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("late", metrics.ResultDropped)))

	// Stop is idempotent
	assert.NoError(t, pool.Stop(context.Background()))
}

func TestPool_StopDrainsQueue(t *testing.T) {
	pool, _, _ := newTestPool(t, Config{Workers: 1, QueueSize: 5, TaskTimeout: time.Second})

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, pool.Submit("drain", func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	pool.Start()
	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, int32(5), count.Load())
}

func TestPool_StopTimesOut(t *testing.T) {
	pool, _, _ := newTestPool(t, Config{Workers: 1, QueueSize: 1, TaskTimeout: time.Second})
	pool.Start()

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	pool.Submit("slow", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Stop(ctx), ErrStopTimeout)
}

func TestPool_TaskContextIsDetachedWithTimeout(t *testing.T) {
	pool, _, _ := newTestPool(t, Config{Workers: 1, QueueSize: 1, TaskTimeout: 50 * time.Millisecond})
	pool.Start()

	result := make(chan error, 1)
	pool.Submit("deadline", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok || time.Until(deadline) > 50*time.Millisecond {
			result <- errors.New("missing task deadline")
			return nil
		}
		<-ctx.Done()
		result <- ctx.Err()
		return nil
	})

	assert.ErrorIs(t, <-result, context.DeadlineExceeded)
	require.NoError(t, pool.Stop(context.Background()))
}

func TestNew_NormalizesConfig(t *testing.T) {
	pool := New(Config{Workers: 0, QueueSize: -1}, zap.NewNop(), metrics.New())
	assert.Equal(t, 1, pool.config.Workers)
	assert.Equal(t, 0, pool.config.QueueSize)
	assert.Equal(t, 5*time.Second, pool.config.TaskTimeout)
}
