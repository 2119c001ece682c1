// Package worker runs fire-and-forget tasks on a bounded pool of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/metrics"
)

// ErrStopTimeout is returned by Stop when queued tasks outlive the context
var ErrStopTimeout = errors.New("worker pool stopped before draining")

// Task is a unit of background work
type Task func(ctx context.Context) error

// Config holds pool sizing
type Config struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// DefaultConfig returns the pool sizing used by the server
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		QueueSize:   1024,
		TaskTimeout: 5 * time.Second,
	}
}

type job struct {
	name string
	fn   Task
}

// Pool executes submitted tasks in the background. Submit never blocks the
// caller and task failures are only logged and counted.
type Pool struct {
	config  Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// New creates a pool; Start must be called before tasks run
func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultConfig().TaskTimeout
	}

	return &Pool{
		config:  cfg,
		logger:  logger.Named("worker"),
		metrics: m,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.config.Workers),
		zap.Int("queue_size", p.config.QueueSize))
}

// Submit enqueues fn under name and reports whether it was accepted.
// A full queue or a stopped pool drops the task.
func (p *Pool) Submit(name string, fn Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.drop(name, "pool stopped")
		return false
	}

	select {
	case p.jobs <- job{name: name, fn: fn}:
		return true
	default:
		p.drop(name, "queue full")
		return false
	}
}

// Stop closes intake and waits for queued tasks to finish or ctx to expire
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool drained")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool stop timed out", zap.Int("pending", len(p.jobs)))
		return ErrStopTimeout
	}
}

// Pending returns the number of queued tasks
func (p *Pool) Pending() int {
	return len(p.jobs)
}

func (p *Pool) run() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.execute(j)
	}
}

func (p *Pool) execute(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background task panicked", zap.String("task", j.name), zap.Any("panic", r))
			p.metrics.BackgroundTasks.WithLabelValues(j.name, metrics.ResultError).Inc()
		}
	}()

	if err := j.fn(ctx); err != nil {
		p.logger.Error("background task failed", zap.String("task", j.name), zap.Error(err))
		p.metrics.BackgroundTasks.WithLabelValues(j.name, metrics.ResultError).Inc()
		return
	}
	p.metrics.BackgroundTasks.WithLabelValues(j.name, metrics.ResultOK).Inc()
}

func (p *Pool) drop(name, reason string) {
	p.logger.Warn("background task dropped", zap.String("task", name), zap.String("reason", reason))
	p.metrics.BackgroundTasks.WithLabelValues(name, metrics.ResultDropped).Inc()
}
