package service

import (
	"context"
	"sync"

	"github.com/joshdurbin/linktrack/internal/worker"
)

// inlineDispatcher runs tasks synchronously and remembers their outcome
type inlineDispatcher struct {
	mu     sync.Mutex
	names  []string
	errors []error
}

func (d *inlineDispatcher) Submit(name string, fn worker.Task) bool {
	err := fn(context.Background())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	d.errors = append(d.errors, err)
	return true
}

// rejectingDispatcher drops every task, like a saturated pool
type rejectingDispatcher struct {
	dropped []string
}

func (d *rejectingDispatcher) Submit(name string, fn worker.Task) bool {
	d.dropped = append(d.dropped, name)
	return false
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
