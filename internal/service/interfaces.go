package service

import (
	"context"

	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/worker"
)

// Background task names, used as the task label in logs and metrics
const (
	TaskIncrementClick = "increment_click"
	TaskRecordClick    = "record_click"
)

// Resolver defines the link lifecycle operations
type Resolver interface {
	// CreateShortURL stores a new link under a custom alias or a generated code
	CreateShortURL(ctx context.Context, input domain.CreateURLInput) (*domain.ShortURL, error)

	// FindByShortCode returns the resolvable record owning code.
	// Unknown codes yield domain.ErrNotFound, expired ones domain.ErrExpired.
	FindByShortCode(ctx context.Context, code string) (*domain.ShortURL, error)

	// IncrementClickCount schedules a click count increment without waiting for it
	IncrementClickCount(code string)

	// ListURLs returns one page of records, newest first, and the total record count
	ListURLs(ctx context.Context, page, limit int) ([]*domain.ShortURL, int64, error)

	// DeleteURL removes the record owning code together with its click events
	DeleteURL(ctx context.Context, code string) (bool, error)
}

// Analytics defines click recording and reporting
type Analytics interface {
	// RecordClick schedules the insertion of a click event without waiting for it
	RecordClick(code, ipAddress, userAgent string)

	// GetAnalytics aggregates the click history of the record owning code
	GetAnalytics(ctx context.Context, code string) (*domain.AnalyticsReport, error)
}

// HealthChecker reports backend liveness
type HealthChecker interface {
	// Check pings the store and the cache. The bool is false when the store is down.
	Check(ctx context.Context) (domain.HealthStatus, bool)
}

// Dispatcher runs fire-and-forget tasks. Submit must not block.
type Dispatcher interface {
	Submit(name string, fn worker.Task) bool
}
