package repository

import (
	"context"
	"errors"
	"time"

	"github.com/joshdurbin/linktrack/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a uniqueness constraint rejects a write
	ErrDuplicate = errors.New("duplicate key")
)

// URLRepository defines the operations on short URL records. A "code" matches
// a record whose short_code or custom_alias equals it.
type URLRepository interface {
	// CreateURL inserts a record and returns it with store-assigned fields set
	CreateURL(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error)

	// FindByCode retrieves the record owning code
	FindByCode(ctx context.Context, code string) (*domain.ShortURL, error)

	// CodeExists reports whether any record owns code
	CodeExists(ctx context.Context, code string) (bool, error)

	// IncrementClickCount atomically adds one to click_count of the records owning code
	IncrementClickCount(ctx context.Context, code string) (int64, error)

	// ListURLs returns a page of records ordered by creation date (desc)
	ListURLs(ctx context.Context, offset, limit int) ([]*domain.ShortURL, error)

	// CountURLs returns the number of stored records
	CountURLs(ctx context.Context) (int64, error)

	// DeleteURLs removes the records owning code and returns how many were removed
	DeleteURLs(ctx context.Context, code string) (int64, error)
}

// ClickRepository defines the operations on click events
type ClickRepository interface {
	// CreateClick inserts a click event
	CreateClick(ctx context.Context, event *domain.ClickEvent) error

	// CountClicks returns the number of events for shortCode
	CountClicks(ctx context.Context, shortCode string) (int64, error)

	// CountUniqueVisitors returns the number of distinct IP addresses for shortCode
	CountUniqueVisitors(ctx context.Context, shortCode string) (int64, error)

	// ClickTimesSince returns the click times at or after since, oldest first
	ClickTimesSince(ctx context.Context, shortCode string, since time.Time) ([]time.Time, error)

	// UserAgents returns the user agent of every event in insertion order; absent values are empty
	UserAgents(ctx context.Context, shortCode string) ([]string, error)

	// RecentClicks returns the newest events, newest first
	RecentClicks(ctx context.Context, shortCode string, limit int) ([]*domain.ClickEvent, error)

	// DeleteClicks removes every event for shortCode
	DeleteClicks(ctx context.Context, shortCode string) (int64, error)
}

// Store is a durable backend holding both collections
type Store interface {
	URLRepository
	ClickRepository

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the repository connection
	Close() error
}
