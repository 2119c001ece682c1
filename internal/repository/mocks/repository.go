package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/repository"
)

// Store is a mock implementation of repository.Store
type Store struct {
	mock.Mock
}

// CreateURL inserts a record
func (m *Store) CreateURL(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortURL), args.Error(1)
}

// FindByCode retrieves the record owning code
func (m *Store) FindByCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortURL), args.Error(1)
}

// CodeExists reports whether any record owns code
func (m *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// IncrementClickCount adds one to click_count
func (m *Store) IncrementClickCount(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

// ListURLs returns a page of records
func (m *Store) ListURLs(ctx context.Context, offset, limit int) ([]*domain.ShortURL, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ShortURL), args.Error(1)
}

// CountURLs returns the number of records
func (m *Store) CountURLs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteURLs removes the records owning code
func (m *Store) DeleteURLs(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

// CreateClick inserts a click event
func (m *Store) CreateClick(ctx context.Context, event *domain.ClickEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// CountClicks returns the number of events for shortCode
func (m *Store) CountClicks(ctx context.Context, shortCode string) (int64, error) {
	args := m.Called(ctx, shortCode)
	return args.Get(0).(int64), args.Error(1)
}

// CountUniqueVisitors returns the number of distinct addresses for shortCode
func (m *Store) CountUniqueVisitors(ctx context.Context, shortCode string) (int64, error) {
	args := m.Called(ctx, shortCode)
	return args.Get(0).(int64), args.Error(1)
}

// ClickTimesSince returns the click times at or after since
func (m *Store) ClickTimesSince(ctx context.Context, shortCode string, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, shortCode, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// UserAgents returns the user agent of every event
func (m *Store) UserAgents(ctx context.Context, shortCode string) ([]string, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// RecentClicks returns the newest events
func (m *Store) RecentClicks(ctx context.Context, shortCode string, limit int) ([]*domain.ClickEvent, error) {
	args := m.Called(ctx, shortCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ClickEvent), args.Error(1)
}

// DeleteClicks removes every event for shortCode
func (m *Store) DeleteClicks(ctx context.Context, shortCode string) (int64, error) {
	args := m.Called(ctx, shortCode)
	return args.Get(0).(int64), args.Error(1)
}

// Ping checks that the backend is reachable
func (m *Store) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the repository connection
func (m *Store) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repository.Store = (*Store)(nil)
