package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/linktrack/internal/domain"
)

// Resolver is a mock implementation of service.Resolver
type Resolver struct {
	mock.Mock
}

// CreateShortURL creates a new short URL
func (m *Resolver) CreateShortURL(ctx context.Context, input domain.CreateURLInput) (*domain.ShortURL, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortURL), args.Error(1)
}

// FindByShortCode resolves a code
func (m *Resolver) FindByShortCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortURL), args.Error(1)
}

// IncrementClickCount schedules a click count increment
func (m *Resolver) IncrementClickCount(code string) {
	m.Called(code)
}

// ListURLs returns a page of records
func (m *Resolver) ListURLs(ctx context.Context, page, limit int) ([]*domain.ShortURL, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ShortURL), args.Get(1).(int64), args.Error(2)
}

// DeleteURL removes a short URL
func (m *Resolver) DeleteURL(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// Analytics is a mock implementation of service.Analytics
type Analytics struct {
	mock.Mock
}

// RecordClick schedules a click event insert
func (m *Analytics) RecordClick(code, ipAddress, userAgent string) {
	m.Called(code, ipAddress, userAgent)
}

// GetAnalytics builds a click report
func (m *Analytics) GetAnalytics(ctx context.Context, code string) (*domain.AnalyticsReport, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsReport), args.Error(1)
}

// HealthChecker is a mock implementation of service.HealthChecker
type HealthChecker struct {
	mock.Mock
}

// Check reports backend liveness
func (m *HealthChecker) Check(ctx context.Context) (domain.HealthStatus, bool) {
	args := m.Called(ctx)
	return args.Get(0).(domain.HealthStatus), args.Bool(1)
}
