package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Cache is a mock implementation of cache.Cache
type Cache struct {
	mock.Mock
}

// Get retrieves a value by key
func (m *Cache) Get(ctx context.Context, key string) (string, bool) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1)
}

// Set stores a value
func (m *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

// Delete removes a value
func (m *Cache) Delete(ctx context.Context, key string) {
	m.Called(ctx, key)
}

// Ping checks the backend
func (m *Cache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the backend
func (m *Cache) Close() error {
	args := m.Called()
	return args.Error(0)
}
