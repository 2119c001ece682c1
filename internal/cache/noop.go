package cache

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned by Noop.Ping
var ErrDisabled = errors.New("cache disabled")

// Noop is the cache used when no backend is configured
type Noop struct{}

// Get always misses
func (Noop) Get(ctx context.Context, key string) (string, bool) { return "", false }

// Set discards the value
func (Noop) Set(ctx context.Context, key, value string, ttl time.Duration) {}

// Delete does nothing
func (Noop) Delete(ctx context.Context, key string) {}

// Ping always reports the cache as unavailable
func (Noop) Ping(ctx context.Context) error { return ErrDisabled }

// Close does nothing
func (Noop) Close() error { return nil }

var _ Cache = Noop{}
