package cache

import (
	"context"
	"time"
)

// KeyPrefix namespaces short code entries in the shared keyspace
const KeyPrefix = "url:"

// URLKey returns the cache key for a short code
func URLKey(shortCode string) string {
	return KeyPrefix + shortCode
}

// Cache is a best-effort key/value store with TTL. Get, Set and Delete never
// report errors: an unavailable backend behaves like an empty cache.
type Cache interface {
	// Get returns the value stored under key, or false when absent or unreachable
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes key
	Delete(ctx context.Context, key string)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}
