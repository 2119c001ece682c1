package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joshdurbin/linktrack/internal/cache"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache implements cache.Cache using in-process storage with per-entry TTL
type Cache struct {
	data     map[string]entry
	mutex    sync.RWMutex
	stopChan chan struct{}
	running  bool
	now      func() time.Time
}

// New creates a new in-memory cache
func New() *Cache {
	return &Cache{
		data:     make(map[string]entry),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Get retrieves a live entry
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.data[key]
	if !exists || e.expired(c.now()) {
		return "", false
	}
	return e.value, true
}

// Set stores an entry
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.data[key] = e
}

// Delete removes an entry
func (c *Cache) Delete(ctx context.Context, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
}

// Ping always succeeds
func (c *Cache) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// StartJanitor removes expired entries every interval until Close
func (c *Cache) StartJanitor(interval time.Duration) {
	c.mutex.Lock()
	if c.running {
		c.mutex.Unlock()
		return
	}
	c.running = true
	stopChan := c.stopChan
	c.mutex.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-stopChan:
				return
			}
		}
	}()
}

// sweep drops expired entries
func (c *Cache) sweep() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, e := range c.data {
		if e.expired(now) {
			delete(c.data, key)
		}
	}
}

// Close stops the janitor
func (c *Cache) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.running {
		return nil
	}

	c.running = false
	close(c.stopChan)

	// Create new channel for potential restart
	c.stopChan = make(chan struct{})
	return nil
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)
