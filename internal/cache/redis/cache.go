package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/cache"
	"github.com/joshdurbin/linktrack/internal/metrics"
)

// Cache implements cache.Cache on top of Redis. Every backend failure is
// logged, counted and turned into a miss or a no-op.
type Cache struct {
	client  goredis.UniversalClient
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New wraps an existing Redis client
func New(client goredis.UniversalClient, logger *zap.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		logger:  logger.Named("cache"),
		metrics: m,
	}
}

// Connect builds a client from a redis:// URL and probes it once. A failed
// probe is logged and the cache is returned anyway; the client reconnects on
// later calls. Only a malformed URL is an error.
func Connect(ctx context.Context, url string, logger *zap.Logger, m *metrics.Metrics) (*Cache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10

	c := New(goredis.NewClient(opts), logger, m)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		c.logger.Warn("redis unavailable at startup, continuing without cache",
			zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		c.logger.Info("redis connected", zap.String("addr", opts.Addr))
	}

	return c, nil
}

// Get returns the value stored under key
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		c.observe("get", metrics.ResultMiss)
		return "", false
	case err != nil:
		c.fail("get", key, err)
		return "", false
	}

	c.observe("get", metrics.ResultHit)
	return value, true
}

// Set stores value under key with the given ttl
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.fail("set", key, err)
		return
	}
	c.observe("set", metrics.ResultOK)
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.fail("del", key, err)
		return
	}
	c.observe("del", metrics.ResultOK)
}

// Ping checks connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) fail(op, key string, err error) {
	c.observe(op, metrics.ResultError)
	c.logger.Warn("cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
}

func (c *Cache) observe(op, result string) {
	c.metrics.CacheOperations.WithLabelValues(op, result).Inc()
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)
