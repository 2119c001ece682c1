package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/cache"
	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/repository"
)

// DefaultPingTimeout bounds each backend probe
const DefaultPingTimeout = 2 * time.Second

type healthChecker struct {
	repo    repository.Store
	cache   cache.Cache
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewHealthChecker creates a checker probing repo and c
func NewHealthChecker(repo repository.Store, c cache.Cache, timeout time.Duration, logger *zap.Logger) HealthChecker {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	return &healthChecker{
		repo:    repo,
		cache:   c,
		timeout: timeout,
		logger:  logger.Named("health"),
		now:     time.Now,
	}
}

// Check pings both backends. A cache outage degrades the report but does not fail it.
func (h *healthChecker) Check(ctx context.Context) (domain.HealthStatus, bool) {
	status := domain.HealthStatus{
		Status:    domain.StatusOK,
		Timestamp: h.now().UTC(),
		Database:  domain.StatusConnected,
		Redis:     domain.StatusConnected,
	}

	if err := h.ping(ctx, h.cache.Ping); err != nil {
		h.logger.Debug("cache ping failed", zap.Error(err))
		status.Redis = domain.StatusDisconnected
	}

	if err := h.ping(ctx, h.repo.Ping); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		status.Status = domain.StatusError
		status.Database = domain.StatusDisconnected
		status.Error = err.Error()
		return status, false
	}

	return status, true
}

func (h *healthChecker) ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return fn(ctx)
}

var _ HealthChecker = (*healthChecker)(nil)
