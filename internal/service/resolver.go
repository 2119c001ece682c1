package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/cache"
	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/expiry"
	"github.com/joshdurbin/linktrack/internal/metrics"
	"github.com/joshdurbin/linktrack/internal/repository"
	"github.com/joshdurbin/linktrack/internal/shortener"
)

// MaxGenerationAttempts bounds the collision retry loop for generated codes
const MaxGenerationAttempts = 5

// ResolverConfig holds cache lifetimes used by the resolver
type ResolverConfig struct {
	// LinkCacheTTL is the cache lifetime after creating a link without expiry
	LinkCacheTTL time.Duration
	// RefreshCacheTTL is the cache lifetime after a store-confirmed lookup
	RefreshCacheTTL time.Duration
}

// DefaultResolverConfig returns the resolver defaults
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		LinkCacheTTL:    365 * 24 * time.Hour,
		RefreshCacheTTL: 24 * time.Hour,
	}
}

// resolver implements Resolver
type resolver struct {
	repo       repository.Store
	cache      cache.Cache
	generator  shortener.Generator
	dispatcher Dispatcher
	config     ResolverConfig
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewResolver creates a new resolution service
func NewResolver(
	repo repository.Store,
	c cache.Cache,
	generator shortener.Generator,
	dispatcher Dispatcher,
	cfg ResolverConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) Resolver {
	return &resolver{
		repo:       repo,
		cache:      c,
		generator:  generator,
		dispatcher: dispatcher,
		config:     cfg,
		logger:     logger.Named("resolver"),
		metrics:    m,
		now:        time.Now,
	}
}

// CreateShortURL creates a new short URL
func (s *resolver) CreateShortURL(ctx context.Context, input domain.CreateURLInput) (*domain.ShortURL, error) {
	var (
		shortCode string
		kind      string
		err       error
	)

	if input.LongURL == "" {
		return nil, domain.NewValidationError("long_url", "is required")
	}
	if input.ExpiresInDays != nil && *input.ExpiresInDays <= 0 {
		return nil, domain.NewValidationError("expires_in_days", "must be a positive integer")
	}
	if input.ExpiresInDays != nil && *input.ExpiresInDays > domain.MaxExpiryDays {
		return nil, domain.NewValidationError("expires_in_days", fmt.Sprintf("must be at most %d", domain.MaxExpiryDays))
	}
	if input.CustomAlias != "" && domain.IsReservedCode(input.CustomAlias) {
		return nil, domain.NewValidationError("custom_alias", "is a reserved path")
	}

	if input.CustomAlias != "" {
		kind = metrics.KindAlias
		shortCode = input.CustomAlias

		taken, err := s.repo.CodeExists(ctx, shortCode)
		if err != nil {
			return nil, fmt.Errorf("failed to check alias: %w: %w", domain.ErrStoreUnavailable, err)
		}
		if taken {
			return nil, domain.ErrAliasConflict
		}
	} else {
		kind = metrics.KindGenerated
		shortCode, err = s.generateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	record := &domain.ShortURL{
		ShortCode: shortCode,
		LongURL:   input.LongURL,
		CreatedAt: now,
	}
	if input.CustomAlias != "" {
		alias := input.CustomAlias
		record.CustomAlias = &alias
	}
	if input.ExpiresInDays != nil {
		expiresAt := expiry.AddDays(now, *input.ExpiresInDays)
		record.ExpiresAt = &expiresAt
	}

	created, err := s.repo.CreateURL(ctx, record)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if kind == metrics.KindAlias {
				return nil, domain.ErrAliasConflict
			}
			return nil, domain.ErrCodeConflict
		}
		return nil, fmt.Errorf("failed to create URL: %w: %w", domain.ErrStoreUnavailable, err)
	}

	ttl := s.config.LinkCacheTTL
	if input.ExpiresInDays != nil {
		ttl = time.Duration(*input.ExpiresInDays) * 24 * time.Hour
	}
	s.cache.Set(ctx, cache.URLKey(created.ShortCode), created.LongURL, ttl)

	s.metrics.LinksCreated.WithLabelValues(kind).Inc()
	s.logger.Info("short url created",
		zap.String("short_code", created.ShortCode),
		zap.String("kind", kind))

	return created, nil
}

// generateUniqueCode draws candidates until one is unused by any record
func (s *resolver) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= MaxGenerationAttempts; attempt++ {
		code, err := s.generator.GenerateShortCode(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		if domain.IsReservedCode(code) {
			s.logger.Debug("generated code is reserved", zap.String("short_code", code), zap.Int("attempt", attempt))
			continue
		}

		taken, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w: %w", domain.ErrStoreUnavailable, err)
		}
		if !taken {
			return code, nil
		}

		s.logger.Debug("generated code collided", zap.String("short_code", code), zap.Int("attempt", attempt))
	}

	s.logger.Error("short code generation exhausted",
		zap.Int("attempts", MaxGenerationAttempts),
		zap.String("generator", s.generator.Type()))
	return "", domain.ErrGenerationExhausted
}

// FindByShortCode resolves code against the store, treating a cache hit as advisory
func (s *resolver) FindByShortCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	key := cache.URLKey(code)

	if _, hit := s.cache.Get(ctx, key); hit {
		s.logger.Debug("cache hit", zap.String("short_code", code))
	}

	url, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find URL: %w: %w", domain.ErrStoreUnavailable, err)
	}

	if expiry.IsExpiredAt(url.ExpiresAt, s.now()) {
		return nil, domain.ErrExpired
	}

	s.cache.Set(ctx, key, url.LongURL, s.config.RefreshCacheTTL)
	return url, nil
}

// IncrementClickCount dispatches the click count update to the background pool
func (s *resolver) IncrementClickCount(code string) {
	s.dispatcher.Submit(TaskIncrementClick, func(ctx context.Context) error {
		if _, err := s.repo.IncrementClickCount(ctx, code); err != nil {
			return fmt.Errorf("failed to increment click count for %s: %w", code, err)
		}
		return nil
	})
}

// ListURLs returns a page of records and the total count
func (s *resolver) ListURLs(ctx context.Context, page, limit int) ([]*domain.ShortURL, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	urls, err := s.repo.ListURLs(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list URLs: %w: %w", domain.ErrStoreUnavailable, err)
	}

	total, err := s.repo.CountURLs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count URLs: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return urls, total, nil
}

// DeleteURL removes click events, then the record, then the cache entry
func (s *resolver) DeleteURL(ctx context.Context, code string) (bool, error) {
	if _, err := s.repo.DeleteClicks(ctx, code); err != nil {
		return false, fmt.Errorf("failed to delete clicks: %w: %w", domain.ErrStoreUnavailable, err)
	}

	deleted, err := s.repo.DeleteURLs(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete URL: %w: %w", domain.ErrStoreUnavailable, err)
	}

	s.cache.Delete(ctx, cache.URLKey(code))

	if deleted > 0 {
		s.logger.Info("short url deleted", zap.String("short_code", code))
	}
	return deleted > 0, nil
}

// Ensure resolver implements Resolver interface
var _ Resolver = (*resolver)(nil)
