package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/repository"
)

// uniqueViolation is the SQLSTATE raised by a unique index
const uniqueViolation = "23505"

// PoolConfig tunes the connection pool
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultPoolConfig returns the pool settings used by the server
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	}
}

// Repository implements repository.Store on PostgreSQL
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects a pool to databaseURL and verifies it with a ping.
// Schema changes are applied separately through Migrator.
func New(ctx context.Context, databaseURL string, poolCfg PoolConfig, logger *zap.Logger) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = poolCfg.MaxConns
	cfg.MinConns = poolCfg.MinConns
	cfg.MaxConnLifetime = poolCfg.MaxConnLifetime
	cfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewWithPool(pool, logger), nil
}

// NewWithPool wraps an existing pool
func NewWithPool(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{
		pool:   pool,
		logger: logger.Named("postgres"),
	}
}

const urlColumns = "id, short_code, long_url, custom_alias, created_at, expires_at, click_count"

// CreateURL inserts a new short URL record
func (r *Repository) CreateURL(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error) {
	createdAt := url.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO urls (short_code, long_url, custom_alias, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+urlColumns,
		url.ShortCode, url.LongURL, url.CustomAlias, createdAt.UTC(), url.ExpiresAt)

	created, err := scanURL(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create URL: %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}
	return created, nil
}

// FindByCode retrieves the record whose short_code or custom_alias equals code
func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+urlColumns+` FROM urls WHERE short_code = $1 OR custom_alias = $1 LIMIT 1`, code)

	url, err := scanURL(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get URL: %w", err)
	}
	return url, nil
}

// CodeExists reports whether code is taken as a short code or alias
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM urls WHERE short_code = $1 OR custom_alias = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return exists, nil
}

// IncrementClickCount adds one to click_count
func (r *Repository) IncrementClickCount(ctx context.Context, code string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1 OR custom_alias = $1`, code)
	if err != nil {
		return 0, fmt.Errorf("failed to increment click count: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListURLs returns a page of records, newest first
func (r *Repository) ListURLs(ctx context.Context, offset, limit int) ([]*domain.ShortURL, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+urlColumns+` FROM urls ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]*domain.ShortURL, 0, limit)
	for rows.Next() {
		url, err := scanURL(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// CountURLs returns the number of records
func (r *Repository) CountURLs(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM urls`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count URLs: %w", err)
	}
	return count, nil
}

// DeleteURLs removes the records owning code
func (r *Repository) DeleteURLs(ctx context.Context, code string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM urls WHERE short_code = $1 OR custom_alias = $1`, code)
	if err != nil {
		return 0, fmt.Errorf("failed to delete URL: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateClick inserts a click event
func (r *Repository) CreateClick(ctx context.Context, event *domain.ClickEvent) error {
	clickTime := event.ClickTime
	if clickTime.IsZero() {
		clickTime = time.Now()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO analytics (short_code, click_time, ip_address, user_agent) VALUES ($1, $2, $3, $4)`,
		event.ShortCode, clickTime.UTC(), event.IPAddress, event.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicks returns the number of events for shortCode
func (r *Repository) CountClicks(ctx context.Context, shortCode string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analytics WHERE short_code = $1`, shortCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// CountUniqueVisitors returns the number of distinct addresses for shortCode.
// Clicks without an address count as one visitor.
func (r *Repository) CountUniqueVisitors(ctx context.Context, shortCode string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT ip_address) + CASE WHEN COUNT(*) > COUNT(ip_address) THEN 1 ELSE 0 END
		 FROM analytics WHERE short_code = $1`, shortCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}
	return count, nil
}

// ClickTimesSince returns click times at or after since, oldest first
func (r *Repository) ClickTimesSince(ctx context.Context, shortCode string, since time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT click_time FROM analytics WHERE short_code = $1 AND click_time >= $2 ORDER BY click_time ASC`,
		shortCode, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query click times: %w", err)
	}

	times, err := pgx.CollectRows(rows, pgx.RowTo[time.Time])
	if err != nil {
		return nil, fmt.Errorf("failed to scan click time: %w", err)
	}
	for i := range times {
		times[i] = times[i].UTC()
	}
	return times, nil
}

// UserAgents returns the user agent of every event in insertion order
func (r *Repository) UserAgents(ctx context.Context, shortCode string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT COALESCE(user_agent, '') FROM analytics WHERE short_code = $1 ORDER BY id ASC`, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query user agents: %w", err)
	}

	agents, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan user agent: %w", err)
	}
	return agents, nil
}

// RecentClicks returns the newest events, newest first
func (r *Repository) RecentClicks(ctx context.Context, shortCode string, limit int) ([]*domain.ClickEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, short_code, click_time, ip_address, user_agent FROM analytics
		 WHERE short_code = $1 ORDER BY click_time DESC, id DESC LIMIT $2`, shortCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent clicks: %w", err)
	}
	defer rows.Close()

	var events []*domain.ClickEvent
	for rows.Next() {
		var event domain.ClickEvent
		if err := rows.Scan(&event.ID, &event.ShortCode, &event.ClickTime, &event.IPAddress, &event.UserAgent); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		event.ClickTime = event.ClickTime.UTC()
		events = append(events, &event)
	}
	return events, rows.Err()
}

// DeleteClicks removes every event for shortCode
func (r *Repository) DeleteClicks(ctx context.Context, shortCode string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM analytics WHERE short_code = $1`, shortCode)
	if err != nil {
		return 0, fmt.Errorf("failed to delete clicks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases every pooled connection
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func scanURL(row pgx.Row) (*domain.ShortURL, error) {
	var url domain.ShortURL
	if err := row.Scan(&url.ID, &url.ShortCode, &url.LongURL, &url.CustomAlias,
		&url.CreatedAt, &url.ExpiresAt, &url.ClickCount); err != nil {
		return nil, err
	}

	url.CreatedAt = url.CreatedAt.UTC()
	if url.ExpiresAt != nil {
		t := url.ExpiresAt.UTC()
		url.ExpiresAt = &t
	}
	return &url, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Ensure Repository implements the interface
var _ repository.Store = (*Repository)(nil)
