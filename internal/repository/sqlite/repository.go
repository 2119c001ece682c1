package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/repository"
)

// Repository implements repository.Store using SQLite
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (creating if needed) the SQLite database at databasePath and
// applies pending migrations
func New(databasePath string, logger *zap.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn(databasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{
		db:     db,
		logger: logger.Named("sqlite"),
	}

	if err := repo.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// dsn enables foreign keys, WAL and a busy timeout on every pooled connection
func dsn(databasePath string) string {
	sep := "?"
	if strings.Contains(databasePath, "?") {
		sep = "&"
	}
	return databasePath + sep + "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

const urlColumns = "id, short_code, long_url, custom_alias, created_at, expires_at, click_count"

// CreateURL inserts a new short URL record
func (r *Repository) CreateURL(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error) {
	createdAt := url.CreatedAt.UTC()
	if url.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO urls (short_code, long_url, custom_alias, created_at, expires_at, click_count)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		url.ShortCode, url.LongURL, url.CustomAlias, createdAt, utcPtr(url.ExpiresAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create URL: %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	created := *url
	created.ID = id
	created.CreatedAt = createdAt
	created.ExpiresAt = utcPtr(url.ExpiresAt)
	created.ClickCount = 0
	return &created, nil
}

// FindByCode retrieves the record whose short_code or custom_alias equals code
func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+urlColumns+` FROM urls WHERE short_code = ? OR custom_alias = ? LIMIT 1`,
		code, code)

	url, err := scanURL(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get URL: %w", err)
	}
	return url, nil
}

// CodeExists reports whether code is taken as a short code or alias
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM urls WHERE short_code = ? OR custom_alias = ?`,
		code, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return count > 0, nil
}

// IncrementClickCount adds one to click_count
func (r *Repository) IncrementClickCount(ctx context.Context, code string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE urls SET click_count = click_count + 1 WHERE short_code = ? OR custom_alias = ?`,
		code, code)
	if err != nil {
		return 0, fmt.Errorf("failed to increment click count: %w", err)
	}
	return result.RowsAffected()
}

// ListURLs returns a page of records, newest first
func (r *Repository) ListURLs(ctx context.Context, offset, limit int) ([]*domain.ShortURL, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+urlColumns+` FROM urls ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count URLs: %w", err)
	}
	return count, nil
}

// DeleteURLs removes the records owning code
func (r *Repository) DeleteURLs(ctx context.Context, code string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM urls WHERE short_code = ? OR custom_alias = ?`, code, code)
	if err != nil {
		return 0, fmt.Errorf("failed to delete URL: %w", err)
	}
	return result.RowsAffected()
}

// CreateClick inserts a click event
func (r *Repository) CreateClick(ctx context.Context, event *domain.ClickEvent) error {
	clickTime := event.ClickTime.UTC()
	if event.ClickTime.IsZero() {
		clickTime = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analytics (short_code, click_time, ip_address, user_agent) VALUES (?, ?, ?, ?)`,
		event.ShortCode, clickTime, event.IPAddress, event.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicks returns the number of events for shortCode
func (r *Repository) CountClicks(ctx context.Context, shortCode string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analytics WHERE short_code = ?`, shortCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// CountUniqueVisitors returns the number of distinct addresses for shortCode.
// Clicks without an address count as one visitor.
func (r *Repository) CountUniqueVisitors(ctx context.Context, shortCode string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT ip_address) + CASE WHEN COUNT(*) > COUNT(ip_address) THEN 1 ELSE 0 END
		 FROM analytics WHERE short_code = ?`, shortCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}
	return count, nil
}

// ClickTimesSince returns click times at or after since, oldest first
func (r *Repository) ClickTimesSince(ctx context.Context, shortCode string, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT click_time FROM analytics WHERE short_code = ? AND click_time >= ? ORDER BY click_time ASC`,
		shortCode, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query click times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan click time: %w", err)
		}
		times = append(times, t.UTC())
	}
	return times, rows.Err()
}

// UserAgents returns the user agent of every event in insertion order
func (r *Repository) UserAgents(ctx context.Context, shortCode string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_agent FROM analytics WHERE short_code = ? ORDER BY id ASC`, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query user agents: %w", err)
	}
	defer rows.Close()

	var agents []string
	for rows.Next() {
		var ua sql.NullString
		if err := rows.Scan(&ua); err != nil {
			return nil, fmt.Errorf("failed to scan user agent: %w", err)
		}
		agents = append(agents, ua.String)
	}
	return agents, rows.Err()
}

// RecentClicks returns the newest events, newest first
func (r *Repository) RecentClicks(ctx context.Context, shortCode string, limit int) ([]*domain.ClickEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, short_code, click_time, ip_address, user_agent FROM analytics
		 WHERE short_code = ? ORDER BY click_time DESC, id DESC LIMIT ?`, shortCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent clicks: %w", err)
	}
	defer rows.Close()

	var events []*domain.ClickEvent
	for rows.Next() {
		var (
			event domain.ClickEvent
			ip    sql.NullString
			ua    sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.ShortCode, &event.ClickTime, &ip, &ua); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		event.ClickTime = event.ClickTime.UTC()
		event.IPAddress = nullStringPtr(ip)
		event.UserAgent = nullStringPtr(ua)
		events = append(events, &event)
	}
	return events, rows.Err()
}

// DeleteClicks removes every event for shortCode
func (r *Repository) DeleteClicks(ctx context.Context, shortCode string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analytics WHERE short_code = ?`, shortCode)
	if err != nil {
		return 0, fmt.Errorf("failed to delete clicks: %w", err)
	}
	return result.RowsAffected()
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanURL(s scanner) (*domain.ShortURL, error) {
	var (
		url       domain.ShortURL
		alias     sql.NullString
		expiresAt sql.NullTime
	)
	if err := s.Scan(&url.ID, &url.ShortCode, &url.LongURL, &alias, &url.CreatedAt, &expiresAt, &url.ClickCount); err != nil {
		return nil, err
	}

	url.CreatedAt = url.CreatedAt.UTC()
	url.CustomAlias = nullStringPtr(alias)
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		url.ExpiresAt = &t
	}
	return &url, nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Ensure Repository implements the interface
var _ repository.Store = (*Repository)(nil)
