package postgres

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations
type Migrator struct {
	migrate *migrate.Migrate
	source  source.Driver
	logger  *zap.Logger
}

// NewMigrator creates a Migrator for databaseURL
func NewMigrator(databaseURL string, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{
		migrate: m,
		source:  src,
		logger:  logger.Named("migrate"),
	}, nil
}

// Up applies every pending migration. A dirty version is rolled back to the
// previous version first so the failed migration runs again.
func (m *Migrator) Up() error {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if dirty {
		if err := m.retryDirty(version); err != nil {
			return err
		}
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema is up to date", zap.Uint("version", version))
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	newVersion, _, _ := m.migrate.Version()
	m.logger.Info("applied migrations", zap.Uint("version", newVersion))
	return nil
}

// retryDirty marks the version before the failed one as current.
// Migrations are written with IF [NOT] EXISTS so re-running a partial one is safe.
func (m *Migrator) retryDirty(version uint) error {
	target := database.NilVersion
	prev, err := m.source.Prev(version)
	switch {
	case err == nil:
		target = int(prev)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to find version before %d: %w", version, err)
	}

	m.logger.Warn("schema is dirty, retrying failed migration",
		zap.Uint("dirty_version", version),
		zap.Int("forced_version", target))
	if err := m.migrate.Force(target); err != nil {
		return fmt.Errorf("failed to force version %d: %w", target, err)
	}
	return nil
}

// Down rolls back one migration
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("nothing to roll back")
			return nil
		}
		return fmt.Errorf("failed to roll back: %w", err)
	}

	version, _, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		m.logger.Info("rolled back to empty schema")
		return nil
	}
	m.logger.Info("rolled back migration", zap.Uint("version", version))
	return nil
}

// Version returns the current schema version
func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database: %w", dbErr)
	}
	return nil
}
