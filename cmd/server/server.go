package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/cache"
	"github.com/joshdurbin/linktrack/internal/cache/memory"
	rediscache "github.com/joshdurbin/linktrack/internal/cache/redis"
	"github.com/joshdurbin/linktrack/internal/config"
	"github.com/joshdurbin/linktrack/internal/jobs"
	"github.com/joshdurbin/linktrack/internal/logger"
	"github.com/joshdurbin/linktrack/internal/metrics"
	"github.com/joshdurbin/linktrack/internal/repository"
	"github.com/joshdurbin/linktrack/internal/repository/postgres"
	"github.com/joshdurbin/linktrack/internal/repository/sqlite"
	"github.com/joshdurbin/linktrack/internal/service"
	"github.com/joshdurbin/linktrack/internal/shortener"
	httpTransport "github.com/joshdurbin/linktrack/internal/transport/http"
	"github.com/joshdurbin/linktrack/internal/worker"
)

const (
	startupTimeout       = 30 * time.Second
	memoryJanitorPeriod  = time.Minute
	memoryCacheURLScheme = "memory://"
)

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.Development = !cfg.IsProduction()

	log, _, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting linktrack",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL))

	m := metrics.New()

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Initialize database
	store, err := openStore(startCtx, cfg, log, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close store", zap.Error(err))
		}
	}()

	// Initialize cache
	c := openCache(startCtx, cfg, log, m)
	defer func() {
		if err := c.Close(); err != nil {
			log.Error("failed to close cache", zap.Error(err))
		}
	}()

	// Initialize shortener generator
	generator, err := shortener.NewGenerator(cfg.Shortener)
	if err != nil {
		return fmt.Errorf("failed to create shortener generator: %w", err)
	}
	log.Info("shortener generator ready", zap.String("type", generator.Type()))

	// Background work for click bookkeeping
	pool := worker.New(worker.Config{
		Workers:     cfg.Worker.Count,
		QueueSize:   cfg.Worker.QueueSize,
		TaskTimeout: worker.DefaultConfig().TaskTimeout,
	}, log, m)
	pool.Start()

	resolverCfg := service.DefaultResolverConfig()
	resolverCfg.RefreshCacheTTL = cfg.Cache.DefaultTTL

	resolver := service.NewResolver(store, c, generator, pool, resolverCfg, log, m)
	analytics := service.NewAnalytics(store, pool, log)
	health := service.NewHealthChecker(store, c, service.DefaultPingTimeout, log)

	// Periodic jobs
	scheduler := jobs.NewScheduler(log)
	refresh := jobs.RefreshStoredLinks(store, m.LinksStored)
	if err := scheduler.Add(jobs.StoredLinksSpec, "stored_links", refresh); err != nil {
		return err
	}
	scheduler.RunNow("stored_links", refresh)
	scheduler.Start()

	// Create and start HTTP server
	server := httpTransport.NewServer(httpTransport.ServerConfig{
		Port:            cfg.Server.Port,
		BaseURL:         cfg.Server.BaseURL,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
	}, resolver, analytics, health, log, m)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for shutdown signal or server error
	var serveErr error
	select {
	case err := <-errChan:
		if err != nil {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down http server", zap.Error(err))
	}
	if err := pool.Stop(shutdownCtx); err != nil {
		log.Error("failed to drain background tasks", zap.Int("pending", pool.Pending()), zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop scheduler", zap.Error(err))
	}

	// cache and store close through the deferred calls above
	log.Info("server stopped")
	return serveErr
}

// openStore connects the backend named by the database URL. Postgres schemas
// are migrated when migrate is set; sqlite always migrates on open.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) (repository.Store, error) {
	backend, dsn, err := cfg.Database.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendPostgres:
		if migrate {
			if err := migrateUp(dsn, log); err != nil {
				return nil, err
			}
		}
		store, err := postgres.New(ctx, dsn, postgres.DefaultPoolConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info("using postgres store")
		return store, nil
	case config.BackendSQLite:
		store, err := sqlite.New(dsn, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info("using sqlite store", zap.String("path", dsn))
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database backend: %s", backend)
	}
}

// openCache returns the configured cache. A malformed Redis URL degrades to
// no cache instead of failing startup.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) cache.Cache {
	switch {
	case cfg.Cache.URL == "":
		log.Info("cache disabled")
		return cache.Noop{}
	case cfg.Cache.URL == memoryCacheURLScheme:
		mc := memory.New()
		mc.StartJanitor(memoryJanitorPeriod)
		log.Info("using in-memory cache")
		return mc
	default:
		rc, err := rediscache.Connect(ctx, cfg.Cache.URL, log, m)
		if err != nil {
			log.Warn("invalid redis url, continuing without cache", zap.Error(err))
			return cache.Noop{}
		}
		log.Info("using redis cache")
		return rc
	}
}

func migrateUp(dsn string, log *zap.Logger) error {
	migrator, err := postgres.NewMigrator(dsn, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warn("failed to close migrator", zap.Error(err))
		}
	}()

	return migrator.Up()
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return runMigrate(true)
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	return runMigrate(false)
}

var errSQLiteDown = errors.New("sqlite migrations cannot be rolled back; remove the database file instead")

func runMigrate(up bool) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	backend, dsn, err := cfg.Database.Backend()
	if err != nil {
		return err
	}

	if backend == config.BackendPostgres {
		if up {
			return migrateUp(dsn, log)
		}

		migrator, err := postgres.NewMigrator(dsn, log)
		if err != nil {
			return err
		}
		defer migrator.Close()
		return migrator.Down()
	}

	if !up {
		return errSQLiteDown
	}

	// sqlite migrates itself whenever it is opened
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := openStore(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	return store.Close()
}
