package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joshdurbin/linktrack/internal/shortener"
)

// Database backends
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
	Shortener shortener.Config
}

// AppConfig holds environment-wide settings
type AppConfig struct {
	Env string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	BaseURL         string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL string
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	URL        string
	DefaultTTL time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level string
	File  string
}

// RateLimitConfig bounds shorten requests per client
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// WorkerConfig sizes the background task pool
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// SetDefaults registers default values and environment bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("cache.url", "redis://localhost:6379")
	v.SetDefault("cache.default_ttl", 86400)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("ratelimit.requests", 10)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.queue_size", 1024)
	v.SetDefault("shortener.code_length", shortener.DefaultCodeLength)

	bindings := map[string][]string{
		"app.env":                 {"APP_ENV", "NODE_ENV"},
		"server.port":             {"PORT"},
		"server.base_url":         {"BASE_URL"},
		"server.shutdown_timeout": {"SHUTDOWN_TIMEOUT"},
		"database.url":            {"DATABASE_URL"},
		"cache.url":               {"REDIS_URL"},
		"cache.default_ttl":       {"DEFAULT_CACHE_TTL"},
		"log.level":               {"LOG_LEVEL"},
		"log.file":                {"LOG_FILE"},
		"ratelimit.requests":      {"RATE_LIMIT_REQUESTS"},
		"ratelimit.window":        {"RATE_LIMIT_WINDOW"},
		"worker.count":            {"WORKER_COUNT"},
		"worker.queue_size":       {"WORKER_QUEUE_SIZE"},
		"shortener.code_length":   {"CODE_LENGTH"},
	}
	for key, envs := range bindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// Load reads the configuration from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	port := v.GetString("server.port")
	baseURL := v.GetString("server.base_url")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	cfg := &Config{
		App: AppConfig{
			Env: v.GetString("app.env"),
		},
		Server: ServerConfig{
			Port:            port,
			BaseURL:         strings.TrimRight(baseURL, "/"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		Cache: CacheConfig{
			URL:        v.GetString("cache.url"),
			DefaultTTL: time.Duration(v.GetInt("cache.default_ttl")) * time.Second,
		},
		Logging: LoggingConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("ratelimit.requests"),
			Window:   v.GetDuration("ratelimit.window"),
		},
		Worker: WorkerConfig{
			Count:     v.GetInt("worker.count"),
			QueueSize: v.GetInt("worker.queue_size"),
		},
		Shortener: shortener.Config{
			Type:       shortener.TypeRandom,
			CodeLength: v.GetInt("shortener.code_length"),
		},
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Backend returns the store backend and the connection string it expects
func (d DatabaseConfig) Backend() (string, string, error) {
	switch {
	case strings.HasPrefix(d.URL, "postgres://"), strings.HasPrefix(d.URL, "postgresql://"):
		return BackendPostgres, d.URL, nil
	case strings.HasPrefix(d.URL, "sqlite://"):
		return BackendSQLite, strings.TrimPrefix(d.URL, "sqlite://"), nil
	case strings.HasPrefix(d.URL, "file:"):
		return BackendSQLite, d.URL, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", d.URL)
	}
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database url cannot be empty")
	}

	if _, _, err := c.Database.Backend(); err != nil {
		return err
	}

	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("default cache ttl must be positive, got: %v", c.Cache.DefaultTTL)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit must allow at least one request per positive window, got: %d per %v",
			c.RateLimit.Requests, c.RateLimit.Window)
	}

	if c.Worker.Count <= 0 {
		return fmt.Errorf("worker count must be positive, got: %d", c.Worker.Count)
	}

	if c.Worker.QueueSize <= 0 {
		return fmt.Errorf("worker queue size must be positive, got: %d", c.Worker.QueueSize)
	}

	if c.Shortener.CodeLength <= 0 {
		return fmt.Errorf("code length must be positive, got: %d", c.Shortener.CodeLength)
	}

	return nil
}
