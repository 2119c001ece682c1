package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshdurbin/linktrack/internal/config"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "linktrack",
	Short:         "A link shortening and click analytics service",
	Long:          "Shortens long URLs, redirects visitors and records click analytics, backed by Postgres or SQLite with an optional Redis cache",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE:  runMigrateDown,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var shortenCmd = &cobra.Command{
	Use:   "shorten [URL]",
	Short: "Create a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runShorten,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List short URLs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [SHORT_CODE]",
	Short: "Delete a short URL and its click history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics [SHORT_CODE]",
	Short: "Show click analytics for a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalytics,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	config.SetDefaults(v)

	// Flags shared by server and migrate
	pf := rootCmd.PersistentFlags()
	pf.String("database-url", "", "Database URL (postgres://..., sqlite://path or file:path)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Also write logs to this file, rotated")
	pf.String("env", "development", "Application environment (development or production)")

	// Server command flags
	sf := serverCmd.Flags()
	sf.StringP("port", "p", "3000", "Server port")
	sf.String("base-url", "", "Public base URL used to build short links (default http://localhost:<port>)")
	sf.String("cache-url", "redis://localhost:6379", "Cache URL (redis://..., memory:// or empty to disable)")
	sf.Int("cache-ttl", 86400, "Cache lifetime in seconds for entries refreshed on lookup")
	sf.Int("workers", 4, "Background worker count")
	sf.Int("queue-size", 1024, "Background task queue size")
	sf.Int("code-length", 7, "Generated short code length")
	sf.Int("rate-limit", 10, "Shorten requests allowed per client per window")
	sf.Duration("rate-limit-window", time.Minute, "Rate limit window")

	mustBind("database.url", v.BindPFlag("database.url", pf.Lookup("database-url")))
	mustBind("log.level", v.BindPFlag("log.level", pf.Lookup("log-level")))
	mustBind("log.file", v.BindPFlag("log.file", pf.Lookup("log-file")))
	mustBind("app.env", v.BindPFlag("app.env", pf.Lookup("env")))
	mustBind("server.port", v.BindPFlag("server.port", sf.Lookup("port")))
	mustBind("server.base_url", v.BindPFlag("server.base_url", sf.Lookup("base-url")))
	mustBind("cache.url", v.BindPFlag("cache.url", sf.Lookup("cache-url")))
	mustBind("cache.default_ttl", v.BindPFlag("cache.default_ttl", sf.Lookup("cache-ttl")))
	mustBind("worker.count", v.BindPFlag("worker.count", sf.Lookup("workers")))
	mustBind("worker.queue_size", v.BindPFlag("worker.queue_size", sf.Lookup("queue-size")))
	mustBind("shortener.code_length", v.BindPFlag("shortener.code_length", sf.Lookup("code-length")))
	mustBind("ratelimit.requests", v.BindPFlag("ratelimit.requests", sf.Lookup("rate-limit")))
	mustBind("ratelimit.window", v.BindPFlag("ratelimit.window", sf.Lookup("rate-limit-window")))

	// Client command flags
	cf := clientCmd.PersistentFlags()
	cf.StringP("server-url", "u", "http://localhost:3000", "Server URL")
	shortenCmd.Flags().String("alias", "", "Custom alias to use instead of a generated code")
	shortenCmd.Flags().Int("days", 0, "Expire the link after this many days")
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("limit", 10, "Page size (1-100)")

	// Add subcommands
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	clientCmd.AddCommand(shortenCmd, listCmd, deleteCmd, analyticsCmd, healthCmd)
	rootCmd.AddCommand(serverCmd, migrateCmd, clientCmd)
}

// mustBind panics when a flag binding fails. Viper only takes a bound flag
// value when the flag was set, so env vars and defaults still apply otherwise.
func mustBind(key string, err error) {
	if err != nil {
		panic(fmt.Sprintf("failed to bind flag for %s: %v", key, err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
