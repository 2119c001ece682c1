package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/cache"
	"github.com/joshdurbin/linktrack/internal/cache/memory"
	"github.com/joshdurbin/linktrack/internal/metrics"
	"github.com/joshdurbin/linktrack/internal/repository"
	"github.com/joshdurbin/linktrack/internal/repository/sqlite"
	"github.com/joshdurbin/linktrack/internal/service"
	"github.com/joshdurbin/linktrack/internal/shortener"
	httpTransport "github.com/joshdurbin/linktrack/internal/transport/http"
	"github.com/joshdurbin/linktrack/internal/worker"
)

// stack is a fully wired service behind a test HTTP server
type stack struct {
	server  *httptest.Server
	client  *http.Client
	store   repository.Store
	pool    *worker.Pool
	metrics *metrics.Metrics
}

type stackOptions struct {
	rateLimit int
	generator shortener.Generator
}

func newStack(t *testing.T, store repository.Store, c cache.Cache, opts stackOptions) *stack {
	t.Helper()

	if opts.rateLimit == 0 {
		opts.rateLimit = 1000
	}

	logger := zap.NewNop()
	m := metrics.New()

	generator := opts.generator
	if generator == nil {
		var err error
		generator, err = shortener.NewGenerator(shortener.DefaultConfig())
		require.NoError(t, err)
	}

	pool := worker.New(worker.DefaultConfig(), logger, m)
	pool.Start()

	resolver := service.NewResolver(store, c, generator, pool, service.DefaultResolverConfig(), logger, m)
	analytics := service.NewAnalytics(store, pool, logger)
	health := service.NewHealthChecker(store, c, service.DefaultPingTimeout, logger)

	srv := httpTransport.NewServer(httpTransport.ServerConfig{
		Port:            "0",
		BaseURL:         "http://sho.rt",
		RateLimit:       opts.rateLimit,
		RateLimitWindow: time.Minute,
	}, resolver, analytics, health, logger, m)

	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = pool.Stop(ctx)
		_ = c.Close()
		_ = store.Close()
	})

	return &stack{
		server: ts,
		client: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		store:   store,
		pool:    pool,
		metrics: m,
	}
}

// newSQLiteStack wires a temp-file sqlite store and the in-memory cache
func newSQLiteStack(t *testing.T, opts stackOptions) *stack {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "links.db"), zap.NewNop())
	require.NoError(t, err)

	return newStack(t, store, memory.New(), opts)
}

func (s *stack) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
