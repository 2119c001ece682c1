package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/metrics"
	"github.com/joshdurbin/linktrack/internal/service"
)

// ServerConfig holds listener and rate limit settings
type ServerConfig struct {
	Port            string
	BaseURL         string
	RateLimit       int
	RateLimitWindow time.Duration
}

// Server represents the HTTP server
type Server struct {
	handler *Handler
	limiter *RateLimiter
	router  *mux.Router
	server  *http.Server
	logger  *zap.Logger
	port    string
}

// NewServer creates a new HTTP server
func NewServer(
	cfg ServerConfig,
	resolver service.Resolver,
	analytics service.Analytics,
	health service.HealthChecker,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Server {
	handler := NewHandler(resolver, analytics, health, cfg.BaseURL, logger, m)
	limiter := NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow, logger)

	router := mux.NewRouter()
	router.Use(mux.MiddlewareFunc(Metrics(m)))

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/shorten", limiter.Middleware(http.HandlerFunc(handler.Shorten))).Methods(http.MethodPost)
	api.HandleFunc("/urls", handler.ListURLs).Methods(http.MethodGet)
	api.HandleFunc("/url/{code}", handler.DeleteURL).Methods(http.MethodDelete)
	api.HandleFunc("/analytics/{code}", handler.GetAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	// Redirect endpoint (catch-all)
	router.HandleFunc("/{code}", handler.Redirect).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("Method not allowed"))
	})

	root := Chain(router, RequestID, Logging(logger), Recovery(logger), CORS)

	return &Server{
		handler: handler,
		limiter: limiter,
		router:  router,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           root,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger.Named("server"),
		port:   cfg.Port,
	}
}

// Start starts the HTTP server and blocks until it stops.
// A graceful shutdown is not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, waits for in-flight requests
// and releases the rate limiter
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	defer s.limiter.Close()
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Router returns the route table without the outer middleware
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the fully wrapped root handler (useful for testing)
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
