package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/metrics"
	"github.com/joshdurbin/linktrack/internal/service"
)

// Pagination defaults for GET /api/urls
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// UnknownUserAgent is recorded when a client sends no User-Agent header
const UnknownUserAgent = "Unknown"

var internalError = errorBody("Internal server error")

// Handler holds the HTTP handlers for the link service
type Handler struct {
	resolver  service.Resolver
	analytics service.Analytics
	health    service.HealthChecker
	validator *RequestValidator
	baseURL   string
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewHandler creates a new HTTP handler
func NewHandler(
	resolver service.Resolver,
	analytics service.Analytics,
	health service.HealthChecker,
	baseURL string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		resolver:  resolver,
		analytics: analytics,
		health:    health,
		validator: NewRequestValidator(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger.Named("http"),
		metrics:   m,
	}
}

// Shorten handles POST /api/shorten
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("invalid shorten body", zap.Error(err))
		writeValidation(w, []domain.FieldDetail{{Field: "body", Message: "must be a valid JSON object"}})
		return
	}

	req.LongURL = strings.TrimSpace(req.LongURL)
	req.CustomAlias = strings.TrimSpace(req.CustomAlias)

	if details := h.validator.Struct(req); len(details) > 0 {
		writeValidation(w, details)
		return
	}

	record, err := h.resolver.CreateShortURL(r.Context(), domain.CreateURLInput{
		LongURL:       req.LongURL,
		CustomAlias:   req.CustomAlias,
		ExpiresInDays: req.ExpiresInDays,
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidation(w, []domain.FieldDetail{{Field: verr.Field, Message: verr.Message}})
		case errors.Is(err, domain.ErrAliasConflict):
			writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "ALIAS_EXISTS",
				Message: "Custom Alias already taken. Try another one",
			})
		case errors.Is(err, domain.ErrCodeConflict):
			writeJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "CODE_CONFLICT",
				Message: "Short code was claimed concurrently. Please retry",
			})
		default:
			h.serverError(w, r, "failed to create short url", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, domain.CreateURLResponse{
		Success:   true,
		ShortCode: record.ShortCode,
		ShortURL:  h.baseURL + "/" + record.ShortCode,
		LongURL:   record.LongURL,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	})
}

type listQuery struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// ListURLs handles GET /api/urls
func (h *Handler) ListURLs(w http.ResponseWriter, r *http.Request) {
	q := listQuery{Page: DefaultPage, Limit: DefaultLimit}
	var details []domain.FieldDetail

	values := r.URL.Query()
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, domain.FieldDetail{Field: "page", Message: "must be an integer"})
		}
		q.Page = page
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, domain.FieldDetail{Field: "limit", Message: "must be an integer"})
		}
		q.Limit = limit
	}
	if len(details) == 0 {
		details = h.validator.Struct(q)
	}
	if len(details) > 0 {
		writeValidation(w, details)
		return
	}

	records, total, err := h.resolver.ListURLs(r.Context(), q.Page, q.Limit)
	if err != nil {
		h.serverError(w, r, "failed to list urls", err)
		return
	}
	if records == nil {
		records = []*domain.ShortURL{}
	}

	writeJSON(w, http.StatusOK, domain.ListURLsResponse{
		Success: true,
		Data:    records,
		Pagination: domain.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		},
	})
}

// DeleteURL handles DELETE /api/url/{code}
func (h *Handler) DeleteURL(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	deleted, err := h.resolver.DeleteURL(r.Context(), code)
	if err != nil {
		h.serverError(w, r, "failed to delete url", err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody("URL not found"))
		return
	}

	h.logger.Info("short url deleted", zap.String("short_code", code))
	writeJSON(w, http.StatusOK, domain.MessageResponse{Success: true, Message: "URL deleted successfully"})
}

// GetAnalytics handles GET /api/analytics/{code}
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	report, err := h.analytics.GetAnalytics(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("URL not found"))
			return
		}
		h.serverError(w, r, "failed to build analytics", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, ok := h.health.Check(r.Context())
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Redirect handles GET /{code}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if domain.IsReservedCode(code) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	record, err := h.resolver.FindByShortCode(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpired):
			h.metrics.Redirects.WithLabelValues(metrics.ResultExpired).Inc()
			h.writePage(w, expiredPage)
		case errors.Is(err, domain.ErrNotFound):
			h.metrics.Redirects.WithLabelValues(metrics.ResultNotFound).Inc()
			h.writePage(w, notFoundPage)
		default:
			h.metrics.Redirects.WithLabelValues(metrics.ResultError).Inc()
			h.serverError(w, r, "failed to resolve short code", err)
		}
		return
	}

	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = UnknownUserAgent
	}

	h.resolver.IncrementClickCount(record.ShortCode)
	h.analytics.RecordClick(record.ShortCode, ClientIP(r), userAgent)

	h.metrics.Redirects.WithLabelValues(metrics.ResultFound).Inc()
	h.logger.Info("redirect",
		zap.String("short_code", code),
		zap.String("long_url", record.LongURL),
		zap.String("request_id", RequestIDFrom(r.Context())))

	http.Redirect(w, r, record.LongURL, http.StatusFound)
}

// NotFound answers requests that match no route
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, errorBody("Route not found"))
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, internalError)
}

func errorBody(msg string) domain.ErrorResponse {
	return domain.ErrorResponse{Error: msg}
}

func writeValidation(w http.ResponseWriter, details []domain.FieldDetail) {
	writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{
		Error:   "Validation failed",
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
