package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/linktrack/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:3000/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:3000", client.serverURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Shorten(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		days := 7
		expected := domain.CreateURLResponse{
			Success:   true,
			ShortCode: "promo",
			ShortURL:  "http://localhost:3000/promo",
			LongURL:   "https://example.com",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/shorten", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req domain.CreateURLRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://example.com", req.LongURL)
			assert.Equal(t, "promo", req.CustomAlias)
			require.NotNil(t, req.ExpiresInDays)
			assert.Equal(t, 7, *req.ExpiresInDays)

			writeJSON(w, http.StatusCreated, expected)
		}))
		defer server.Close()

		resp, err := NewClient(server.URL).Shorten(context.Background(), "https://example.com", ShortenOptions{Alias: "promo", Days: &days})
		require.NoError(t, err)
		assert.Equal(t, expected.ShortCode, resp.ShortCode)
		assert.Equal(t, expected.ShortURL, resp.ShortURL)
	})

	t.Run("omits empty options", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			assert.Equal(t, map[string]any{"long_url": "https://example.com"}, raw)
			writeJSON(w, http.StatusCreated, domain.CreateURLResponse{ShortCode: "abc1234"})
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Shorten(context.Background(), "https://example.com", ShortenOptions{})
		require.NoError(t, err)
	})

	t.Run("alias conflict", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "ALIAS_EXISTS", Message: "Custom Alias already taken. Try another one"})
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Shorten(context.Background(), "https://example.com", ShortenOptions{Alias: "taken"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "ALIAS_EXISTS", apiErr.Code)
		assert.Contains(t, err.Error(), "server returned status 400: ALIAS_EXISTS")
	})

	t.Run("validation details", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Validation failed",
				Details: []domain.FieldDetail{{Field: "long_url", Message: "is required"}},
			})
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Shorten(context.Background(), "", ShortenOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "(long_url is required)")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("invalid json"))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Shorten(context.Background(), "https://example.com", ShortenOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient(server.URL).Shorten(ctx, "https://example.com", ShortenOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_ListURLs(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		expectedQuery string
	}{
		{name: "defaults", expectedQuery: ""},
		{name: "page only", page: 2, expectedQuery: "page=2"},
		{name: "page and limit", page: 3, limit: 50, expectedQuery: "limit=50&page=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/urls", r.URL.Path)
				assert.Equal(t, tt.expectedQuery, r.URL.RawQuery)
				writeJSON(w, http.StatusOK, domain.ListURLsResponse{
					Success:    true,
					Data:       []*domain.ShortURL{{ID: 1, ShortCode: "abc1234", LongURL: "https://a.com"}},
					Pagination: domain.Pagination{Page: 1, Limit: 10, Total: 1, Pages: 1},
				})
			}))
			defer server.Close()

			resp, err := NewClient(server.URL).ListURLs(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)
			require.Len(t, resp.Data, 1)
			assert.Equal(t, int64(1), resp.Pagination.Total)
		})
	}
}

func TestClient_DeleteURL(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/url/abc1234", r.URL.Path)
			writeJSON(w, http.StatusOK, domain.MessageResponse{Success: true, Message: "URL deleted successfully"})
		}))
		defer server.Close()

		assert.NoError(t, NewClient(server.URL).DeleteURL(context.Background(), "abc1234"))
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "URL not found"})
		}))
		defer server.Close()

		err := NewClient(server.URL).DeleteURL(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := NewClient(server.URL).DeleteURL(context.Background(), "abc1234")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "server returned status 500")
	})
}

func TestClient_GetAnalytics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analytics/abc1234":
			writeJSON(w, http.StatusOK, domain.AnalyticsReport{
				Success:        true,
				URLInfo:        domain.URLInfo{ShortCode: "abc1234"},
				TotalClicks:    4,
				UniqueVisitors: 2,
			})
		default:
			writeJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "URL not found"})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	report, err := client.GetAnalytics(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.TotalClicks)
	assert.Equal(t, int64(2), report.UniqueVisitors)

	_, err = client.GetAnalytics(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Health(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   domain.HealthStatus
	}{
		{name: "healthy", status: http.StatusOK, body: domain.HealthStatus{Status: domain.StatusOK, Database: domain.StatusConnected}},
		{name: "store down", status: http.StatusServiceUnavailable, body: domain.HealthStatus{Status: domain.StatusError, Error: "refused"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/health", r.URL.Path)
				writeJSON(w, tt.status, tt.body)
			}))
			defer server.Close()

			status, err := NewClient(server.URL).Health(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.body.Status, status.Status)
		})
	}
}

func TestClient_NetworkErrors(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	ctx := context.Background()

	_, err := client.Shorten(ctx, "https://example.com", ShortenOptions{})
	assert.ErrorContains(t, err, "failed to make request")

	_, err = client.ListURLs(ctx, 0, 0)
	assert.ErrorContains(t, err, "failed to make request")

	err = client.DeleteURL(ctx, "abc1234")
	assert.ErrorContains(t, err, "failed to make request")

	_, err = client.Health(ctx)
	assert.ErrorContains(t, err, "failed to make request")
}

func TestClient_InvalidServerURL(t *testing.T) {
	client := NewClient("://invalid-url")

	_, err := client.GetAnalytics(context.Background(), "abc1234")
	assert.ErrorContains(t, err, "failed to create request")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.httpClient.Timeout = 10 * time.Millisecond

	_, err := client.Health(context.Background())
	assert.ErrorContains(t, err, "Client.Timeout exceeded")
}
