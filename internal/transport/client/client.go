package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joshdurbin/linktrack/internal/domain"
)

// ErrNotFound is returned when the server answers 404
var ErrNotFound = errors.New("not found")

// APIError carries a non-success response from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    []domain.FieldDetail
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned status %d", e.StatusCode)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	for _, d := range e.Details {
		msg += fmt.Sprintf(" (%s %s)", d.Field, d.Message)
	}
	return msg
}

// Unwrap lets errors.Is match ErrNotFound on 404 responses
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client represents an HTTP client for the link service API
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ShortenOptions holds the optional parts of a shorten request
type ShortenOptions struct {
	Alias string
	Days  *int
}

// Shorten creates a short URL
func (c *Client) Shorten(ctx context.Context, longURL string, opts ShortenOptions) (*domain.CreateURLResponse, error) {
	body := domain.CreateURLRequest{
		LongURL:       longURL,
		CustomAlias:   opts.Alias,
		ExpiresInDays: opts.Days,
	}

	var result domain.CreateURLResponse
	if err := c.do(ctx, http.MethodPost, "/api/shorten", body, &result, http.StatusCreated); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListURLs retrieves one page of short URLs
func (c *Client) ListURLs(ctx context.Context, page, limit int) (*domain.ListURLsResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/urls"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result domain.ListURLsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteURL deletes a short URL
func (c *Client) DeleteURL(ctx context.Context, shortCode string) error {
	return c.do(ctx, http.MethodDelete, "/api/url/"+url.PathEscape(shortCode), nil, nil, http.StatusOK)
}

// GetAnalytics retrieves the click report of a short URL
func (c *Client) GetAnalytics(ctx context.Context, shortCode string) (*domain.AnalyticsReport, error) {
	var report domain.AnalyticsReport
	if err := c.do(ctx, http.MethodGet, "/api/analytics/"+url.PathEscape(shortCode), nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health retrieves the backend status. A degraded server still yields a status.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	var status domain.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &status, http.StatusOK, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if !accepted(resp.StatusCode, accept) {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func accepted(status int, accept []int) bool {
	for _, s := range accept {
		if s == status {
			return true
		}
	}
	return false
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload domain.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
		apiErr.Details = payload.Details
	}
	return apiErr
}
