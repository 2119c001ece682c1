package domain

import (
	"time"
)

// ShortURL represents a shortened link and its metadata
type ShortURL struct {
	ID          int64      `json:"id"`
	ShortCode   string     `json:"shortCode"`
	LongURL     string     `json:"longUrl"`
	CustomAlias *string    `json:"customAlias"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	ClickCount  int64      `json:"clickCount"`
}

// ClickEvent represents a single resolved redirect
type ClickEvent struct {
	ID        int64     `json:"id"`
	ShortCode string    `json:"short_code"`
	IPAddress *string   `json:"ip_address"`
	UserAgent *string   `json:"user_agent"`
	ClickTime time.Time `json:"click_time"`
}

// CreateURLInput carries the parameters of a shorten request into the service
type CreateURLInput struct {
	LongURL       string
	CustomAlias   string
	ExpiresInDays *int
}

// CreateURLRequest represents the body of POST /api/shorten
type CreateURLRequest struct {
	LongURL       string `json:"long_url" validate:"required,http_url"`
	CustomAlias   string `json:"custom_alias,omitempty" validate:"omitempty,alias"`
	ExpiresInDays *int   `json:"expires_in_days,omitempty" validate:"omitempty,gt=0,lte=36500"`
}

// CreateURLResponse represents the response when creating a short URL
type CreateURLResponse struct {
	Success   bool       `json:"success"`
	ShortCode string     `json:"short_code"`
	ShortURL  string     `json:"short_url"`
	LongURL   string     `json:"long_url"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Pagination describes a page of a listing
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListURLsResponse represents the response of GET /api/urls
type ListURLsResponse struct {
	Success    bool        `json:"success"`
	Data       []*ShortURL `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// MessageResponse is a generic success/failure envelope
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is returned for every failed API call
type ErrorResponse struct {
	Success bool          `json:"success"`
	Error   string        `json:"error"`
	Message string        `json:"message,omitempty"`
	Details []FieldDetail `json:"details,omitempty"`
}

// FieldDetail names a single invalid input field
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HealthStatus represents the response of GET /api/health
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Redis     string    `json:"redis"`
	Error     string    `json:"error,omitempty"`
}

// Health status values
const (
	StatusOK           = "OK"
	StatusError        = "ERROR"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)
