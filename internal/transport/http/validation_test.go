package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/linktrack/internal/domain"
)

func TestIsValidAlias(t *testing.T) {
	tests := []struct {
		alias string
		valid bool
	}{
		{"abc", true},
		{"my_link-2024", true},
		{"ABCDEFGHIJKLMNOPQRST", true},
		{"ab", false},
		{"ABCDEFGHIJKLMNOPQRSTU", false},
		{"has space", false},
		{"dot.ted", false},
		{"api", false},
		{"API", false},
		{"apiary", false},
		{"api-docs", false},
		{"rapid", true},
		{"health", false},
		{"metrics", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidAlias(tt.alias))
		})
	}
}

func TestRequestValidator_Struct(t *testing.T) {
	rv := NewRequestValidator()
	days := 3
	zero := 0
	tooLong := domain.MaxExpiryDays + 1

	tests := []struct {
		name   string
		req    domain.CreateURLRequest
		fields []string
	}{
		{name: "valid", req: domain.CreateURLRequest{LongURL: "https://example.com/a?b=c"}},
		{name: "valid with options", req: domain.CreateURLRequest{LongURL: "http://example.com", CustomAlias: "promo", ExpiresInDays: &days}},
		{name: "missing url", req: domain.CreateURLRequest{}, fields: []string{"long_url"}},
		{name: "relative url", req: domain.CreateURLRequest{LongURL: "/just/a/path"}, fields: []string{"long_url"}},
		{name: "expiry beyond cap", req: domain.CreateURLRequest{LongURL: "https://a.com", ExpiresInDays: &tooLong}, fields: []string{"expires_in_days"}},
		{name: "alias shadowed by api prefix", req: domain.CreateURLRequest{LongURL: "https://a.com", CustomAlias: "apiary"}, fields: []string{"custom_alias"}},
		{name: "bad alias and expiry", req: domain.CreateURLRequest{LongURL: "https://a.com", CustomAlias: "x!", ExpiresInDays: &zero}, fields: []string{"custom_alias", "expires_in_days"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := rv.Struct(tt.req)
			require.Len(t, details, len(tt.fields))
			for i, field := range tt.fields {
				assert.Equal(t, field, details[i].Field)
				assert.NotEmpty(t, details[i].Message)
			}
		})
	}
}

func TestRequestValidator_ListQuery(t *testing.T) {
	rv := NewRequestValidator()

	assert.Empty(t, rv.Struct(listQuery{Page: 1, Limit: 100}))

	details := rv.Struct(listQuery{Page: 0, Limit: 101})
	require.Len(t, details, 2)
	assert.Equal(t, "page", details[0].Field)
	assert.Equal(t, "must be at least 1", details[0].Message)
	assert.Equal(t, "limit", details[1].Field)
	assert.Equal(t, "must be at most 100", details[1].Message)
}
