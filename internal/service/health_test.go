package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/cache"
	cachemocks "github.com/joshdurbin/linktrack/internal/cache/mocks"
	"github.com/joshdurbin/linktrack/internal/domain"
	repomocks "github.com/joshdurbin/linktrack/internal/repository/mocks"
)

func TestHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		cacheErr   error
		wantOK     bool
		wantStatus string
		wantDB     string
		wantRedis  string
	}{
		{
			name:       "all connected",
			wantOK:     true,
			wantStatus: domain.StatusOK,
			wantDB:     domain.StatusConnected,
			wantRedis:  domain.StatusConnected,
		},
		{
			name:       "cache down is degraded",
			cacheErr:   errors.New("connection refused"),
			wantOK:     true,
			wantStatus: domain.StatusOK,
			wantDB:     domain.StatusConnected,
			wantRedis:  domain.StatusDisconnected,
		},
		{
			name:       "store down fails",
			storeErr:   errors.New("connection refused"),
			wantOK:     false,
			wantStatus: domain.StatusError,
			wantDB:     domain.StatusDisconnected,
			wantRedis:  domain.StatusConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repomocks.Store{}
			c := &cachemocks.Cache{}
			repo.On("Ping", mock.Anything).Return(tt.storeErr)
			c.On("Ping", mock.Anything).Return(tt.cacheErr)

			h := NewHealthChecker(repo, c, time.Second, zap.NewNop())

			status, ok := h.Check(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantDB, status.Database)
			assert.Equal(t, tt.wantRedis, status.Redis)
			assert.False(t, status.Timestamp.IsZero())
			if tt.storeErr != nil {
				assert.Equal(t, tt.storeErr.Error(), status.Error)
			}
		})
	}
}

func TestHealthChecker_PingHasDeadline(t *testing.T) {
	repo := &repomocks.Store{}
	repo.On("Ping", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil)

	h := NewHealthChecker(repo, cache.Noop{}, 0, zap.NewNop())

	status, ok := h.Check(context.Background())
	assert.True(t, ok)
	assert.Equal(t, domain.StatusDisconnected, status.Redis)
	repo.AssertExpectations(t)
}
