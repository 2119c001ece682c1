package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/joshdurbin/linktrack/internal/device"
	"github.com/joshdurbin/linktrack/internal/domain"
	"github.com/joshdurbin/linktrack/internal/expiry"
	"github.com/joshdurbin/linktrack/internal/repository"
)

const (
	// ReportWindowDays is the trailing window covered by clicks_by_day
	ReportWindowDays = 7

	// RecentClicksLimit is the number of events listed in recent_clicks
	RecentClicksLimit = 10
)

// analyticsService implements Analytics
type analyticsService struct {
	repo       repository.Store
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewAnalytics creates a new analytics service
func NewAnalytics(repo repository.Store, dispatcher Dispatcher, logger *zap.Logger) Analytics {
	return &analyticsService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.Named("analytics"),
		now:        time.Now,
	}
}

// RecordClick dispatches the click event insert to the background pool
func (s *analyticsService) RecordClick(code, ipAddress, userAgent string) {
	event := &domain.ClickEvent{
		ShortCode: code,
		IPAddress: optional(ipAddress),
		UserAgent: optional(userAgent),
		ClickTime: s.now().UTC(),
	}

	s.dispatcher.Submit(TaskRecordClick, func(ctx context.Context) error {
		if err := s.repo.CreateClick(ctx, event); err != nil {
			return fmt.Errorf("failed to record click for %s: %w", code, err)
		}
		return nil
	})
}

// GetAnalytics builds the click report for code
func (s *analyticsService) GetAnalytics(ctx context.Context, code string) (*domain.AnalyticsReport, error) {
	url, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("find URL", err)
	}

	total, err := s.repo.CountClicks(ctx, code)
	if err != nil {
		return nil, storeErr("count clicks", err)
	}

	unique, err := s.repo.CountUniqueVisitors(ctx, code)
	if err != nil {
		return nil, storeErr("count unique visitors", err)
	}

	since := s.now().AddDate(0, 0, -ReportWindowDays)
	times, err := s.repo.ClickTimesSince(ctx, code, since)
	if err != nil {
		return nil, storeErr("load click times", err)
	}

	agents, err := s.repo.UserAgents(ctx, code)
	if err != nil {
		return nil, storeErr("load user agents", err)
	}

	recent, err := s.repo.RecentClicks(ctx, code, RecentClicksLimit)
	if err != nil {
		return nil, storeErr("load recent clicks", err)
	}

	return &domain.AnalyticsReport{
		Success:        true,
		URLInfo:        domain.NewURLInfo(url),
		TotalClicks:    total,
		UniqueVisitors: unique,
		ClicksByDay:    ClicksByDay(times),
		Devices:        DeviceBreakdown(agents),
		RecentClicks:   recentClicks(recent),
	}, nil
}

// ClicksByDay groups click times by UTC calendar date, ascending.
// Days without clicks are omitted.
func ClicksByDay(times []time.Time) []domain.DayClicks {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[expiry.FormatDate(t.UTC())]++
	}

	days := make([]domain.DayClicks, 0, len(counts))
	for date, clicks := range counts {
		days = append(days, domain.DayClicks{Date: date, Clicks: clicks})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// DeviceBreakdown classifies each user agent and sorts the categories by
// count, descending. Equal counts keep first-seen order.
func DeviceBreakdown(userAgents []string) []domain.DeviceStats {
	index := make(map[string]int)
	var stats []domain.DeviceStats

	for _, ua := range userAgents {
		category := device.Classify(ua)
		i, ok := index[category]
		if !ok {
			i = len(stats)
			index[category] = i
			stats = append(stats, domain.DeviceStats{Device: category})
		}
		stats[i].Count++
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	if stats == nil {
		stats = []domain.DeviceStats{}
	}
	return stats
}

func recentClicks(events []*domain.ClickEvent) []domain.RecentClick {
	clicks := make([]domain.RecentClick, 0, len(events))
	for _, e := range events {
		clicks = append(clicks, domain.RecentClick{
			ClickTime: e.ClickTime,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
		})
	}
	return clicks
}

func storeErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure analyticsService implements Analytics interface
var _ Analytics = (*analyticsService)(nil)
