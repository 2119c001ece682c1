package domain

import "time"

// URLInfo is the public view of a ShortURL embedded in analytics reports
type URLInfo struct {
	ShortCode   string     `json:"short_code"`
	LongURL     string     `json:"long_url"`
	CustomAlias *string    `json:"custom_alias"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClickCount  int64      `json:"click_count"`
}

// DayClicks is the number of clicks on one calendar day
type DayClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// DeviceStats is the number of clicks attributed to one device category
type DeviceStats struct {
	Device string `json:"device"`
	Count  int64  `json:"count"`
}

// RecentClick is the public view of a ClickEvent
type RecentClick struct {
	ClickTime time.Time `json:"clickTime"`
	IPAddress *string   `json:"ipAddress"`
	UserAgent *string   `json:"userAgent"`
}

// AnalyticsReport aggregates the click history of one short URL
type AnalyticsReport struct {
	Success        bool          `json:"success"`
	URLInfo        URLInfo       `json:"url_info"`
	TotalClicks    int64         `json:"total_clicks"`
	UniqueVisitors int64         `json:"unique_visitors"`
	ClicksByDay    []DayClicks   `json:"clicks_by_day"`
	Devices        []DeviceStats `json:"devices"`
	RecentClicks   []RecentClick `json:"recent_clicks"`
}

// NewURLInfo builds the public view of a record
func NewURLInfo(u *ShortURL) URLInfo {
	return URLInfo{
		ShortCode:   u.ShortCode,
		LongURL:     u.LongURL,
		CustomAlias: u.CustomAlias,
		CreatedAt:   u.CreatedAt,
		ExpiresAt:   u.ExpiresAt,
		ClickCount:  u.ClickCount,
	}
}
