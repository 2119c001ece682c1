// Package expiry holds the date arithmetic used for link expiration and
// day-bucketed reporting.
package expiry

import "time"

// DateLayout is the layout used for day buckets
const DateLayout = "2006-01-02"

// AddDays adds n calendar days to t. Wall-clock time is preserved across
// DST transitions and month boundaries are normalized.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// IsExpired reports whether expiresAt lies before the current instant.
// A nil expiry never expires.
func IsExpired(expiresAt *time.Time) bool {
	return IsExpiredAt(expiresAt, time.Now())
}

// IsExpiredAt reports whether expiresAt lies strictly before now
func IsExpiredAt(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return expiresAt.Before(now)
}

// FormatDate renders t as YYYY-MM-DD in its own location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
