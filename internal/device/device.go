// Package device maps raw User-Agent strings to coarse device categories.
package device

import "strings"

// Device categories
const (
	Mobile  = "Mobile"
	Chrome  = "Chrome"
	Firefox = "Firefox"
	Safari  = "Safari"
	Edge    = "Edge"
	Other   = "Other"
	Unknown = "Unknown"
)

// Classify returns the category for a User-Agent string. The checks run in a
// fixed order and the first match wins.
func Classify(userAgent string) string {
	if userAgent == "" {
		return Unknown
	}

	switch {
	case strings.Contains(userAgent, "Mobile"):
		return Mobile
	case strings.Contains(userAgent, "Chrome"):
		return Chrome
	case strings.Contains(userAgent, "Firefox"):
		return Firefox
	case strings.Contains(userAgent, "Safari"):
		// Chrome user agents carry a Safari token too; the Chrome case above
		// has already claimed them.
		return Safari
	case strings.Contains(userAgent, "Edge"):
		return Edge
	default:
		return Other
	}
}
