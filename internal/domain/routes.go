package domain

import "strings"

// MaxExpiryDays caps expires_in_days so the expiry stays representable as a duration
const MaxExpiryDays = 36500

// IsReservedCode reports codes the redirect route never resolves because they
// collide with fixed paths or look like static files
func IsReservedCode(code string) bool {
	return code == "" ||
		strings.Contains(code, ".") ||
		strings.HasPrefix(code, "api") ||
		code == "health" ||
		code == "favicon.ico"
}
