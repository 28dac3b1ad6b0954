package fetch

import "strings"

// challengeMarkers are explicit shell-page signals. A normal page that merely references
// a WAF resource (e.g. a cdn-cgi script tag) is NOT flagged — only these exact phrases,
// matched on the full-page lowercased body, count (spec §4.1).
var challengeMarkers = []string{
	"checking your browser before accessing",
	"attention required! | cloudflare",
	"please enable javascript and cookies to continue",
	"verifying your connection",
	"just a moment...",
	"access denied",
	"captcha-delivery.com",
	"incapsula incident id",
	"this process is automatic, your browser will redirect",
	"please wait while we verify",
	"perimeterx",
	"sorry, you have been blocked",
}

// IsChallenge reports whether an HTTP body looks like an anti-bot shell page rather than
// real content.
func IsChallenge(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
