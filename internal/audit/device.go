package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent renders a human-readable device display name from a raw
// User-Agent header. Used for audit event enrichment only; never for
// authorization decisions.
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	os := ua.OS()

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
