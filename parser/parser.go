package parser

import (
	"net/url"
	"strings"
)

// CleanText collapses runs of whitespace in a detail-panel text node
// into single spaces and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanWebsiteURL normalizes a website URL read from the detail panel.
// Result-panel links are sometimes wrapped in a Google redirect
// (https://www.google.com/url?q=<target>&...); the target is unwrapped.
// Bare domains from aria-label fallbacks get an https scheme.
func CleanWebsiteURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil {
		return s
	}

	if strings.Contains(u.Host, "google.") {
		if target := u.Query().Get("q"); target != "" {
			return target
		}
	}

	if u.Scheme == "" {
		return "https://" + s
	}

	return s
}
