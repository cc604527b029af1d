package parse

import (
	"net/url"
	"regexp"
	"strings"
)

// External ID patterns, most specific first. The final pattern grabs the
// last path segment so any URL still yields a stable identity.
var externalIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/evento/([^/?]+)`),
	regexp.MustCompile(`/event/([^/?]+)`),
	regexp.MustCompile(`id=([^&]+)`),
	regexp.MustCompile(`/([^/]+)/?$`),
}

// ExternalID derives the site-assigned event identifier from a detail-page
// URL. Unmatched input returns the URL unchanged so identity stays
// well-defined.
func ExternalID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	for _, pattern := range externalIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return rawURL
}

// NormalizeURL resolves a possibly relative URL against base. Absolute URLs
// pass through; protocol-relative URLs assume https.
func NormalizeURL(rawURL, base string) string {
	if rawURL == "" {
		return ""
	}
	if strings.HasPrefix(rawURL, "http") {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "//") {
		return "https:" + rawURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}
