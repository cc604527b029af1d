// Package images ranks extracted image candidates and picks the best one.
package images

import (
	"regexp"
	"sort"

	"github.com/eventoscl/crawler/internal/events"
)

// URLs matching any of these are placeholders, site chrome, or social
// icons and never usable as an event image.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)placeholder`),
	regexp.MustCompile(`(?i)no-image`),
	regexp.MustCompile(`(?i)default-image`),
	regexp.MustCompile(`(?i)fallback`),
	regexp.MustCompile(`(?i)loading`),
	regexp.MustCompile(`(?i)spinner`),
	regexp.MustCompile(`(?i)grey\.gif`),
	regexp.MustCompile(`(?i)blank\.gif`),
	regexp.MustCompile(`(?i)1x1`),
	regexp.MustCompile(`(?i)pixel\.gif`),
	regexp.MustCompile(`(?i)spacer`),
	regexp.MustCompile(`(?i)ico-ticket`),
	regexp.MustCompile(`(?i)landing-2021`),
	regexp.MustCompile(`(?i)logo`),
	regexp.MustCompile(`(?i)facebook\.svg`),
	regexp.MustCompile(`(?i)twitter\.svg`),
}

// IsPlaceholder reports whether the URL points at a known placeholder or
// site-chrome asset. Empty URLs count as placeholders.
func IsPlaceholder(url string) bool {
	if url == "" {
		return true
	}
	for _, pattern := range placeholderPatterns {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}

// Rank filters out placeholder candidates and sorts the survivors by
// ascending priority, breaking ties by descending pixel area. Missing
// dimensions count as zero area.
func Rank(candidates []events.ImageCandidate) []events.ImageCandidate {
	ranked := make([]events.ImageCandidate, 0, len(candidates))
	for _, c := range candidates {
		if IsPlaceholder(c.URL) {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority < ranked[j].Priority
		}
		return area(ranked[i]) > area(ranked[j])
	})
	return ranked
}

// SelectBest returns the top-ranked candidate, or nil when no valid
// candidate exists.
func SelectBest(candidates []events.ImageCandidate) *events.ImageCandidate {
	ranked := Rank(candidates)
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0]
	return &best
}

func area(c events.ImageCandidate) int {
	if c.Width <= 0 || c.Height <= 0 {
		return 0
	}
	return c.Width * c.Height
}
