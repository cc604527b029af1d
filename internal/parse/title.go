// Package parse implements the field normalization pipeline. Every function
// here is pure: raw scraped text in, canonical value out, no I/O.
package parse

import (
	"regexp"
	"strings"
)

// Tribute/cover/symphonic style markers. A title matching any of these keeps
// its prefix; "Concierto: Tributo a Queen" loses the phrase otherwise.
var titleKeepPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tribute`),
	regexp.MustCompile(`(?i)tributo`),
	regexp.MustCompile(`(?i)homenaje`),
	regexp.MustCompile(`(?i)cover`),
	regexp.MustCompile(`(?i)sinfónico`),
	regexp.MustCompile(`(?i)symphonic`),
	regexp.MustCompile(`(?i)orquesta`),
	regexp.MustCompile(`(?i)orchestra`),
}

var titlePrefixesToRemove = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Cinema:\s*`),
	regexp.MustCompile(`(?i)^Cine:\s*`),
	regexp.MustCompile(`(?i)^Concert[o]?:\s*`),
	regexp.MustCompile(`(?i)^Concierto:\s*`),
	regexp.MustCompile(`(?i)^Teatro:\s*`),
	regexp.MustCompile(`(?i)^Theater:\s*`),
	regexp.MustCompile(`(?i)^Show:\s*`),
	regexp.MustCompile(`(?i)^Espectáculo:\s*`),
	regexp.MustCompile(`(?i)^Evento:\s*`),
	regexp.MustCompile(`(?i)^Event:\s*`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanTitle trims a raw title and strips boilerplate prefixes unless the
// title carries a keep marker. Falls back to the trimmed raw string if
// stripping empties the result.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if title == "" {
		return ""
	}

	keep := false
	for _, p := range titleKeepPatterns {
		if p.MatchString(title) {
			keep = true
			break
		}
	}

	if !keep {
		for _, prefix := range titlePrefixesToRemove {
			title = prefix.ReplaceAllString(title, "")
		}
	}

	title = strings.TrimSpace(whitespaceRun.ReplaceAllString(title, " "))
	if title == "" {
		return strings.TrimSpace(raw)
	}
	return title
}
