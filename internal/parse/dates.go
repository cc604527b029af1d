package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eventoscl/crawler/internal/events"
)

// spanishMonths maps full and three-letter Spanish month names to months.
var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dic": time.December,
}

var (
	weekdayPrefix  = regexp.MustCompile(`(?i)^(lunes|martes|miércoles|miercoles|jueves|viernes|sábado|sabado|domingo),?\s*`)
	deJoin         = regexp.MustCompile(`\s+de\s+`)
	dayMonthYearRe = regexp.MustCompile(`(\d{1,2})\s+([a-záéíóúñ]+)\s+(\d{4})`)
	dayMonthRe     = regexp.MustCompile(`(\d{1,2})\s+([a-záéíóúñ]+)`)
	slashDateRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
	dashDateRe     = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{2,4})\b`)

	rangeRe = regexp.MustCompile(`(?i)(\d{1,2})(?:\s+de\s+([a-záéíóúñ]+))?\s*(?:al|a|-|–)\s*(\d{1,2})\s+(?:de\s+)?([a-záéíóúñ]+)(?:\s+(\d{4}))?`)
	multiRe = regexp.MustCompile(`(?i)(\d{1,2}),?\s*(\d{1,2})?,?\s*(?:y\s+)?(\d{1,2})?\s+(?:de\s+)?([a-záéíóúñ]+)(?:\s+(\d{4}))?`)
)

// SpanishDate parses a Spanish natural-language date. A missing year falls
// back to yearHint; if that puts the date in the past relative to now, the
// year is advanced by one (recurring-event heuristic). Returns nil when
// nothing matches.
func SpanishDate(text string, yearHint int, now time.Time) *time.Time {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil
	}

	cleaned := strings.ToLower(raw)
	cleaned = weekdayPrefix.ReplaceAllString(cleaned, "")
	cleaned = deJoin.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if m := dayMonthYearRe.FindStringSubmatch(cleaned); m != nil {
		if month, ok := spanishMonths[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	if m := dayMonthRe.FindStringSubmatch(cleaned); m != nil {
		if month, ok := spanishMonths[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			d := time.Date(yearHint, month, day, 0, 0, 0, 0, time.UTC)
			if d.Before(now) {
				d = d.AddDate(1, 0, 0)
			}
			return &d
		}
	}

	for _, re := range []*regexp.Regexp{slashDateRe, dashDateRe} {
		if m := re.FindStringSubmatch(cleaned); m != nil {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if len(m[3]) == 2 {
				year += 2000
			}
			if month < 1 || month > 12 {
				continue
			}
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if d, err := time.Parse(layout, raw); err == nil {
			d = d.UTC()
			return &d
		}
	}

	return nil
}

// DateRange parses date text that may describe a span ("12 al 15 de marzo"),
// a multi-date listing ("5, 12 y 19 de abril"), or a single date. For
// multi-date listings the occurrences carry plain calendar dates with no
// times; start is the first occurrence and end the last when more than one.
func DateRange(text string, now time.Time) events.ParsedDateInfo {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return events.ParsedDateInfo{}
	}

	if m := rangeRe.FindStringSubmatch(cleaned); m != nil {
		startMonthName := m[2]
		if startMonthName == "" {
			startMonthName = m[4]
		}
		startMonth, okStart := spanishMonths[strings.ToLower(startMonthName)]
		endMonth, okEnd := spanishMonths[strings.ToLower(m[4])]
		if okStart && okEnd {
			year := now.Year()
			explicitYear := m[5] != ""
			if explicitYear {
				year, _ = strconv.Atoi(m[5])
			}
			startDay, _ := strconv.Atoi(m[1])
			endDay, _ := strconv.Atoi(m[3])
			start := time.Date(year, startMonth, startDay, 0, 0, 0, 0, time.UTC)
			end := time.Date(year, endMonth, endDay, 0, 0, 0, 0, time.UTC)
			if start.Before(now) && !explicitYear {
				start = start.AddDate(1, 0, 0)
				end = end.AddDate(1, 0, 0)
			}
			return events.ParsedDateInfo{Start: &start, End: &end}
		}
	}

	if m := multiRe.FindStringSubmatch(cleaned); m != nil && (m[2] != "" || m[3] != "") {
		if month, ok := spanishMonths[strings.ToLower(m[4])]; ok {
			year := now.Year()
			if m[5] != "" {
				year, _ = strconv.Atoi(m[5])
			}
			var occurrences []events.Occurrence
			var dates []time.Time
			for _, dayStr := range []string{m[1], m[2], m[3]} {
				if dayStr == "" {
					continue
				}
				day, _ := strconv.Atoi(dayStr)
				d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
				dates = append(dates, d)
				occurrences = append(occurrences, events.Occurrence{Date: d.Format("2006-01-02")})
			}
			info := events.ParsedDateInfo{Occurrences: occurrences}
			if len(dates) > 0 {
				info.Start = &dates[0]
			}
			if len(dates) > 1 {
				info.End = &dates[len(dates)-1]
			}
			return info
		}
	}

	if single := SpanishDate(cleaned, now.Year(), now); single != nil {
		return events.ParsedDateInfo{Start: single}
	}
	return events.ParsedDateInfo{}
}

var timeRe = regexp.MustCompile(`(?i)(\d{1,2})[:.](\d{2})\s*(hrs?|am|pm)?`)

// TimeOfDay extracts an HH:MM time, converting 12-hour clock values only
// when an am/pm marker is present. Returns "" when nothing matches.
func TimeOfDay(text string) string {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	hours, _ := strconv.Atoi(m[1])
	marker := strings.ToLower(m[3])
	switch {
	case marker == "pm" && hours < 12:
		hours += 12
	case marker == "am" && hours == 12:
		hours = 0
	}
	return fmt.Sprintf("%02d:%s", hours, m[2])
}
