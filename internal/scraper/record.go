package scraper

import (
	"strings"
	"time"

	"github.com/eventoscl/crawler/internal/events"
	"github.com/eventoscl/crawler/internal/images"
	"github.com/eventoscl/crawler/internal/parse"
)

// RecordBuilder turns one page's raw extraction into a canonical EventRecord
// by running the normalization pipeline.
type RecordBuilder struct {
	baseURL string
	clock   events.Clock
}

// NewRecordBuilder creates a builder resolving relative URLs against baseURL.
func NewRecordBuilder(baseURL string, clock events.Clock) *RecordBuilder {
	return &RecordBuilder{baseURL: baseURL, clock: clock}
}

// Build normalizes raw into an EventRecord for url. The record always
// carries a non-empty external ID and source.
func (b *RecordBuilder) Build(url string, raw events.RawExtraction) events.EventRecord {
	now := b.clock.Now()

	dateInfo := parse.DateRange(raw.DateText, now)
	priceInfo := parse.Price(raw.PriceText)
	timeOfDay := parse.TimeOfDay(raw.TimeText)

	// A parsed start date is a midnight instant; carry the listed time of
	// day onto it when both are known.
	if dateInfo.Start != nil && timeOfDay != "" {
		if t, err := time.Parse("15:04", timeOfDay); err == nil {
			d := *dateInfo.Start
			merged := time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
			dateInfo.Start = &merged
		}
	}

	ranked := images.Rank(raw.Images)
	bestImage := ""
	if len(ranked) > 0 {
		bestImage = ranked[0].URL
	}
	if len(ranked) == 0 {
		ranked = nil
	}

	var locationParts []string
	for _, part := range []string{raw.Venue, raw.Address} {
		if part != "" {
			locationParts = append(locationParts, part)
		}
	}

	comunaSource := raw.Address
	if comunaSource == "" {
		comunaSource = raw.Venue
	}

	ticketURL := url
	if raw.TicketURL != "" {
		if normalized := parse.NormalizeURL(raw.TicketURL, b.baseURL); normalized != "" {
			ticketURL = normalized
		}
	}

	return events.EventRecord{
		ExternalID: parse.ExternalID(url),
		Source:     events.Source,
		SourceURL:  url,

		Title:           parse.CleanTitle(raw.Title),
		Description:     raw.Description,
		LongDescription: raw.LongDescription,

		StartDate:        dateInfo.Start,
		EndDate:          dateInfo.End,
		EventOccurrences: dateInfo.Occurrences,

		Venue:    raw.Venue,
		Address:  raw.Address,
		Comuna:   parse.Comuna(comunaSource),
		Location: strings.Join(locationParts, ", "),

		ImageURL: bestImage,
		Images:   ranked,

		CategoryOriginal: raw.Category,
		CategoryEnglish:  parse.MapCategory(raw.Category),

		Price:    priceInfo.Text,
		PriceMin: priceInfo.Min,
		PriceMax: priceInfo.Max,
		Currency: priceInfo.Currency,

		HomepageURL: url,
		TicketURL:   ticketURL,

		ValidationStatus: "pending",
		ScrapeVersion:    events.ScrapeVersion,
		RawData:          raw,
	}
}
