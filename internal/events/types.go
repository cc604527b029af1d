// Package events defines core types shared across subsystems.
package events

import (
	"time"
)

// Source is the canonical name of the site this crawler ingests.
const Source = "puntoticket"

// ScrapeVersion tags every record with the extraction pipeline revision.
const ScrapeVersion = "2.1"

// CrawlTarget is one discovered detail-page URL awaiting extraction.
type CrawlTarget struct {
	URL        string
	ExternalID string
	Source     string
}

// ImageCandidate is one image harvested from a detail page. Priority is a
// coarse provenance rank: lower values come from more authoritative page
// regions (og:image meta beats CDN event images beats generic fallbacks).
type ImageCandidate struct {
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Priority int    `json:"priority"`
}

// RawExtraction is the unstructured bag of strings scraped directly from a
// rendered page, before any normalization. It is retained verbatim on the
// final record for audit.
type RawExtraction struct {
	Title           string           `json:"title,omitempty"`
	Description     string           `json:"description,omitempty"`
	LongDescription string           `json:"long_description,omitempty"`
	Venue           string           `json:"venue,omitempty"`
	Address         string           `json:"address,omitempty"`
	DateText        string           `json:"date_text,omitempty"`
	TimeText        string           `json:"time_text,omitempty"`
	PriceText       string           `json:"price_text,omitempty"`
	Category        string           `json:"category,omitempty"`
	Images          []ImageCandidate `json:"images,omitempty"`
	TicketURL       string           `json:"ticket_url,omitempty"`
	SourceURL       string           `json:"source_url,omitempty"`
}

// Occurrence is one concrete calendar date of a multi-date listing.
type Occurrence struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// ParsedDateInfo is the result of date-text normalization. Occurrences is
// populated only for multi-date-in-one-string listings; Start/End otherwise
// describe a single span.
type ParsedDateInfo struct {
	Start       *time.Time
	End         *time.Time
	Occurrences []Occurrence
}

// ParsedPrice is the result of price-text normalization. Min/Max are nil
// when no positive amount could be extracted.
type ParsedPrice struct {
	Text     string
	Min      *int
	Max      *int
	Currency string
}

// EventRecord is the canonical output of the pipeline, keyed uniquely by
// (ExternalID, Source). Records are constructed once per extracted URL and
// never mutated afterwards.
type EventRecord struct {
	ExternalID string `json:"external_id"`
	Source     string `json:"source"`
	SourceURL  string `json:"source_url"`

	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	LongDescription string `json:"long_description,omitempty"`

	StartDate        *time.Time   `json:"start_date,omitempty"`
	EndDate          *time.Time   `json:"end_date,omitempty"`
	EventOccurrences []Occurrence `json:"event_occurrences,omitempty"`

	Venue    string `json:"venue,omitempty"`
	Address  string `json:"address,omitempty"`
	Comuna   string `json:"comuna,omitempty"`
	Location string `json:"location,omitempty"`

	ImageURL string           `json:"image_url,omitempty"`
	Images   []ImageCandidate `json:"images,omitempty"`

	CategoryOriginal string `json:"category_original,omitempty"`
	CategoryEnglish  string `json:"category_english,omitempty"`

	Price    string `json:"price,omitempty"`
	PriceMin *int   `json:"price_min,omitempty"`
	PriceMax *int   `json:"price_max,omitempty"`
	Currency string `json:"currency"`

	HomepageURL string `json:"homepage_url,omitempty"`
	TicketURL   string `json:"ticket_url,omitempty"`

	ValidationStatus string        `json:"validation_status"`
	ScrapeVersion    string        `json:"scrape_version"`
	RawData          RawExtraction `json:"raw_data"`
}

// RunResult aggregates the counters for one scrape run.
type RunResult struct {
	Scraped int           `json:"scraped"`
	Skipped int           `json:"skipped"`
	Errors  int           `json:"errors"`
	Events  []EventRecord `json:"events"`
}

// Clock abstracts time.Now so date heuristics and timestamps are testable.
type Clock interface {
	Now() time.Time
}
