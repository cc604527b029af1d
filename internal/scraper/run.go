package scraper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/archive"
	"github.com/eventoscl/crawler/internal/browser"
	"github.com/eventoscl/crawler/internal/config"
	"github.com/eventoscl/crawler/internal/discovery"
	"github.com/eventoscl/crawler/internal/events"
	"github.com/eventoscl/crawler/internal/metrics"
	"github.com/eventoscl/crawler/internal/parse"
	"github.com/eventoscl/crawler/internal/publish"
	"github.com/eventoscl/crawler/internal/store"
)

// Options are the per-run overrides accepted by the entry point.
type Options struct {
	Headless bool
}

// Runner sequences one full scrape: build the dedup index, discover links,
// filter, drain the extraction queue, and report counts.
type Runner struct {
	cfg       config.Config
	gateway   store.Gateway
	archive   archive.Provider
	publisher publish.Publisher
	clock     events.Clock
	logger    *zap.Logger
}

// NewRunner wires a Runner from its collaborators. The gateway, archive and
// publisher handles are constructed once by the caller and passed in.
func NewRunner(
	cfg config.Config,
	gateway store.Gateway,
	archiver archive.Provider,
	publisher publish.Publisher,
	clock events.Clock,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		gateway:   gateway,
		archive:   archiver,
		publisher: publisher,
		clock:     clock,
		logger:    logger.Named(events.Source),
	}
}

// Run executes one batch scrape and returns its counters. Only failures
// that prevent the run from starting at all are returned as errors;
// per-task failures are counted in the result.
func (r *Runner) Run(ctx context.Context, opts Options) (events.RunResult, error) {
	runID := uuid.NewString()
	result := events.RunResult{}
	log := r.logger.With(zap.String("run_id", runID))

	log.Info("starting scrape run")

	known, err := r.gateway.LookupKnownExternalIDs(ctx, events.Source, r.clock.Now())
	if err != nil {
		log.Warn("dedup index lookup failed, treating all events as new", zap.Error(err))
		known = make(map[string]struct{})
	}
	log.Info("loaded dedup index", zap.Int("known_events", len(known)))

	browserCfg := r.cfg.Browser
	browserCfg.Headless = opts.Headless
	session, err := browser.NewSession(ctx, browserCfg, log)
	if err != nil {
		return result, fmt.Errorf("start browser session: %w", err)
	}
	defer session.Close()
	log.Info("browser session ready", zap.String("user_agent", session.UserAgent()))

	nav := browser.NewNavigator(r.cfg, log)
	disc := discovery.New(nav, r.cfg, log)

	if !disc.NavigateToListing(session.Root()) {
		log.Warn("could not reach the events listing, harvesting whatever loaded")
	}

	links := disc.Collect(session.Root())
	log.Info("collected event links", zap.Int("links", len(links)))

	targets, skipped := filterKnown(links, known)
	result.Skipped = skipped
	log.Info("filtered against dedup index",
		zap.Int("new", len(targets)), zap.Int("skipped", result.Skipped))

	extractor := NewExtractor(session, nav, r.cfg.PageTimeout(), log)
	builder := NewRecordBuilder(r.cfg.Site.BaseURL, r.clock)
	queue := NewQueue(r.cfg.Scraping.Concurrency, r.cfg.Scraping.TaskRetries, log)

	records, errorCount := queue.Drain(ctx, targets, func(ctx context.Context, target events.CrawlTarget) (events.EventRecord, error) {
		raw, html, err := extractor.ExtractPage(ctx, target.URL)
		if err != nil {
			return events.EventRecord{}, err
		}

		record := builder.Build(target.URL, raw)

		stored, err := r.gateway.Upsert(ctx, record)
		if err != nil {
			return events.EventRecord{}, fmt.Errorf("upsert event: %w", err)
		}
		log.Info("scraped event",
			zap.String("external_id", stored.ExternalID),
			zap.String("title", stored.Title),
		)

		r.archivePage(ctx, runID, stored, html, log)
		r.notify(ctx, runID, stored, log)
		return stored, nil
	})

	result.Scraped = len(records)
	result.Errors = errorCount
	result.Events = records

	log.Info("scrape run complete",
		zap.Int("scraped", result.Scraped),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

// filterKnown turns discovered links into crawl targets, dropping every
// link whose external ID is already in the dedup index. Returns the
// targets to schedule and the number of links skipped.
func filterKnown(links []string, known map[string]struct{}) ([]events.CrawlTarget, int) {
	targets := make([]events.CrawlTarget, 0, len(links))
	skipped := 0
	for _, link := range links {
		externalID := parse.ExternalID(link)
		if _, exists := known[externalID]; exists {
			skipped++
			metrics.ObservePage("skipped")
			continue
		}
		targets = append(targets, events.CrawlTarget{
			URL:        link,
			ExternalID: externalID,
			Source:     events.Source,
		})
	}
	return targets, skipped
}

// archivePage stores the rendered HTML for audit. Failures are soft.
func (r *Runner) archivePage(ctx context.Context, runID string, record events.EventRecord, html string, log *zap.Logger) {
	if html == "" {
		return
	}
	path := fmt.Sprintf("%s/%s/%s.html", record.Source, runID, record.ExternalID)
	uri, err := r.archive.Put(ctx, path, []byte(html))
	if err != nil {
		log.Warn("page archive failed", zap.String("external_id", record.ExternalID), zap.Error(err))
		return
	}
	if uri != "" {
		log.Debug("archived page", zap.String("uri", uri))
	}
}

// notify publishes an ingest notification downstream. Failures are soft.
func (r *Runner) notify(ctx context.Context, runID string, record events.EventRecord, log *zap.Logger) {
	err := r.publisher.Publish(ctx, publish.Notification{
		RunID:      runID,
		ExternalID: record.ExternalID,
		Source:     record.Source,
		Title:      record.Title,
		SourceURL:  record.SourceURL,
		ScrapedAt:  r.clock.Now(),
	})
	if err != nil {
		log.Warn("ingest notification failed", zap.String("external_id", record.ExternalID), zap.Error(err))
	}
}
