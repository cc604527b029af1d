// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal                *prometheus.CounterVec
	navigationRetriesTotal    prometheus.Counter
	challengeWaitsTotal       prometheus.Counter
	linksDiscoveredTotal      prometheus.Counter
	extractionDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of event pages processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		navigationRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_navigation_retries_total",
				Help: "Total navigation attempts beyond the first.",
			},
		)

		challengeWaitsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_challenge_waits_total",
				Help: "Total times a bot challenge was detected and waited on.",
			},
		)

		linksDiscoveredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_links_discovered_total",
				Help: "Total candidate detail-page links discovered.",
			},
		)

		extractionDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_extraction_duration_seconds",
				Help:    "Histogram of per-page extraction latencies.",
				Buckets: []float64{1, 2, 5, 10, 20, 45, 90},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the page counter for the given outcome
// (scraped, skipped, error).
func ObservePage(outcome string) {
	pagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveNavigationRetry counts one navigation retry.
func ObserveNavigationRetry() {
	navigationRetriesTotal.Inc()
}

// ObserveChallengeWait counts one challenge-poll episode.
func ObserveChallengeWait() {
	challengeWaitsTotal.Inc()
}

// ObserveLinksDiscovered adds to the discovered-link counter.
func ObserveLinksDiscovered(n int) {
	linksDiscoveredTotal.Add(float64(n))
}

// ObserveExtraction records the duration of one page extraction.
func ObserveExtraction(d time.Duration) {
	extractionDurationSeconds.Observe(d.Seconds())
}
