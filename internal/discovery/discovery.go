// Package discovery enumerates candidate event detail-page URLs from the
// site's infinite-scroll listing and its category pages.
package discovery

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/browser"
	"github.com/eventoscl/crawler/internal/config"
	"github.com/eventoscl/crawler/internal/metrics"
)

const collectLinksJS = `
Array.from(document.querySelectorAll('a[href*="/evento/"], a[href*="/event/"]'))
  .map(a => a.href)
  .filter(href => href && href.includes('/'))
`

const needsCountrySelectionJS = `
document.body.innerText.toLowerCase().includes('selecciona tu país') ||
document.body.innerText.toLowerCase().includes('select your country') ||
document.querySelector('[class*="country"]') !== null
`

// Selectors tried in order to click through the country interstitial.
var chileSelectors = []string{
	`a[href*="chile"]`,
	`[data-country="cl"]`,
	`[data-country="chile"]`,
	`img[alt*="Chile"]`,
}

// Discoverer drives the scroll-and-harvest link collection.
type Discoverer struct {
	nav         *browser.Navigator
	baseURL     string
	listingPath string
	categories  []string
	maxScrolls  int
	catScrolls  int
	scrollDelay time.Duration
	logger      *zap.Logger
}

// New builds a Discoverer from config.
func New(nav *browser.Navigator, cfg config.Config, logger *zap.Logger) *Discoverer {
	return &Discoverer{
		nav:         nav,
		baseURL:     cfg.Site.BaseURL,
		listingPath: cfg.Site.ListingPath,
		categories:  cfg.Site.Categories,
		maxScrolls:  cfg.Scraping.MaxScrolls,
		catScrolls:  cfg.Scraping.CategoryMaxScrolls,
		scrollDelay: time.Duration(cfg.Scraping.ScrollDelayMs) * time.Millisecond,
		logger:      logger,
	}
}

// NavigateToListing loads the landing page, clicks through a country
// interstitial if one appears, and lands on the all-events listing.
// Every step is soft: a failed click is logged and skipped.
func (d *Discoverer) NavigateToListing(pageCtx context.Context) bool {
	if !d.nav.SafeGoto(pageCtx, d.baseURL) {
		return false
	}
	d.nav.DelayBetween(pageCtx, 2*time.Second, 3*time.Second)

	var needsSelection bool
	if err := chromedp.Run(pageCtx, chromedp.Evaluate(needsCountrySelectionJS, &needsSelection)); err != nil {
		d.logger.Debug("country selection probe failed", zap.Error(err))
	}
	if needsSelection {
		d.logger.Info("country selection detected, selecting Chile")
		for _, selector := range chileSelectors {
			if d.nav.SafeClick(pageCtx, selector, 2*time.Second) {
				d.logger.Info("clicked country selector", zap.String("selector", selector))
				d.nav.DelayBetween(pageCtx, 2*time.Second, 3*time.Second)
				break
			}
		}
	}

	if !d.nav.SafeGoto(pageCtx, d.baseURL+d.listingPath) {
		return false
	}
	d.nav.DelayBetween(pageCtx, 2*time.Second, 3*time.Second)
	return true
}

// Collect harvests detail-page links from the current listing page and then
// from each category page, returning the deduplicated union. A category that
// fails to load is skipped, never fatal.
func (d *Discoverer) Collect(pageCtx context.Context) []string {
	seen := make(map[string]struct{})
	var links []string

	add := func(found []string) int {
		added := 0
		for _, link := range found {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
			added++
		}
		return added
	}

	d.logger.Info("collecting event links with infinite scroll")
	d.ScrollToBottom(pageCtx, d.maxScrolls)
	found := d.harvest(pageCtx)
	add(found)
	d.logger.Info("listing scroll complete", zap.Int("links", len(found)))

	for _, category := range d.categories {
		if !d.nav.SafeGoto(pageCtx, d.baseURL+category) {
			d.logger.Warn("failed to load category, skipping", zap.String("category", category))
			continue
		}
		d.nav.DelayBetween(pageCtx, 1500*time.Millisecond, 2500*time.Millisecond)
		d.ScrollToBottom(pageCtx, d.catScrolls)

		added := add(d.harvest(pageCtx))
		d.logger.Info("category harvested",
			zap.String("category", category),
			zap.Int("new_links", added),
			zap.Int("total", len(links)),
		)
	}

	metrics.ObserveLinksDiscovered(len(links))
	return links
}

// ScrollToBottom repeatedly scrolls the page, stopping when the document
// height is unchanged for three consecutive iterations or maxScrolls is
// reached. Returns the number of scrolls performed.
func (d *Discoverer) ScrollToBottom(pageCtx context.Context, maxScrolls int) int {
	previousHeight := -1
	noChange := 0
	scrolls := 0

	for scrolls < maxScrolls {
		var height int
		if err := chromedp.Run(pageCtx, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
			d.logger.Debug("height probe failed, stopping scroll", zap.Error(err))
			break
		}

		if height == previousHeight {
			noChange++
			if noChange >= 3 {
				d.logger.Debug("scroll settled", zap.Int("scrolls", scrolls))
				break
			}
		} else {
			noChange = 0
		}
		previousHeight = height

		err := chromedp.Run(pageCtx, chromedp.Evaluate(
			`window.scrollTo({ top: document.body.scrollHeight, behavior: 'smooth' })`, nil))
		if err != nil {
			d.logger.Debug("scroll failed, stopping", zap.Error(err))
			break
		}

		d.nav.DelayBetween(pageCtx, d.scrollDelay, d.scrollDelay+500*time.Millisecond)
		scrolls++
	}
	return scrolls
}

func (d *Discoverer) harvest(pageCtx context.Context) []string {
	var found []string
	if err := chromedp.Run(pageCtx, chromedp.Evaluate(collectLinksJS, &found)); err != nil {
		d.logger.Warn("link harvest failed", zap.Error(err))
		return nil
	}
	return found
}
