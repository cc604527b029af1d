package browser

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/config"
	"github.com/eventoscl/crawler/internal/metrics"
)

// challengeProbe checks the live DOM for the interstitials the site's
// anti-bot layer serves before real content.
const challengeProbe = `
document.body.innerText.includes('Checking your browser') ||
document.body.innerText.includes('Just a moment') ||
document.body.innerText.includes('Verificando tu navegador') ||
document.querySelector('#challenge-running') !== null ||
document.querySelector('.cf-browser-verification') !== null
`

// Navigator wraps page navigation with retries, humanized pacing and
// challenge waiting. Navigation failures are reported as booleans, never
// errors: a page that will not load is skipped, not fatal.
type Navigator struct {
	minDelay         time.Duration
	maxDelay         time.Duration
	navTimeout       time.Duration
	navRetries       int
	challengeTimeout time.Duration
	logger           *zap.Logger
}

// NewNavigator builds a Navigator from config.
func NewNavigator(cfg config.Config, logger *zap.Logger) *Navigator {
	return &Navigator{
		minDelay:         time.Duration(cfg.Scraping.MinDelayMs) * time.Millisecond,
		maxDelay:         time.Duration(cfg.Scraping.MaxDelayMs) * time.Millisecond,
		navTimeout:       cfg.NavTimeout(),
		navRetries:       cfg.Browser.NavRetries,
		challengeTimeout: cfg.ChallengeTimeout(),
		logger:           logger,
	}
}

// Delay suspends for a random duration in the pool-wide range.
func (n *Navigator) Delay(ctx context.Context) {
	n.DelayBetween(ctx, n.minDelay, n.maxDelay)
}

// DelayBetween suspends for a random duration in [min, max], returning
// early if the context finishes.
func (n *Navigator) DelayBetween(ctx context.Context, min, max time.Duration) {
	select {
	case <-time.After(randDuration(min, max)):
	case <-ctx.Done():
	}
}

// SafeGoto navigates pageCtx to url with a bounded number of attempts and
// increasing randomized backoff between them. After a successful navigation
// it waits out any bot challenge. Returns whether the page loaded.
func (n *Navigator) SafeGoto(pageCtx context.Context, url string) bool {
	for attempt := 1; attempt <= n.navRetries; attempt++ {
		navCtx, cancel := context.WithTimeout(pageCtx, n.navTimeout)
		err := chromedp.Run(navCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
		cancel()

		if err == nil {
			if !n.WaitForChallenge(pageCtx) {
				n.logger.Warn("challenge did not clear, proceeding with loaded content",
					zap.String("url", url))
			}
			return true
		}

		n.logger.Warn("navigation attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", n.navRetries),
			zap.Error(err),
		)
		if attempt < n.navRetries {
			metrics.ObserveNavigationRetry()
			backoff := time.Duration(attempt)
			n.DelayBetween(pageCtx, backoff*2*time.Second, backoff*5*time.Second)
		}
	}
	return false
}

// WaitForChallenge polls the page body for known challenge markers until
// they disappear or the timeout elapses. Returns whether the challenge
// cleared (or was never present).
func (n *Navigator) WaitForChallenge(pageCtx context.Context) bool {
	deadline := time.Now().Add(n.challengeTimeout)
	observed := false

	for time.Now().Before(deadline) {
		var challenged bool
		err := chromedp.Run(pageCtx, chromedp.Evaluate(challengeProbe, &challenged))
		if err == nil && !challenged {
			return true
		}
		if pageCtx.Err() != nil {
			return false
		}
		if !observed {
			observed = true
			metrics.ObserveChallengeWait()
			n.logger.Debug("waiting for bot challenge to clear")
		}
		n.DelayBetween(pageCtx, time.Second, 2*time.Second)
	}
	return false
}

// SafeClick waits for the selector, applies short humanized delays around
// the click, and reports success. A missing selector is logged, not an error.
func (n *Navigator) SafeClick(pageCtx context.Context, selector string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(pageCtx, timeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		n.logger.Debug("click target not found", zap.String("selector", selector), zap.Error(err))
		return false
	}
	n.DelayBetween(pageCtx, 200*time.Millisecond, 500*time.Millisecond)
	if err := chromedp.Run(pageCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		n.logger.Debug("click failed", zap.String("selector", selector), zap.Error(err))
		return false
	}
	n.DelayBetween(pageCtx, 500*time.Millisecond, time.Second)
	return true
}

func randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	bound := big.NewInt(int64(max - min))
	jitter, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return min + (max-min)/2
	}
	return min + time.Duration(jitter.Int64())
}

func randIndex(n int) int {
	if n <= 1 {
		return 0
	}
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(idx.Int64())
}
