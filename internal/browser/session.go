// Package browser owns the stealth Chromium session: an isolated,
// fingerprint-masked execution context plus humanized navigation helpers.
package browser

import (
	"context"
	"fmt"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/config"
)

// Santiago de Chile, the fingerprint's declared region.
const (
	sessionLocale   = "es-CL"
	sessionTimezone = "America/Santiago"
	sessionLat      = -33.4489
	sessionLon      = -70.6693
)

var sessionHeaders = network.Headers{
	"Accept-Language":           "es-CL,es;q=0.9,en;q=0.8",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Encoding":           "gzip, deflate, br",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// Session holds the shared browser process and its root page context. Every
// page opened through it carries the same fingerprint-defining overrides.
type Session struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	userAgent     string
	logger        *zap.Logger
}

// NewSession launches the browser process and prepares the root context.
// Any launch failure is fatal for the run.
func NewSession(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = cfg.UserAgents[randIndex(len(cfg.UserAgents))]
	}

	headless := any("new")
	if !cfg.Headless {
		headless = false
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-site-isolation-trials", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("window-size", "1920,1080"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		userAgent:     userAgent,
		logger:        logger,
	}

	// Launch the process and configure the root page now so a broken
	// Chromium install aborts before any scraping begins.
	if err := chromedp.Run(browserCtx, s.setupActions()...); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch stealth browser: %w", err)
	}

	logger.Debug("created stealth browser", zap.String("user_agent", userAgent))
	return s, nil
}

// Root returns the session's root page context, used for link discovery.
func (s *Session) Root() context.Context {
	return s.browserCtx
}

// UserAgent reports the identity chosen for this session.
func (s *Session) UserAgent() string {
	return s.userAgent
}

// NewPage opens a fresh page sharing the session's browser process and
// applies the same fingerprint overrides to it. The returned cancel closes
// the page and must run on every exit path.
func (s *Session) NewPage() (context.Context, context.CancelFunc, error) {
	pageCtx, cancel := chromedp.NewContext(s.browserCtx)
	if err := chromedp.Run(pageCtx, s.setupActions()...); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("configure page: %w", err)
	}
	return pageCtx, cancel, nil
}

// Close tears down every page and the browser process.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

func (s *Session) setupActions() []chromedp.Action {
	return []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := network.Enable().Do(ctx); err != nil {
				return fmt.Errorf("enable network domain: %w", err)
			}
			if err := network.SetExtraHTTPHeaders(sessionHeaders).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
			if err := emulation.SetUserAgentOverride(s.userAgent).
				WithAcceptLanguage("es-CL,es;q=0.9,en;q=0.8").
				WithPlatform("MacIntel").
				Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
			if err := emulation.SetTimezoneOverride(sessionTimezone).Do(ctx); err != nil {
				return fmt.Errorf("set timezone: %w", err)
			}
			if err := emulation.SetLocaleOverride().WithLocale(sessionLocale).Do(ctx); err != nil {
				return fmt.Errorf("set locale: %w", err)
			}
			if err := emulation.SetGeolocationOverride().
				WithLatitude(sessionLat).
				WithLongitude(sessionLon).
				WithAccuracy(100).
				Do(ctx); err != nil {
				return fmt.Errorf("set geolocation: %w", err)
			}
			if err := cdpbrowser.GrantPermissions(
				[]cdpbrowser.PermissionType{cdpbrowser.PermissionTypeGeolocation},
			).Do(ctx); err != nil {
				return fmt.Errorf("grant geolocation permission: %w", err)
			}
			if _, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx); err != nil {
				return fmt.Errorf("install stealth script: %w", err)
			}
			return nil
		}),
		chromedp.EmulateViewport(1920, 1080),
	}
}
