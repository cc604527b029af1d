// Package scraper runs the extraction pipeline: per-page field probes, the
// bounded-concurrency queue, and the run orchestrator.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/browser"
	"github.com/eventoscl/crawler/internal/events"
	"github.com/eventoscl/crawler/internal/metrics"
)

// extractJS runs inside the rendered page and resolves each logical field
// through an ordered selector-fallback chain: the first selector yielding
// non-empty text wins. Image candidates carry a provenance priority:
// og:image (1), CDN event images (2), generic fallbacks (3).
const extractJS = `
(() => {
  const getText = (selectors) => {
    for (const sel of selectors) {
      const el = document.querySelector(sel);
      if (el && el.textContent.trim()) {
        return el.textContent.trim();
      }
    }
    return null;
  };

  const getAttr = (selectors, attr) => {
    for (const sel of selectors) {
      const el = document.querySelector(sel);
      if (el && el.getAttribute(attr)) {
        return el.getAttribute(attr);
      }
    }
    return null;
  };

  const title = getText([
    'h1', '.event-title', '.evento-titulo', '[class*="event-name"]',
    '[class*="event-title"]', '.title'
  ]) || getAttr(['meta[property="og:title"]'], 'content');

  const description = getText([
    '.event-description', '.evento-descripcion', '[class*="description"]',
    '.description', '.detalle'
  ]) || getAttr(['meta[property="og:description"]'], 'content');

  const longDescription = getText([
    '.event-details', '.evento-detalles', '[class*="long-description"]',
    '.full-description', '.content-description', 'article'
  ]);

  const venue = getText([
    '.venue', '.lugar', '[class*="venue"]', '[class*="location-name"]',
    '.event-venue', '.recinto', '[class*="place"]'
  ]);

  const address = getText([
    '.address', '.direccion', '[class*="address"]', '.location-address',
    '.event-address', '[class*="ubicacion"]'
  ]);

  const dateText = getText([
    '.event-date', '.fecha', '[class*="date"]', '.when',
    '.event-when', '[class*="fecha"]', 'time'
  ]) || getAttr(['time'], 'datetime');

  const timeText = getText([
    '.event-time', '.hora', '[class*="time"]:not([class*="datetime"])',
    '.when-time', '[class*="hora"]'
  ]);

  let priceText = null;
  const priceEls = document.querySelectorAll('.precio-total, [class*="precio-total"]');
  for (const el of priceEls) {
    const text = el.textContent.trim();
    if (text.includes('$')) {
      priceText = text;
      break;
    }
  }
  if (!priceText) {
    priceText = getText([
      '.price', '.precio', '[class*="price"]', '.event-price',
      '[class*="precio"]', '.ticket-price'
    ]);
  }

  const category = getText([
    '.category', '.categoria', '[class*="category"]',
    '.event-category', '[class*="categoria"]', '.genre'
  ]);

  const images = [];
  const pushImg = (src, alt, width, height, priority) => {
    if (!src || src.startsWith('data:')) return;
    if (src.includes('ico-ticket') || src.includes('landing-2021') || src.includes('logo')) return;
    images.push({
      url: src,
      alt: alt || '',
      width: width || 0,
      height: height || 0,
      priority: priority
    });
  };

  const ogImage = getAttr(['meta[property="og:image"]'], 'content');
  if (ogImage) {
    pushImg(ogImage, 'Event Image', 0, 0, 1);
  }

  document.querySelectorAll('img[src*="ptocdn.net"], img[src*="eventos"]').forEach(img => {
    pushImg(img.src || img.dataset.src, img.alt, img.naturalWidth, img.naturalHeight, 2);
  });

  const artistImg = document.querySelector('img.img_artist_thumb, img.img-responsive');
  if (artistImg) {
    pushImg(artistImg.src || artistImg.dataset.src, artistImg.alt,
      artistImg.naturalWidth, artistImg.naturalHeight, 2);
  }

  const fallbackSelectors = [
    '.event-image img', '.evento-imagen img', '[class*="event-image"] img',
    '.gallery img', '.carousel img', 'picture img', '.main-image img',
    'img[class*="event"]', 'img[class*="poster"]', 'figure img'
  ];
  for (const sel of fallbackSelectors) {
    document.querySelectorAll(sel).forEach(img => {
      pushImg(img.src || img.dataset.src, img.alt, img.naturalWidth, img.naturalHeight, 3);
    });
  }

  const ticketUrl = getAttr([
    'a[href*="comprar"]', 'a[href*="ticket"]', 'a[href*="entradas"]',
    '.buy-ticket', '.comprar', 'a.btn-primary'
  ], 'href') || window.location.href;

  return {
    title: title || '',
    description: description || '',
    long_description: longDescription || '',
    venue: venue || '',
    address: address || '',
    date_text: dateText || '',
    time_text: timeText || '',
    price_text: priceText || '',
    category: category || '',
    images: images,
    ticket_url: ticketUrl || '',
    source_url: window.location.href
  };
})()
`

// Extractor opens one fresh page per target and probes it for raw fields.
type Extractor struct {
	session     *browser.Session
	nav         *browser.Navigator
	pageTimeout time.Duration
	logger      *zap.Logger
}

// NewExtractor builds an Extractor over the shared session. pageTimeout
// bounds the whole per-page pipeline, navigation included.
func NewExtractor(session *browser.Session, nav *browser.Navigator, pageTimeout time.Duration, logger *zap.Logger) *Extractor {
	if pageTimeout <= 0 {
		pageTimeout = 60 * time.Second
	}
	return &Extractor{session: session, nav: nav, pageTimeout: pageTimeout, logger: logger}
}

// ExtractPage loads url in a fresh page and returns the raw field bag plus
// the rendered HTML. The page is closed on every exit path.
func (e *Extractor) ExtractPage(ctx context.Context, url string) (events.RawExtraction, string, error) {
	start := time.Now()
	pageCtx, cancel, err := e.session.NewPage()
	if err != nil {
		return events.RawExtraction{}, "", fmt.Errorf("open page: %w", err)
	}
	defer cancel()

	if ctx.Err() != nil {
		return events.RawExtraction{}, "", ctx.Err()
	}

	budgetCtx, budgetCancel := context.WithTimeout(pageCtx, e.pageTimeout)
	defer budgetCancel()

	if !e.nav.SafeGoto(budgetCtx, url) {
		return events.RawExtraction{}, "", fmt.Errorf("failed to navigate to %s", url)
	}

	e.nav.DelayBetween(budgetCtx, 1500*time.Millisecond, 2500*time.Millisecond)

	if err := chromedp.Run(budgetCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return events.RawExtraction{}, "", fmt.Errorf("wait for body: %w", err)
	}

	var raw events.RawExtraction
	var html string
	if err := chromedp.Run(budgetCtx,
		chromedp.Evaluate(extractJS, &raw),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return events.RawExtraction{}, "", fmt.Errorf("extract fields: %w", err)
	}

	metrics.ObserveExtraction(time.Since(start))
	return raw, html, nil
}
