package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"partspulse/pricetracker/helpers"
	"partspulse/pricetracker/logger"
	errs "partspulse/pricetracker/pkg/errors"
	"partspulse/pricetracker/services/cache"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	acceptLanguage   = "en-IN,en;q=0.9,hi;q=0.8"
)

// Titles served instead of product pages when a fetch effectively
// failed; matched case-insensitively.
var errorTitleMarkers = []string{
	"404",
	"not found",
	"page not found",
	"access denied",
	"attention required",
	"just a moment",
}

// PageFetcher acquires rendered DOMs through headless Chrome. Each
// Fetch owns one browser process: the allocator and browser context
// are created per call and released on every exit path, so repeated
// polling cannot leak Chrome processes.
//
// A direct HTTP request with browser-like headers is attempted first;
// both tracked storefronts render prices server-side most of the time
// and the plain request is an order of magnitude cheaper. The rendered
// fetch is the fallback, not the exception.
type PageFetcher struct {
	timeout    time.Duration
	blockTTL   time.Duration
	blockCache cache.CacheService
	log        *logger.Logger
}

// NewPageFetcher creates a fetcher. blockCache may be nil, which
// disables the per-host block gate.
func NewPageFetcher(timeout, blockTTL time.Duration, blockCache cache.CacheService) *PageFetcher {
	return &PageFetcher{
		timeout:    timeout,
		blockTTL:   blockTTL,
		blockCache: blockCache,
		log:        logger.ForFetcher(),
	}
}

// Fetch returns the rendered DOM for a URL. It fails with a fetch
// error on navigation timeout, network failure, bot blocking, or an
// error page detected via its title.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	host := helpers.HostOf(rawURL)

	if err := f.checkBlocked(host); err != nil {
		return nil, err
	}

	doc, directErr := f.fetchDirect(rawURL)
	if doc != nil {
		return doc, nil
	}
	if errors.Is(directErr, helpers.ErrBlocked) {
		f.blockHost(host)
		return nil, errs.NewFetch(host, "blocked by bot defense", directErr)
	}

	doc, err := f.fetchRendered(ctx, rawURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, helpers.ErrBlocked) {
			f.blockHost(host)
		}
		return nil, errs.NewFetch(host, fmt.Sprintf("rendered fetch of %s failed", rawURL), err)
	}
	return doc, nil
}

// fetchDirect is the plain-HTTP fast path. Except for bot blocking,
// any failure falls through to the rendered fetch, so it only logs at
// debug level.
func (f *PageFetcher) fetchDirect(rawURL string) (*goquery.Document, error) {
	body, err := helpers.FetchWithRandomHeaders(rawURL)
	if err != nil {
		f.log.Debug().Err(err).Str("url", rawURL).Msg("Direct fetch failed, falling back to rendered fetch")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		f.log.Debug().Err(err).Str("url", rawURL).Msg("Direct fetch returned unparseable HTML")
		return nil, err
	}

	title := doc.Find("title").First().Text()
	if isErrorTitle(title) {
		f.log.Debug().Str("url", rawURL).Str("title", title).Msg("Direct fetch hit an error page")
		return nil, fmt.Errorf("error page title %q", title)
	}

	return doc, nil
}

// fetchRendered drives a scoped headless Chrome instance. The
// allocator disables the automation fingerprints Chrome exposes by
// default and pins a realistic user agent.
func (f *PageFetcher) fetchRendered(ctx context.Context, rawURL string) (*goquery.Document, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(browserUserAgent),
		chromedp.Flag("accept-lang", acceptLanguage),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.NoSandbox,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, f.timeout)
	defer cancelRun()

	var title, html string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage}),
		chromedp.Navigate(rawURL),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, err
	}

	if isErrorTitle(title) {
		return nil, fmt.Errorf("error page title %q", title)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	return doc, nil
}

func (f *PageFetcher) checkBlocked(host string) error {
	if f.blockCache == nil {
		return nil
	}
	if _, err := f.blockCache.Get(blockKey(host)); err == nil {
		return errs.NewFetch(host, fmt.Sprintf("host blocked for %s after bot defense", f.blockTTL), nil)
	}
	return nil
}

func (f *PageFetcher) blockHost(host string) {
	if f.blockCache == nil {
		return
	}
	if err := f.blockCache.Set(blockKey(host), []byte("1"), f.blockTTL); err != nil {
		f.log.Warn().Err(err).Str("host", host).Msg("Failed to set host block")
	}
}

func blockKey(host string) string {
	return "block:" + host
}

func isErrorTitle(title string) bool {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return false
	}
	for _, marker := range errorTitleMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
