package crawl

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docrag"
)

// SelectFetcher fetches probeURL with both fetchers and returns browser when
// JavaScript rendering adds meaningful content, static otherwise. If one of
// the fetchers fails the other is returned.
func SelectFetcher(ctx context.Context, probeURL string, static, browser docrag.Fetcher, extractor docrag.Extractor, logger *slog.Logger) docrag.Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	staticHTML, err := static.Fetch(ctx, probeURL)
	if err != nil {
		logger.Info("fetcher probe", "url", probeURL, "choice", "browser", "reason", "static fetch failed", "err", err)
		return browser
	}

	browserHTML, err := browser.Fetch(ctx, probeURL)
	if err != nil {
		logger.Info("fetcher probe", "url", probeURL, "choice", "static", "reason", "browser fetch failed", "err", err)
		return static
	}

	if ContentDiffers(staticHTML, browserHTML, extractor) {
		logger.Info("fetcher probe", "url", probeURL, "choice", "browser")
		return browser
	}
	logger.Info("fetcher probe", "url", probeURL, "choice", "static")
	return static
}

// ContentDiffers compares the main content extracted from statically fetched
// HTML against browser-rendered HTML. It returns true if the rendered content
// is more than 50% longer, or if extraction fails on either side.
func ContentDiffers(staticHTML, renderedHTML string, extractor docrag.Extractor) bool {
	staticResult, err := extractor.Extract(staticHTML)
	if err != nil {
		return true
	}

	renderedResult, err := extractor.Extract(renderedHTML)
	if err != nil {
		return true
	}

	staticLen := len(staticResult.ContentHTML)
	renderedLen := len(renderedResult.ContentHTML)

	if staticLen == 0 && renderedLen > 0 {
		return true
	}

	return float64(renderedLen) > float64(staticLen)*1.5
}

// Ensure AutoCrawler implements docrag.Crawler at compile time.
var _ docrag.Crawler = (*AutoCrawler)(nil)

// AutoCrawler probes each seed URL with SelectFetcher and crawls with the
// chosen fetcher. Crawler's own Fetcher field is ignored.
type AutoCrawler struct {
	Crawler   Crawler
	Static    docrag.Fetcher
	Browser   docrag.Fetcher
	Extractor docrag.Extractor
}

// Crawl implements docrag.Crawler.
func (a *AutoCrawler) Crawl(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
	if _, err := ParseSeed(seedURL); err != nil {
		return nil, err
	}

	c := a.Crawler
	c.Fetcher = SelectFetcher(ctx, seedURL, a.Static, a.Browser, a.Extractor, c.Logger)
	return c.Crawl(ctx, seedURL, maxPages)
}
