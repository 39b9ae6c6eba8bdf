package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
)

// levelFor logs successful calls at ok and failed ones at Warn.
func levelFor(err error, ok slog.Level) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return ok
}

var _ docrag.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler logs one line per crawl.
type LoggingCrawler struct {
	next   docrag.Crawler
	logger *slog.Logger
}

func NewLoggingCrawler(next docrag.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

func (c *LoggingCrawler) Crawl(ctx context.Context, seedURL string, maxPages int) (result docrag.CrawlResult, err error) {
	defer func(begin time.Time) {
		c.logger.Log(ctx, levelFor(err, slog.LevelInfo), "crawl",
			"url", seedURL,
			"max_pages", maxPages,
			"pages", len(result),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, seedURL, maxPages)
}

var _ docrag.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every page request. Successful fetches are logged at
// Debug since a crawl makes many of them.
type LoggingFetcher struct {
	next   docrag.Fetcher
	logger *slog.Logger
}

func NewLoggingFetcher(next docrag.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Log(ctx, levelFor(err, slog.LevelDebug), "fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

var _ docrag.SitemapService = (*LoggingSitemapService)(nil)

type LoggingSitemapService struct {
	next   docrag.SitemapService
	logger *slog.Logger
}

func NewLoggingSitemapService(next docrag.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Log(ctx, levelFor(err, slog.LevelDebug), "sitemap discovery",
			"url", baseURL,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL)
}
