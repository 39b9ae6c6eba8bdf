package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of docrag.Crawler.
type Crawler struct {
	CrawlFn func(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error)
}

func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
	return c.CrawlFn(ctx, seedURL, maxPages)
}

var _ docrag.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docrag.Fetcher. A nil CloseFn makes
// Close a no-op.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ docrag.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docrag.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}

var _ docrag.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of docrag.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ docrag.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of docrag.PageParser.
type PageParser struct {
	ParseFn func(html string) (*docrag.ParsedPage, error)
}

func (p *PageParser) Parse(html string) (*docrag.ParsedPage, error) {
	return p.ParseFn(html)
}
