package docrag

import "context"

// Crawler visits pages breadth-first from a seed URL, staying on the seed's
// host, and returns the text of every page that yielded any.
type Crawler interface {
	Crawl(ctx context.Context, seedURL string, maxPages int) (CrawlResult, error)
}

// Fetcher downloads the HTML of a single page. A browser-backed Fetcher
// returns the DOM after scripts have run.
type Fetcher interface {
	// Fetch returns the HTML at url. Non-2xx responses are errors.
	Fetch(ctx context.Context, url string) (html string, err error)

	Close() error
}

// SitemapService lists the page URLs a site publishes in its sitemaps.
type SitemapService interface {
	// DiscoverURLs returns same-host URLs found via robots.txt sitemap
	// directives or /sitemap.xml, following sitemap indexes.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}

// DomainLimiter spaces out requests to the same host.
type DomainLimiter interface {
	// Wait blocks until a request to domain may proceed or ctx is done.
	Wait(ctx context.Context, domain string) error
}

// ParsedPage is what the crawler keeps from one HTML page.
type ParsedPage struct {
	// Text is the paragraph text followed by the heading text, trimmed.
	Text string

	// Links holds every anchor href in document order, unresolved.
	Links []string
}

// PageParser reads text and outbound links from HTML.
type PageParser interface {
	Parse(html string) (*ParsedPage, error)
}
