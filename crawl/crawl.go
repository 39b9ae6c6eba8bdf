// Package crawl discovers documentation pages by breadth-first traversal of
// a site's link graph, restricted to the seed URL's host.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docrag"
)

// Ensure Crawler implements docrag.Crawler at compile time.
var _ docrag.Crawler = (*Crawler)(nil)

// Crawler performs a sequential breadth-first crawl starting at a seed URL.
type Crawler struct {
	Fetcher docrag.Fetcher
	Parser  docrag.PageParser

	// RateLimiter throttles requests per host. Optional.
	RateLimiter docrag.DomainLimiter

	// Sitemaps, when set, appends the seed site's sitemap URLs to the
	// frontier right after the seed. Optional.
	Sitemaps docrag.SitemapService

	// RetryDelays are the waits between fetch attempts.
	// Nil or empty means each page is fetched once.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Crawl visits at most maxPages distinct pages reachable from seedURL and
// returns the non-empty text extracted from each.
//
// Fetch and parse failures are logged and skipped. An empty result is not
// an error; callers decide how to report it.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
	seed, err := ParseSeed(seedURL)
	if err != nil {
		return nil, err
	}
	if maxPages < 1 {
		return nil, docrag.Errorf(docrag.EINVALID, "max pages must be positive")
	}

	logger := c.logger()
	frontier := NewFrontier()
	frontier.Push(seed.String())
	if c.Sitemaps != nil {
		c.pushSitemapURLs(ctx, seed, frontier)
	}

	visited := NewVisitedSet()
	result := make(docrag.CrawlResult)

	for frontier.Len() > 0 && visited.Len() < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL, _ := frontier.Pop()
		if visited.Contains(pageURL) {
			continue
		}
		visited.Add(pageURL)

		page := c.visit(ctx, pageURL)
		if page == nil {
			continue
		}
		if page.Text != "" {
			result[pageURL] = page.Text
		}
		for _, link := range ScopeLinks(seed, page.Links) {
			frontier.Push(link)
		}
	}

	logger.Info("crawl finished",
		"seed", seed.String(),
		"visited", visited.Len(),
		"pages", len(result),
		"pending", frontier.Len(),
	)
	return result, nil
}

// visit fetches and parses one page. It returns nil when the page could not
// be retrieved or parsed.
func (c *Crawler) visit(ctx context.Context, pageURL string) *docrag.ParsedPage {
	logger := c.logger()

	if c.RateLimiter != nil {
		if u, err := url.Parse(pageURL); err == nil {
			if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
				logger.Warn("rate limit wait failed", "url", pageURL, "err", err)
				return nil
			}
		}
	}

	html, err := FetchWithRetry(ctx, pageURL, c.Fetcher.Fetch, logger, c.RetryDelays)
	if err != nil {
		logger.Warn("fetch failed", "url", pageURL, "err", err)
		return nil
	}

	page, err := c.Parser.Parse(html)
	if err != nil {
		logger.Warn("parse failed", "url", pageURL, "err", err)
		return nil
	}
	return page
}

func (c *Crawler) pushSitemapURLs(ctx context.Context, seed *url.URL, frontier *Frontier) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, seed.String())
	if err != nil {
		c.logger().Warn("sitemap discovery failed", "url", seed.String(), "err", err)
		return
	}
	for _, link := range ScopeLinks(seed, urls) {
		frontier.Push(link)
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// ParseSeed validates a crawl seed. The seed must be an absolute http(s)
// URL. An empty path is normalized to "/" and any fragment is dropped.
func ParseSeed(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, docrag.Errorf(docrag.EINVALID, "invalid seed URL %q", rawURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "seed URL must be an absolute http(s) URL: %q", rawURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	return u, nil
}

// ScopeLinks resolves hrefs against seed, drops anything not on the seed's
// exact host (subdomains and other ports are different hosts), strips
// fragments and removes duplicates while keeping first-seen order.
func ScopeLinks(seed *url.URL, hrefs []string) []string {
	seen := make(map[string]bool, len(hrefs))
	var links []string
	for _, href := range hrefs {
		if href == "" || isNonHTTPLink(href) {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		resolved := seed.ResolveReference(ref)
		resolved.Fragment = ""
		if resolved.Host != seed.Host {
			continue
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		if resolved.Path == "" {
			resolved.Path = "/"
		}
		link := resolved.String()
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
