package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docrag"
)

// DefaultMaxSitemapURLs bounds how many page URLs one discovery returns.
const DefaultMaxSitemapURLs = 10000

var _ docrag.SitemapService = (*SitemapService)(nil)

// SitemapService reads a site's sitemaps over HTTP. Sitemaps are located
// through robots.txt Sitemap directives, falling back to /sitemap.xml.
type SitemapService struct {
	client *http.Client

	// MaxURLs caps the number of URLs returned. Zero means
	// DefaultMaxSitemapURLs.
	MaxURLs int
}

// NewSitemapService returns a SitemapService using client, or
// http.DefaultClient when client is nil.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the sitemap URLs on baseURL's host, in sitemap order
// and without duplicates. When baseURL has a path, only URLs at or below
// that path are kept. A site without sitemaps yields an empty slice.
// Nested sitemaps that cannot be read are skipped.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "invalid base URL %q", baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	prefix := strings.TrimSuffix(base.Path, "/")

	queue, err := s.locate(ctx, root)
	if err != nil {
		return nil, err
	}

	limit := s.MaxURLs
	if limit <= 0 {
		limit = DefaultMaxSitemapURLs
	}

	urls := []string{}
	seen := make(map[string]bool)
	visited := make(map[string]bool)
	for len(queue) > 0 && len(urls) < limit {
		sitemapURL := queue[0]
		queue = queue[1:]
		if visited[sitemapURL] {
			continue
		}
		visited[sitemapURL] = true

		pages, children, err := s.read(ctx, sitemapURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		queue = append(queue, children...)

		for _, p := range pages {
			if seen[p] || !within(base.Host, prefix, p) {
				continue
			}
			seen[p] = true
			urls = append(urls, p)
			if len(urls) == limit {
				break
			}
		}
	}
	return urls, nil
}

// within reports whether rawURL is on host and, when prefix is set, at or
// below it on a path segment boundary.
func within(host, prefix, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != host {
		return false
	}
	if prefix == "" {
		return true
	}
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

// locate returns the sitemaps named in robots.txt, or /sitemap.xml when
// robots.txt names none.
func (s *SitemapService) locate(ctx context.Context, root *url.URL) ([]string, error) {
	body, err := s.get(ctx, root.JoinPath("robots.txt").String())
	if err == nil {
		defer body.Close()

		var found []string
		sc := bufio.NewScanner(body)
		for sc.Scan() {
			key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
			if ok && strings.EqualFold(strings.TrimSpace(key), "sitemap") {
				if v := strings.TrimSpace(value); v != "" {
					found = append(found, v)
				}
			}
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{root.JoinPath("sitemap.xml").String()}, nil
}

// read fetches one sitemap and returns the page URLs of a urlset or the
// child sitemaps of a sitemapindex.
func (s *SitemapService) read(ctx context.Context, sitemapURL string) (pages, children []string, err error) {
	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("decompress %s: %w", sitemapURL, err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", sitemapURL, err)
	}
	el := doc.Root()
	if el == nil {
		return nil, nil, fmt.Errorf("parse %s: no root element", sitemapURL)
	}

	switch el.Tag {
	case "sitemapindex":
		return nil, locs(el, "sitemap"), nil
	default:
		return locs(el, "url"), nil, nil
	}
}

// locs collects the trimmed <loc> text of every child element named tag.
func locs(parent *etree.Element, tag string) []string {
	var out []string
	for _, el := range parent.SelectElements(tag) {
		if loc := el.SelectElement("loc"); loc != nil {
			if v := strings.TrimSpace(loc.Text()); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}
