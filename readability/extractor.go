// Package readability implements docrag.Extractor with go-readability. It
// backs up the trafilatura extractor when parsing uploaded HTML.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/docrag"
	"github.com/go-shiori/go-readability"
)

var _ docrag.Extractor = (*Extractor)(nil)

// Extractor finds the article body of an HTML page.
type Extractor struct {
	// PageURL resolves relative links and image sources. Optional.
	PageURL *url.URL
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's article content. Input without any
// non-whitespace characters is EINVALID.
func (e *Extractor) Extract(html string) (*docrag.ExtractResult, error) {
	if strings.TrimSpace(html) == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "empty HTML input")
	}

	a, err := readability.FromReader(strings.NewReader(html), e.PageURL)
	if err != nil {
		return nil, err
	}
	return &docrag.ExtractResult{
		Title:       strings.TrimSpace(a.Title),
		ContentHTML: a.Content,
		Text:        strings.TrimSpace(a.TextContent),
	}, nil
}
