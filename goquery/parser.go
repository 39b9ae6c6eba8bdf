// Package goquery implements docrag.PageParser using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docrag"
)

// headingSelector matches heading levels 1 through 6.
const headingSelector = "h1, h2, h3, h4, h5, h6"

// Ensure Parser implements docrag.PageParser at compile time.
var _ docrag.PageParser = (*Parser)(nil)

// Parser extracts paragraph and heading text plus anchor hrefs from HTML.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the text of all paragraphs followed by the text of all
// headings, joined by single spaces, and the raw href of every anchor in
// document order.
func (p *Parser) Parse(html string) (*docrag.ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docrag.Errorf(docrag.EINVALID, "failed to parse HTML: %v", err)
	}

	var parts []string
	collect := func(_ int, sel *goquery.Selection) {
		if text := normalizeSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	doc.Find("p").Each(collect)
	doc.Find(headingSelector).Each(collect)

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href = strings.TrimSpace(href); href != "" {
			links = append(links, href)
		}
	})

	return &docrag.ParsedPage{
		Text:  strings.Join(parts, " "),
		Links: links,
	}, nil
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
