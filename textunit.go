package docrag

import (
	"sort"
	"strings"
)

// CrawlResult maps absolute page URLs to their extracted text.
// Pages whose text was empty are never stored.
type CrawlResult map[string]string

// TextUnits returns the result as text units ordered by URL.
func (r CrawlResult) TextUnits() []TextUnit {
	return TextUnitsFromMap(r)
}

// Scraped returns the result as text units, or ENOTFOUND "nothing scraped"
// when no page yielded text.
func (r CrawlResult) Scraped() ([]TextUnit, error) {
	units := r.TextUnits()
	if len(units) == 0 {
		return nil, Errorf(ENOTFOUND, "nothing scraped")
	}
	return units, nil
}

// TextUnit is a single named piece of text destined for indexing.
// Source is the page URL or the uploaded file name.
type TextUnit struct {
	Source string
	Text   string
}

// Blank reports whether the unit carries no indexable text.
func (u TextUnit) Blank() bool {
	return strings.TrimSpace(u.Text) == ""
}

// TextUnitsFromMap converts a source-to-text mapping into text units
// ordered by source name. Blank entries are dropped.
func TextUnitsFromMap(m map[string]string) []TextUnit {
	units := make([]TextUnit, 0, len(m))
	for source, text := range m {
		u := TextUnit{Source: source, Text: text}
		if u.Blank() {
			continue
		}
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Source < units[j].Source })
	return units
}

// NonBlank returns the units that carry indexable text, preserving order.
func NonBlank(units []TextUnit) []TextUnit {
	var out []TextUnit
	for _, u := range units {
		if !u.Blank() {
			out = append(out, u)
		}
	}
	return out
}

// TotalBytes returns the combined size of the units' text.
func TotalBytes(units []TextUnit) int {
	var n int
	for _, u := range units {
		n += len(u.Text)
	}
	return n
}
