package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/docrag"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	units, err := scrape(deps, c.URL, c.maxPages(deps.Config))
	if err != nil {
		return fail(deps, err)
	}

	outcome, err := deps.Ingester.IngestAsNewCorpus(deps.Ctx, c.Label, c.Description, units)
	return report(deps, c.Label, units, outcome, err)
}

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	if _, ok := deps.Registry.Lookup(c.Label); !ok {
		fmt.Fprintf(deps.Stderr, "error: corpus %q not found. Use 'docrag list' to see available corpora.\n", c.Label)
		return docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", c.Label)
	}

	units, err := scrape(deps, c.URL, c.maxPages(deps.Config))
	if err != nil {
		return fail(deps, err)
	}

	outcome, err := deps.Ingester.IngestIntoCorpus(deps.Ctx, c.Label, units)
	return report(deps, c.Label, units, outcome, err)
}

func scrape(deps *Dependencies, seedURL string, maxPages int) ([]docrag.TextUnit, error) {
	fmt.Fprintf(deps.Stdout, "Crawling %s (up to %d pages)\n", seedURL, maxPages)

	result, err := deps.Crawler.Crawl(deps.Ctx, seedURL, maxPages)
	if err != nil {
		return nil, err
	}
	units, err := result.Scraped()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(deps.Stdout, "  Scraped %d pages (%s)\n", len(units), formatBytes(docrag.TotalBytes(units)))
	return units, nil
}

// report prints the import outcome, if any, and returns err.
func report(deps *Dependencies, label string, units []docrag.TextUnit, outcome *docrag.ImportOutcome, err error) error {
	if outcome != nil && len(outcome.Batches) > 0 {
		printOutcome(deps.Stdout, label, outcome, countTokens(deps, units))
	}
	if err != nil {
		return fail(deps, err)
	}
	return nil
}

func printOutcome(w io.Writer, label string, o *docrag.ImportOutcome, tokens int) {
	fmt.Fprintf(w, "Imported %d of %d files into %q (%s)\n", o.Imported, o.Submitted, label, o.Handle)
	fmt.Fprintf(w, "  Submitted %s, %s\n", formatBytes(o.Bytes), formatTokens(tokens))

	failed := o.FailedBatches()
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "  %d of %d batches failed:", len(failed), len(o.Batches))
	for _, b := range failed {
		fmt.Fprintf(w, " %d", b.Index)
	}
	fmt.Fprintln(w)
}

// countTokens totals tokens across units. Without a counter, or when it
// fails, the count is estimated at four bytes per token.
func countTokens(deps *Dependencies, units []docrag.TextUnit) int {
	estimate := docrag.TotalBytes(units) / 4
	if deps.Tokens == nil {
		return estimate
	}

	var total int
	for _, u := range units {
		n, err := deps.Tokens.CountTokens(deps.Ctx, u.Text)
		if err != nil {
			deps.logger().Debug("token count failed, using estimate", "source", u.Source, "err", err)
			return estimate
		}
		total += n
	}
	return total
}

func fail(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", docrag.ErrorMessage(err))
	return err
}
