package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docrag"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	q := docrag.Question{Query: c.Question, Mode: docrag.ModeAuto}
	if len(c.Corpus) > 0 {
		q.Mode = docrag.ModeManual
		q.Labels = c.Corpus
	}

	answer, err := deps.Asker.Ask(deps.Ctx, q)
	if err != nil {
		return fail(deps, err)
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	if sources := labelsFor(deps.Registry, answer.Handles); len(sources) > 0 {
		fmt.Fprintf(deps.Stdout, "\nSources: %s\n", strings.Join(sources, ", "))
	}
	return nil
}

// labelsFor maps handles back to registered labels. Handles without a
// label are shown as is.
func labelsFor(registry docrag.CorpusRegistry, handles []string) []string {
	byHandle := make(map[string]string)
	for _, label := range registry.Labels() {
		if h, ok := registry.Lookup(label); ok {
			byHandle[h] = label
		}
	}

	out := make([]string, 0, len(handles))
	for _, h := range handles {
		if label, ok := byHandle[h]; ok {
			out = append(out, label)
			continue
		}
		out = append(out, h)
	}
	return out
}
