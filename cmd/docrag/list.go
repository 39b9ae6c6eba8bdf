package main

import (
	"fmt"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	labels := deps.Registry.Labels()
	registered := make(map[string]bool, len(labels))
	for _, label := range labels {
		handle, _ := deps.Registry.Lookup(label)
		registered[handle] = true
	}

	corpora, err := deps.Corpora.ListCorpora(deps.Ctx)
	if err != nil {
		return fail(deps, err)
	}

	if len(labels) == 0 && len(corpora) == 0 {
		fmt.Fprintln(deps.Stdout, "No corpora found. Use 'docrag crawl' or 'docrag upload' to create one.")
		return nil
	}

	for _, label := range labels {
		handle, _ := deps.Registry.Lookup(label)
		fmt.Fprintf(deps.Stdout, "%s  %s\n", label, handle)
	}
	for _, corpus := range corpora {
		if registered[corpus.Handle] {
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  (unregistered)\n", corpus.Label, corpus.Handle)
	}
	return nil
}
