package main

import (
	"fmt"

	"github.com/fwojciec/docrag"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docrag.Errorf(docrag.EINVALID, "use --force to confirm deletion")
	}

	handle, ok := deps.Registry.Lookup(c.Label)
	if !ok {
		fmt.Fprintf(deps.Stderr, "error: corpus %q not found. Use 'docrag list' to see available corpora.\n", c.Label)
		return docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", c.Label)
	}

	if err := deps.Corpora.DeleteCorpus(deps.Ctx, handle); err != nil && docrag.ErrorCode(err) != docrag.ENOTFOUND {
		return fail(deps, err)
	}
	if err := deps.Registry.Unregister(deps.Ctx, c.Label); err != nil {
		return fail(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Deleted corpus %q\n", c.Label)
	return nil
}
