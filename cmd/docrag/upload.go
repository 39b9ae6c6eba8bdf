package main

import (
	"fmt"
)

// Run executes the upload command. Files are parsed up front so that an
// unsupported file fails the upload before anything is staged.
func (c *UploadCmd) Run(deps *Dependencies) error {
	units, err := deps.Files.LoadFiles(c.Files)
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Uploading %d files\n", len(units))

	outcome, err := deps.Ingester.IngestAsNewCorpus(deps.Ctx, c.Label, c.Description, units)
	return report(deps, c.Label, units, outcome, err)
}
