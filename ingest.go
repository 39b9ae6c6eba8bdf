package docrag

import "context"

// DefaultBatchSize is the number of staged files submitted per import call.
const DefaultBatchSize = 25

// BatchOutcome records the result of one import call.
type BatchOutcome struct {
	// Index is the zero-based position of the batch in submission order.
	Index int

	// Addresses are the staging addresses submitted in this batch.
	Addresses []string

	// Imported is the count reported by the corpus service.
	Imported int

	// Err is set when the import call failed.
	Err error
}

// Failed reports whether the batch import call failed.
func (b BatchOutcome) Failed() bool {
	return b.Err != nil
}

// ImportOutcome summarizes one ingestion run.
type ImportOutcome struct {
	// Handle is the corpus the text was imported into.
	Handle string

	// Submitted is the number of text units staged and submitted.
	Submitted int

	// Imported is the total count of files the corpus service accepted.
	Imported int

	// Bytes is the combined size of the submitted text.
	Bytes int

	// Batches lists every import call in submission order.
	Batches []BatchOutcome
}

// Succeeded reports whether at least one batch was imported.
func (o *ImportOutcome) Succeeded() bool {
	for _, b := range o.Batches {
		if !b.Failed() {
			return true
		}
	}
	return false
}

// FailedBatches returns the batches whose import call failed, so they can
// be retried without resubmitting everything.
func (o *ImportOutcome) FailedBatches() []BatchOutcome {
	var failed []BatchOutcome
	for _, b := range o.Batches {
		if b.Failed() {
			failed = append(failed, b)
		}
	}
	return failed
}

// Ingester stages text units and imports them into corpora.
type Ingester interface {
	// Ingest imports units into the corpus with the given handle.
	Ingest(ctx context.Context, handle string, units []TextUnit) (*ImportOutcome, error)

	// IngestAsNewCorpus obtains or creates the corpus for label, imports
	// units into it, and registers the label once the import succeeded.
	IngestAsNewCorpus(ctx context.Context, label, description string, units []TextUnit) (*ImportOutcome, error)

	// IngestIntoCorpus imports units into the corpus already registered
	// under label. Returns ENOTFOUND if the label is unknown.
	IngestIntoCorpus(ctx context.Context, label string, units []TextUnit) (*ImportOutcome, error)
}
