package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.Ingester = (*Ingester)(nil)

// Ingester is a mock implementation of docrag.Ingester.
type Ingester struct {
	IngestFn            func(ctx context.Context, handle string, units []docrag.TextUnit) (*docrag.ImportOutcome, error)
	IngestAsNewCorpusFn func(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error)
	IngestIntoCorpusFn  func(ctx context.Context, label string, units []docrag.TextUnit) (*docrag.ImportOutcome, error)
}

func (i *Ingester) Ingest(ctx context.Context, handle string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
	return i.IngestFn(ctx, handle, units)
}

func (i *Ingester) IngestAsNewCorpus(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
	return i.IngestAsNewCorpusFn(ctx, label, description, units)
}

func (i *Ingester) IngestIntoCorpus(ctx context.Context, label string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
	return i.IngestIntoCorpusFn(ctx, label, units)
}
