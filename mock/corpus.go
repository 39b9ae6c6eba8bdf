package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.CorpusService = (*CorpusService)(nil)

// CorpusService is a mock implementation of docrag.CorpusService.
type CorpusService struct {
	CreateCorpusFn func(ctx context.Context, label, description string) (*docrag.Corpus, error)
	FindCorpusFn   func(ctx context.Context, handle string) (*docrag.Corpus, error)
	ImportFilesFn  func(ctx context.Context, handle string, addresses []string, opts docrag.ImportOptions) (int, error)
	QueryFn        func(ctx context.Context, handle, text string, topK int) ([]string, error)
	ListCorporaFn  func(ctx context.Context) ([]*docrag.Corpus, error)
	DeleteCorpusFn func(ctx context.Context, handle string) error
}

func (s *CorpusService) CreateCorpus(ctx context.Context, label, description string) (*docrag.Corpus, error) {
	return s.CreateCorpusFn(ctx, label, description)
}

func (s *CorpusService) FindCorpus(ctx context.Context, handle string) (*docrag.Corpus, error) {
	return s.FindCorpusFn(ctx, handle)
}

func (s *CorpusService) ImportFiles(ctx context.Context, handle string, addresses []string, opts docrag.ImportOptions) (int, error) {
	return s.ImportFilesFn(ctx, handle, addresses, opts)
}

func (s *CorpusService) Query(ctx context.Context, handle, text string, topK int) ([]string, error) {
	return s.QueryFn(ctx, handle, text, topK)
}

func (s *CorpusService) ListCorpora(ctx context.Context) ([]*docrag.Corpus, error) {
	return s.ListCorporaFn(ctx)
}

func (s *CorpusService) DeleteCorpus(ctx context.Context, handle string) error {
	return s.DeleteCorpusFn(ctx, handle)
}

var _ docrag.CorpusRegistry = (*CorpusRegistry)(nil)

// CorpusRegistry is a mock implementation of docrag.CorpusRegistry.
type CorpusRegistry struct {
	LookupFn     func(label string) (string, bool)
	LabelsFn     func() []string
	RegisterFn   func(ctx context.Context, label, handle string) error
	UnregisterFn func(ctx context.Context, label string) error
}

func (r *CorpusRegistry) Lookup(label string) (string, bool) {
	return r.LookupFn(label)
}

func (r *CorpusRegistry) Labels() []string {
	return r.LabelsFn()
}

func (r *CorpusRegistry) Register(ctx context.Context, label, handle string) error {
	return r.RegisterFn(ctx, label, handle)
}

func (r *CorpusRegistry) Unregister(ctx context.Context, label string) error {
	return r.UnregisterFn(ctx, label)
}
