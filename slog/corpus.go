package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
)

// Ensure LoggingCorpusService implements docrag.CorpusService.
var _ docrag.CorpusService = (*LoggingCorpusService)(nil)

// LoggingCorpusService wraps a CorpusService with logging of its
// mutating and query operations.
type LoggingCorpusService struct {
	next   docrag.CorpusService
	logger *slog.Logger
}

// NewLoggingCorpusService creates a new LoggingCorpusService.
func NewLoggingCorpusService(next docrag.CorpusService, logger *slog.Logger) *LoggingCorpusService {
	return &LoggingCorpusService{next: next, logger: logger}
}

// CreateCorpus delegates to the wrapped service and logs the result.
func (s *LoggingCorpusService) CreateCorpus(ctx context.Context, label, description string) (corpus *docrag.Corpus, err error) {
	defer func(begin time.Time) {
		var handle string
		if corpus != nil {
			handle = corpus.Handle
		}
		s.logger.Info("create corpus",
			"label", label,
			"handle", handle,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateCorpus(ctx, label, description)
}

func (s *LoggingCorpusService) FindCorpus(ctx context.Context, handle string) (*docrag.Corpus, error) {
	return s.next.FindCorpus(ctx, handle)
}

// ImportFiles delegates to the wrapped service and logs the batch.
func (s *LoggingCorpusService) ImportFiles(ctx context.Context, handle string, addresses []string, opts docrag.ImportOptions) (n int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("import files",
			"handle", handle,
			"files", len(addresses),
			"imported", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ImportFiles(ctx, handle, addresses, opts)
}

// Query delegates to the wrapped service and logs the lookup.
func (s *LoggingCorpusService) Query(ctx context.Context, handle, text string, topK int) (snippets []string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("query corpus",
			"handle", handle,
			"top_k", topK,
			"count", len(snippets),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Query(ctx, handle, text, topK)
}

func (s *LoggingCorpusService) ListCorpora(ctx context.Context) ([]*docrag.Corpus, error) {
	return s.next.ListCorpora(ctx)
}

// DeleteCorpus delegates to the wrapped service and logs the removal.
func (s *LoggingCorpusService) DeleteCorpus(ctx context.Context, handle string) (err error) {
	defer func() {
		s.logger.Info("delete corpus", "handle", handle, "err", err)
	}()
	return s.next.DeleteCorpus(ctx, handle)
}
