package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
)

// Ensure LoggingStagingStore implements docrag.StagingStore.
var _ docrag.StagingStore = (*LoggingStagingStore)(nil)

// LoggingStagingStore wraps a StagingStore with debug logging.
// Reads are not logged; the corpus service issues one per staged file.
type LoggingStagingStore struct {
	next   docrag.StagingStore
	logger *slog.Logger
}

// NewLoggingStagingStore creates a new LoggingStagingStore.
func NewLoggingStagingStore(next docrag.StagingStore, logger *slog.Logger) *LoggingStagingStore {
	return &LoggingStagingStore{next: next, logger: logger}
}

// Put delegates to the wrapped store and logs the upload.
func (s *LoggingStagingStore) Put(ctx context.Context, key string, data []byte, contentType string) (address string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("staging put",
			"key", key,
			"bytes", len(data),
			"address", address,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Put(ctx, key, data, contentType)
}

func (s *LoggingStagingStore) Read(ctx context.Context, address string) ([]byte, error) {
	return s.next.Read(ctx, address)
}

// Delete delegates to the wrapped store and logs the removal.
func (s *LoggingStagingStore) Delete(ctx context.Context, key string) (err error) {
	defer func() {
		s.logger.Debug("staging delete", "key", key, "err", err)
	}()
	return s.next.Delete(ctx, key)
}

// List delegates to the wrapped store and logs the listing.
func (s *LoggingStagingStore) List(ctx context.Context, prefix string) (keys []string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("staging list",
			"prefix", prefix,
			"count", len(keys),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.List(ctx, prefix)
}
