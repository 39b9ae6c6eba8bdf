// Package ingest stages text units in blob storage and imports them into
// corpora in fixed-size batches.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docrag"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults for Workflow.
const (
	DefaultCleanupConcurrency = 10
	DefaultStagingPrefix      = "staging/"
	stagedContentType         = "text/plain; charset=utf-8"
)

// Ensure Workflow implements docrag.Ingester at compile time.
var _ docrag.Ingester = (*Workflow)(nil)

// Workflow turns text units into indexed corpus content. Each run stages
// its units under its own prefix, submits them in batches, and removes
// everything under that prefix before returning, whatever the outcome.
type Workflow struct {
	Staging  docrag.StagingStore
	Corpora  docrag.CorpusService
	Registry docrag.CorpusRegistry

	// BatchSize is the number of staged files per import call.
	// Zero means docrag.DefaultBatchSize.
	BatchSize int

	// CleanupConcurrency bounds parallel staging deletions.
	// Zero means DefaultCleanupConcurrency.
	CleanupConcurrency int

	// ImportOptions are passed to every import call. The zero value means
	// docrag.DefaultImportOptions.
	ImportOptions docrag.ImportOptions

	// StagingPrefix namespaces run prefixes. Empty means DefaultStagingPrefix.
	StagingPrefix string

	Logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*labelLock
}

type labelLock struct {
	mu   sync.Mutex
	refs int
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

func (w *Workflow) batchSize() int {
	if w.BatchSize <= 0 {
		return docrag.DefaultBatchSize
	}
	return w.BatchSize
}

func (w *Workflow) cleanupConcurrency() int {
	if w.CleanupConcurrency <= 0 {
		return DefaultCleanupConcurrency
	}
	return w.CleanupConcurrency
}

func (w *Workflow) importOptions() docrag.ImportOptions {
	if w.ImportOptions == (docrag.ImportOptions{}) {
		return docrag.DefaultImportOptions()
	}
	return w.ImportOptions
}

func (w *Workflow) stagingPrefix() string {
	if w.StagingPrefix == "" {
		return DefaultStagingPrefix
	}
	return w.StagingPrefix
}

// Ingest stages units and imports them into the corpus with the given
// handle. Blank units are dropped; if none remain it fails with EINVALID
// before any storage call.
//
// A failed batch is recorded in the outcome and does not stop later
// batches. Ingest fails with EINTERNAL if every batch failed, and the
// outcome is returned alongside that error.
func (w *Workflow) Ingest(ctx context.Context, handle string, units []docrag.TextUnit) (outcome *docrag.ImportOutcome, err error) {
	if handle == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "corpus handle required")
	}
	units = docrag.NonBlank(units)
	if len(units) == 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "nothing to import")
	}

	prefix := w.stagingPrefix() + uuid.NewString() + "/"
	outcome = &docrag.ImportOutcome{
		Handle:    handle,
		Submitted: len(units),
		Bytes:     docrag.TotalBytes(units),
	}

	var keys []string
	defer func() {
		w.cleanup(context.WithoutCancel(ctx), prefix, keys)
	}()

	start := time.Now()
	addresses := make([]string, 0, len(units))
	for i, u := range units {
		key := StagingKey(prefix, i, u.Source)
		keys = append(keys, key)

		addr, err := w.Staging.Put(ctx, key, []byte(u.Text), stagedContentType)
		if err != nil {
			return outcome, fmt.Errorf("staging %s: %w", u.Source, err)
		}
		addresses = append(addresses, addr)
	}

	opts := w.importOptions()
	for i, batch := range Batches(addresses, w.batchSize()) {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		imported, err := w.Corpora.ImportFiles(ctx, handle, batch, opts)
		outcome.Batches = append(outcome.Batches, docrag.BatchOutcome{
			Index:     i,
			Addresses: batch,
			Imported:  imported,
			Err:       err,
		})
		if err != nil {
			w.logger().Warn("import batch failed", "handle", handle, "batch", i, "files", len(batch), "error", err)
			continue
		}
		outcome.Imported += imported
	}

	if !outcome.Succeeded() {
		return outcome, docrag.Errorf(docrag.EINTERNAL, "import failed: all %d batches failed", len(outcome.Batches))
	}

	w.logger().Info("import finished",
		"handle", handle,
		"submitted", outcome.Submitted,
		"imported", outcome.Imported,
		"failed_batches", len(outcome.FailedBatches()),
		"duration", time.Since(start))
	return outcome, nil
}

// IngestAsNewCorpus reuses the corpus registered for label or creates one,
// ingests units into it, and registers the label after a successful
// import. Calls for the same label are serialized.
func (w *Workflow) IngestAsNewCorpus(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "corpus label required")
	}
	if len(docrag.NonBlank(units)) == 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "nothing to import")
	}

	unlock := w.lockLabel(label)
	defer unlock()

	handle, ok := w.Registry.Lookup(label)
	if !ok {
		corpus, err := w.Corpora.CreateCorpus(ctx, label, description)
		if err != nil {
			return nil, fmt.Errorf("creating corpus %q: %w", label, err)
		}
		handle = corpus.Handle
	}

	outcome, err := w.Ingest(ctx, handle, units)
	if err != nil {
		return outcome, err
	}

	if err := w.Registry.Register(ctx, label, handle); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// IngestIntoCorpus ingests units into the corpus registered under label.
func (w *Workflow) IngestIntoCorpus(ctx context.Context, label string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
	handle, ok := w.Registry.Lookup(strings.TrimSpace(label))
	if !ok {
		return nil, docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", label)
	}
	return w.Ingest(ctx, handle, units)
}

// lockLabel serializes callers working on the same label and returns the
// matching unlock function.
func (w *Workflow) lockLabel(label string) func() {
	w.mu.Lock()
	if w.locks == nil {
		w.locks = make(map[string]*labelLock)
	}
	l, ok := w.locks[label]
	if !ok {
		l = &labelLock{}
		w.locks[label] = l
	}
	l.refs++
	w.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		w.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(w.locks, label)
		}
		w.mu.Unlock()
	}
}

// cleanup deletes the run's staged objects, then sweeps anything else left
// under its prefix. Failures are logged; they never change the outcome.
func (w *Workflow) cleanup(ctx context.Context, prefix string, keys []string) {
	err := w.deleteAll(ctx, keys)

	leftover, listErr := w.Staging.List(ctx, prefix)
	if listErr != nil {
		err = errors.Join(err, listErr)
	} else if len(leftover) > 0 {
		err = errors.Join(err, w.deleteAll(ctx, leftover))
	}

	if err != nil {
		w.logger().Error("staging cleanup incomplete", "prefix", prefix, "error", err)
		return
	}
	w.logger().Debug("staging cleaned up", "prefix", prefix, "deleted", len(keys)+len(leftover))
}

func (w *Workflow) deleteAll(ctx context.Context, keys []string) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(w.cleanupConcurrency())
	for _, key := range keys {
		g.Go(func() error {
			if err := w.Staging.Delete(ctx, key); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// StagingKey names the staged object for the unit at index i. The name
// depends only on the run prefix, position and source, never on content.
func StagingKey(prefix string, i int, source string) string {
	return fmt.Sprintf("%s%04d-%016x.txt", prefix, i, xxhash.Sum64String(source))
}

// Batches splits items into consecutive slices of at most size elements.
func Batches(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	var out [][]string
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}
