package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docrag"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// HandlePrefix prefixes every corpus handle issued by CorpusService.
const HandlePrefix = "corpora/"

// DefaultImportWorkers is the number of staged files read and embedded
// concurrently during an import.
const DefaultImportWorkers = 4

// Compile-time interface verification.
var _ docrag.CorpusService = (*CorpusService)(nil)

// CorpusService implements docrag.CorpusService using SQLite. Imported files
// are read from staging, split into chunks, embedded, and stored; queries
// rank chunks by cosine similarity.
type CorpusService struct {
	db       *DB
	staging  docrag.StagingStore
	embedder docrag.Embedder

	// ImportWorkers bounds concurrent file processing during ImportFiles.
	ImportWorkers int

	Logger *slog.Logger
}

// NewCorpusService creates a new CorpusService.
func NewCorpusService(db *DB, staging docrag.StagingStore, embedder docrag.Embedder) *CorpusService {
	return &CorpusService{
		db:            db,
		staging:       staging,
		embedder:      embedder,
		ImportWorkers: DefaultImportWorkers,
	}
}

func (s *CorpusService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// CreateCorpus creates a corpus, or returns the existing one if the label
// is taken. The UNIQUE constraint on label makes this safe under
// concurrent callers.
func (s *CorpusService) CreateCorpus(ctx context.Context, label, description string) (*docrag.Corpus, error) {
	corpus := &docrag.Corpus{
		Handle:      HandlePrefix + uuid.New().String(),
		Label:       strings.TrimSpace(label),
		Description: description,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := corpus.Validate(); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corpora (handle, label, description, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(label) DO NOTHING
	`, corpus.Handle, corpus.Label, corpus.Description, corpus.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return s.findCorpus(ctx, "label", corpus.Label)
}

// FindCorpus retrieves a corpus by handle.
func (s *CorpusService) FindCorpus(ctx context.Context, handle string) (*docrag.Corpus, error) {
	return s.findCorpus(ctx, "handle", handle)
}

func (s *CorpusService) findCorpus(ctx context.Context, column, value string) (*docrag.Corpus, error) {
	var corpus docrag.Corpus
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT handle, label, description, created_at
		FROM corpora
		WHERE `+column+` = ?
	`, value).Scan(&corpus.Handle, &corpus.Label, &corpus.Description, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docrag.Errorf(docrag.ENOTFOUND, "corpus not found")
	}
	if err != nil {
		return nil, err
	}

	corpus.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &corpus, nil
}

// ListCorpora returns all corpora ordered by label.
func (s *CorpusService) ListCorpora(ctx context.Context) ([]*docrag.Corpus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle, label, description, created_at
		FROM corpora
		ORDER BY label
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corpora []*docrag.Corpus
	for rows.Next() {
		var corpus docrag.Corpus
		var createdAt string
		if err := rows.Scan(&corpus.Handle, &corpus.Label, &corpus.Description, &createdAt); err != nil {
			return nil, err
		}
		if corpus.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		corpora = append(corpora, &corpus)
	}
	return corpora, rows.Err()
}

// DeleteCorpus removes a corpus and, through the foreign key cascade, all
// of its chunks.
func (s *CorpusService) DeleteCorpus(ctx context.Context, handle string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM corpora WHERE handle = ?`, handle)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return docrag.Errorf(docrag.ENOTFOUND, "corpus not found")
	}
	return nil
}

// CountChunks returns the number of chunks stored for a corpus.
func (s *CorpusService) CountChunks(ctx context.Context, handle string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE handle = ?`, handle).Scan(&n)
	return n, err
}

// embeddedFile is one staged file after splitting and embedding.
type embeddedFile struct {
	address string
	chunks  []string
	vectors [][]float32
	err     error
}

// ImportFiles reads each staged file, splits it into chunks, embeds them and
// stores the result. A file that cannot be read or embedded is logged and
// skipped; the call fails only if no file could be imported. Chunks whose
// content already exists in the corpus are not stored twice.
func (s *CorpusService) ImportFiles(ctx context.Context, handle string, addresses []string, opts docrag.ImportOptions) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if len(addresses) == 0 {
		return 0, docrag.Errorf(docrag.EINVALID, "no files to import")
	}
	if _, err := s.FindCorpus(ctx, handle); err != nil {
		return 0, err
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RateLimit)/60), 1)
	}

	files := make([]embeddedFile, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.ImportWorkers, 1))
	for i, address := range addresses {
		g.Go(func() error {
			files[i] = s.embedFile(gctx, limiter, address, opts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var imported int
	var lastErr error
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, f := range files {
			if f.err != nil {
				s.logger().Warn("import skipped file", "handle", handle, "address", f.address, "error", f.err)
				lastErr = f.err
				continue
			}
			if err := insertChunks(ctx, tx, handle, f); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if imported == 0 {
		return 0, fmt.Errorf("no files imported: %w", lastErr)
	}
	return imported, nil
}

func (s *CorpusService) embedFile(ctx context.Context, limiter *rate.Limiter, address string, opts docrag.ImportOptions) embeddedFile {
	f := embeddedFile{address: address}

	data, err := s.staging.Read(ctx, address)
	if err != nil {
		f.err = err
		return f
	}

	f.chunks = docrag.SplitText(strings.TrimSpace(string(data)), opts.ChunkSize, opts.ChunkOverlap)
	if len(f.chunks) == 0 {
		f.err = docrag.Errorf(docrag.EINVALID, "staged file %s is empty", address)
		return f
	}

	if err := limiter.Wait(ctx); err != nil {
		f.err = err
		return f
	}

	f.vectors, err = s.embedder.EmbedDocuments(ctx, f.chunks)
	if err != nil {
		f.err = err
		return f
	}
	if len(f.vectors) != len(f.chunks) {
		f.err = fmt.Errorf("embedder returned %d vectors for %d chunks", len(f.vectors), len(f.chunks))
	}
	return f
}

func insertChunks(ctx context.Context, tx *sql.Tx, handle string, f embeddedFile) error {
	for i, content := range f.chunks {
		chunk := docrag.Chunk{
			ID:        uuid.New().String(),
			Handle:    handle,
			Source:    f.address,
			Position:  i,
			Content:   content,
			Embedding: f.vectors[i],
		}
		if err := chunk.Validate(); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, handle, source, position, content, content_hash, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(handle, content_hash) DO NOTHING
		`, chunk.ID, chunk.Handle, chunk.Source, chunk.Position, chunk.Content,
			hashContent(chunk.Content), encodeEmbedding(chunk.Embedding))
		if err != nil {
			return err
		}
	}
	return nil
}

type scoredChunk struct {
	content string
	score   float64
}

// Query returns the content of the topK chunks most similar to text.
func (s *CorpusService) Query(ctx context.Context, handle, text string, topK int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "query text required")
	}
	if topK <= 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "topK must be positive")
	}
	if _, err := s.FindCorpus(ctx, handle); err != nil {
		return nil, err
	}

	query, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, embedding
		FROM chunks
		WHERE handle = ?
		ORDER BY source, position
	`, handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []scoredChunk
	for rows.Next() {
		var content string
		var blob []byte
		if err := rows.Scan(&content, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		scored = append(scored, scoredChunk{content: content, score: cosine(query, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	n := min(topK, len(scored))
	snippets := make([]string, n)
	for i := range n {
		snippets[i] = scored[i].content
	}
	return snippets, nil
}
