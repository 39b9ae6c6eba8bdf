package docrag

import (
	"context"
	"time"
)

// Corpus is an independently queryable collection of indexed text held by
// the corpus service.
type Corpus struct {
	// Handle is the opaque identifier issued by the corpus service.
	Handle      string    `json:"handle"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the corpus contains invalid fields.
func (c *Corpus) Validate() error {
	if c.Label == "" {
		return Errorf(EINVALID, "corpus label required")
	}
	return nil
}

// Default import parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultImportRate   = 1000
)

// ImportOptions controls how staged files are split and indexed.
type ImportOptions struct {
	ChunkSize    int
	ChunkOverlap int

	// RateLimit caps embedding requests per minute. Zero means unlimited.
	RateLimit int
}

// DefaultImportOptions returns the import parameters used when callers
// don't specify their own.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		RateLimit:    DefaultImportRate,
	}
}

// Validate returns an error if the options cannot produce chunks.
func (o ImportOptions) Validate() error {
	if o.ChunkSize <= 0 {
		return Errorf(EINVALID, "chunk size must be positive")
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		return Errorf(EINVALID, "chunk overlap must be between 0 and chunk size")
	}
	if o.RateLimit < 0 {
		return Errorf(EINVALID, "rate limit must not be negative")
	}
	return nil
}

// CorpusService is the storage/embedding service that indexes text and
// answers similarity queries.
type CorpusService interface {
	// CreateCorpus creates a corpus with the given label. If a corpus with
	// the same label already exists, it is returned instead.
	CreateCorpus(ctx context.Context, label, description string) (*Corpus, error)

	// FindCorpus returns the corpus with the given handle.
	// Returns ENOTFOUND if it does not exist.
	FindCorpus(ctx context.Context, handle string) (*Corpus, error)

	// ImportFiles indexes the staged files at addresses into the corpus and
	// returns the number of files accepted for import.
	ImportFiles(ctx context.Context, handle string, addresses []string, opts ImportOptions) (int, error)

	// Query returns up to topK snippets most similar to text.
	Query(ctx context.Context, handle, text string, topK int) ([]string, error)

	// ListCorpora returns every corpus the service knows about.
	ListCorpora(ctx context.Context) ([]*Corpus, error)

	// DeleteCorpus permanently removes a corpus and its indexed text.
	// Returns ENOTFOUND if it does not exist.
	DeleteCorpus(ctx context.Context, handle string) error
}
