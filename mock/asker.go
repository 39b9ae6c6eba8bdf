package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.Asker = (*Asker)(nil)

// Asker is a mock implementation of docrag.Asker.
type Asker struct {
	AskFn func(ctx context.Context, q docrag.Question) (*docrag.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, q docrag.Question) (*docrag.Answer, error) {
	return a.AskFn(ctx, q)
}

var _ docrag.Generator = (*Generator)(nil)

// Generator is a mock implementation of docrag.Generator.
type Generator struct {
	CompleteFn func(ctx context.Context, prompt string) (string, error)
}

func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.CompleteFn(ctx, prompt)
}

var _ docrag.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docrag.Embedder.
type Embedder struct {
	EmbedDocumentsFn func(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQueryFn     func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedDocumentsFn(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedQueryFn(ctx, text)
}

var _ docrag.CorpusClassifier = (*CorpusClassifier)(nil)

// CorpusClassifier is a mock implementation of docrag.CorpusClassifier.
type CorpusClassifier struct {
	ClassifyRelevantCorporaFn func(ctx context.Context, query string, labels []string) ([]string, error)
}

func (c *CorpusClassifier) ClassifyRelevantCorpora(ctx context.Context, query string, labels []string) ([]string, error) {
	return c.ClassifyRelevantCorporaFn(ctx, query, labels)
}

var _ docrag.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of docrag.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
