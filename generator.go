package docrag

import "context"

// Generator is a single-turn text completion service.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder converts text into vectors for similarity search.
type Embedder interface {
	// EmbedDocuments embeds texts that will be stored and searched.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CorpusClassifier selects the corpora relevant to a query.
type CorpusClassifier interface {
	// ClassifyRelevantCorpora returns the subset of labels judged relevant
	// to query, using the exact spelling found in labels. An empty result
	// means no corpus is relevant.
	ClassifyRelevantCorpora(ctx context.Context, query string, labels []string) ([]string, error)
}

// TokenCounter reports how many model tokens a text takes up.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
