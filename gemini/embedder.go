package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/docrag"
	"google.golang.org/genai"
)

// MaxEmbedBatch is the largest number of texts sent in one EmbedContent
// request.
const MaxEmbedBatch = 100

// Task types understood by the embedding model.
const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Ensure Embedder implements docrag.Embedder at compile time.
var _ docrag.Embedder = (*Embedder)(nil)

// Embedder implements docrag.Embedder using Gemini embedding models.
type Embedder struct {
	client *genai.Client
	model  string

	// Dimensions truncates embeddings when positive.
	Dimensions int32
}

// NewEmbedder creates an Embedder for model. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

// EmbedDocuments embeds texts for storage, in batches of MaxEmbedBatch.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxEmbedBatch {
		batch := texts[start:min(start+MaxEmbedBatch, len(texts))]
		got, err := e.embed(ctx, batch, taskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, got...)
	}
	return vectors, nil
}

// EmbedQuery embeds a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "query text required")
	}
	vectors, err := e.embed(ctx, []string{text}, taskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if e.client == nil {
		return nil, docrag.Errorf(docrag.EINTERNAL, "gemini client not configured")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{TaskType: taskType}
	if e.Dimensions > 0 {
		dims := e.Dimensions
		config.OutputDimensionality = &dims
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, docrag.Errorf(docrag.EINTERNAL, "gemini returned %d embeddings for %d texts", embeddingCount(result), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil {
			return nil, docrag.Errorf(docrag.EINTERNAL, "gemini returned an empty embedding")
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func embeddingCount(r *genai.EmbedContentResponse) int {
	if r == nil {
		return 0
	}
	return len(r.Embeddings)
}
