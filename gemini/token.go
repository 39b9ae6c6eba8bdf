package gemini

import (
	"context"

	"github.com/fwojciec/docrag"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ docrag.TokenCounter = (*TokenCounter)(nil)

// TokenCounter runs the Gemini tokenizer in process. Counting never calls
// the API, but the first NewTokenCounter for a model downloads its
// vocabulary.
type TokenCounter struct {
	local *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the tokenizer for model, or DefaultTokenizerModel
// when model is empty.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	local, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, docrag.Errorf(docrag.EUNAVAILABLE, "load tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{local: local}, nil
}

// CountTokens returns the number of tokens text occupies as a single user
// turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	res, err := tc.local.CountTokens(genai.Text(text), nil)
	if err != nil {
		return 0, err
	}
	return int(res.TotalTokens), nil
}
