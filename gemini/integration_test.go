//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/docrag/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Integration_ReturnsAnswer(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, apiKey)
	require.NoError(t, err)

	answer, err := gemini.NewGenerator(client, "").Complete(ctx,
		"Context:\nHTMX is a library that allows you to access modern browser features directly from HTML.\n\nQuestion: What is HTMX?")

	require.NoError(t, err)
	assert.Contains(t, answer, "HTMX")
}

func TestEmbedder_Integration_EmbedsDocumentsAndQuery(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, apiKey)
	require.NoError(t, err)
	emb := gemini.NewEmbedder(client, "")

	docs, err := emb.EmbedDocuments(ctx, []string{"Install via pip.", "Run the CLI."})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	query, err := emb.EmbedQuery(ctx, "how to install")
	require.NoError(t, err)
	assert.Len(t, query, len(docs[0]))
}
