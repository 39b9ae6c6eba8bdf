package main_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/docrag"
	main "github.com/fwojciec/docrag/cmd/docrag"
	"github.com/fwojciec/docrag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points every local store at dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "docrag.yaml")
	content := fmt.Sprintf("database: %s\nregistry: %s\nstaging_dir: %s\n",
		filepath.Join(dir, "db", "docrag.db"),
		filepath.Join(dir, "corpora.json"),
		filepath.Join(dir, "staging"),
	)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

// newTestMain returns a Main with every remote collaborator replaced.
func newTestMain() *main.Main {
	m := main.NewMain()
	m.Getenv = noEnv
	m.Embedder = &mock.Embedder{
		EmbedDocumentsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{1, 0}
			}
			return vectors, nil
		},
		EmbedQueryFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}
	m.Generator = &mock.Generator{
		CompleteFn: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "You route questions") {
				return "docs", nil
			}
			return "Widgets are configured in YAML.", nil
		},
	}
	m.Crawler = &mock.Crawler{
		CrawlFn: func(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
			return docrag.CrawlResult{
				seedURL:             "Widgets are configured in YAML files.",
				seedURL + "/deploy": "Deploy widgets with the deploy command.",
			}, nil
		},
	}
	m.Tokens = &mock.TokenCounter{
		CountTokensFn: func(ctx context.Context, text string) (int, error) {
			return 10, nil
		},
	}
	return m
}

func TestMain_Run_CrawlListAskDelete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	ctx := context.Background()

	run := func(args ...string) (string, error) {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		err := newTestMain().Run(ctx, append([]string{"--config", cfg}, args...), stdout, stderr)
		return stdout.String(), err
	}

	out, err := run("crawl", "https://example.com/docs", "-l", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Scraped 2 pages")
	assert.Contains(t, out, `Imported 2 of 2 files into "docs"`)
	assert.Contains(t, out, "~20 tokens")

	staged, err := os.ReadDir(filepath.Join(dir, "staging"))
	if err == nil {
		assert.Empty(t, staged, "staging should be cleaned up after import")
	}

	out, err = run("list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "docs  "), "got %q", out)
	assert.NotContains(t, out, "unregistered")

	out, err = run("ask", "How are widgets configured?")
	require.NoError(t, err)
	assert.Equal(t, "Widgets are configured in YAML.\n\nSources: docs\n", out)

	out, err = run("ask", "How are widgets configured?", "-c", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Sources: docs")

	_, err = run("delete", "docs")
	require.Error(t, err)

	out, err = run("delete", "docs", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted corpus "docs"`)

	out, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No corpora found")
}

func TestMain_Run_AddToUnknownCorpus(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, t.TempDir())
	stderr := &bytes.Buffer{}

	err := newTestMain().Run(context.Background(), []string{"--config", cfg, "add", "missing", "https://example.com"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
	assert.Contains(t, stderr.String(), `corpus "missing" not found`)
}

func TestMain_Run_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, t.TempDir())
	m := main.NewMain()
	m.Getenv = noEnv
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--config", cfg, "ask", "anything"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, stderr.String(), "GEMINI_API_KEY")
}

func TestMain_Run_InvalidFetcherFlag(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, t.TempDir())

	err := newTestMain().Run(context.Background(),
		[]string{"--config", cfg, "crawl", "https://example.com", "-l", "docs", "--fetcher", "carrier-pigeon"},
		&bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
}
