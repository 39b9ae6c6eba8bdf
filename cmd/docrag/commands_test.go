package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fwojciec/docrag"
	main "github.com/fwojciec/docrag/cmd/docrag"
	"github.com/fwojciec/docrag/config"
	"github.com/fwojciec/docrag/fs"
	"github.com/fwojciec/docrag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Config: config.Default(),
	}
}

// registry returns a read-only registry over label to handle entries.
func registry(entries map[string]string) *mock.CorpusRegistry {
	return &mock.CorpusRegistry{
		LookupFn: func(label string) (string, bool) {
			h, ok := entries[label]
			return h, ok
		},
		LabelsFn: func() []string {
			labels := make([]string, 0, len(entries))
			for label := range entries {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			return labels
		},
	}
}

func pages(urls ...string) *mock.Crawler {
	return &mock.Crawler{
		CrawlFn: func(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
			result := docrag.CrawlResult{}
			for _, u := range urls {
				result[u] = "text of " + u
			}
			return result, nil
		},
	}
}

func outcome(handle string, units []docrag.TextUnit) *docrag.ImportOutcome {
	return &docrag.ImportOutcome{
		Handle:    handle,
		Submitted: len(units),
		Imported:  len(units),
		Bytes:     docrag.TotalBytes(units),
		Batches:   []docrag.BatchOutcome{{Index: 0, Imported: len(units)}},
	}
}

func TestCrawlCmd(t *testing.T) {
	t.Parallel()

	t.Run("crawls and imports into a new corpus", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)

		var gotMax int
		deps.Crawler = &mock.Crawler{
			CrawlFn: func(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
				assert.Equal(t, "https://example.com/docs", seedURL)
				gotMax = maxPages
				return pages("https://example.com/docs", "https://example.com/docs/a").CrawlFn(ctx, seedURL, maxPages)
			},
		}
		var gotLabel, gotDescription string
		deps.Ingester = &mock.Ingester{
			IngestAsNewCorpusFn: func(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
				gotLabel, gotDescription = label, description
				assert.Len(t, units, 2)
				return outcome("h-1", units), nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com/docs", Label: "docs", Description: "Example docs"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, config.DefaultMaxPages, gotMax)
		assert.Equal(t, "docs", gotLabel)
		assert.Equal(t, "Example docs", gotDescription)
		assert.Contains(t, stdout.String(), "Crawling https://example.com/docs (up to 100 pages)")
		assert.Contains(t, stdout.String(), "Scraped 2 pages")
		assert.Contains(t, stdout.String(), `Imported 2 of 2 files into "docs" (h-1)`)
		assert.Empty(t, stderr.String())
	})

	t.Run("max pages flag overrides config", func(t *testing.T) {
		t.Parallel()

		deps := newDeps(&bytes.Buffer{}, &bytes.Buffer{})
		var gotMax int
		deps.Crawler = &mock.Crawler{
			CrawlFn: func(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
				gotMax = maxPages
				return docrag.CrawlResult{seedURL: "text"}, nil
			},
		}
		deps.Ingester = &mock.Ingester{
			IngestAsNewCorpusFn: func(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
				return outcome("h-1", units), nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", Label: "docs"}
		cmd.MaxPages = 7
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, 7, gotMax)
	})

	t.Run("nothing scraped skips ingestion", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Crawler = pages()
		deps.Ingester = &mock.Ingester{}

		err := (&main.CrawlCmd{URL: "https://example.com", Label: "docs"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: nothing scraped")
	})

	t.Run("crawl failure is reported", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Crawler = &mock.Crawler{
			CrawlFn: func(ctx context.Context, seedURL string, maxPages int) (docrag.CrawlResult, error) {
				return nil, docrag.Errorf(docrag.EINVALID, "invalid seed URL %q", seedURL)
			},
		}

		err := (&main.CrawlCmd{URL: "ftp://x", Label: "docs"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), `error: invalid seed URL "ftp://x"`)
	})

	t.Run("partial import prints failed batches", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Crawler = pages("https://example.com/a", "https://example.com/b")
		deps.Ingester = &mock.Ingester{
			IngestAsNewCorpusFn: func(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
				return &docrag.ImportOutcome{
					Handle:    "h-1",
					Submitted: 2,
					Imported:  1,
					Batches: []docrag.BatchOutcome{
						{Index: 0, Imported: 1},
						{Index: 1, Err: errors.New("boom")},
					}}, nil
			},
		}

		err := (&main.CrawlCmd{URL: "https://example.com", Label: "docs"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `Imported 1 of 2 files into "docs" (h-1)`)
		assert.Contains(t, stdout.String(), "1 of 2 batches failed: 1")
	})

	t.Run("uses token counter when available", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Crawler = pages("https://example.com/a", "https://example.com/b")
		deps.Ingester = &mock.Ingester{
			IngestAsNewCorpusFn: func(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
				return outcome("h-1", units), nil
			},
		}
		deps.Tokens = &mock.TokenCounter{
			CountTokensFn: func(ctx context.Context, text string) (int, error) {
				return 600, nil
			},
		}

		require.NoError(t, (&main.CrawlCmd{URL: "https://example.com", Label: "docs"}).Run(deps))

		assert.Contains(t, stdout.String(), "~1k tokens")
	})
}

func TestAddCmd(t *testing.T) {
	t.Parallel()

	t.Run("imports into the registered corpus", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Registry = registry(map[string]string{"docs": "h-1"})
		deps.Crawler = pages("https://example.com/guide")
		var gotLabel string
		deps.Ingester = &mock.Ingester{
			IngestIntoCorpusFn: func(ctx context.Context, label string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
				gotLabel = label
				return outcome("h-1", units), nil
			},
		}

		err := (&main.AddCmd{Label: "docs", URL: "https://example.com/guide"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "docs", gotLabel)
		assert.Contains(t, stdout.String(), `Imported 1 of 1 files into "docs" (h-1)`)
	})

	t.Run("unknown label fails before crawling", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Registry = registry(nil)
		deps.Crawler = &mock.Crawler{}

		err := (&main.AddCmd{Label: "missing", URL: "https://example.com"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
		assert.Contains(t, stderr.String(), `corpus "missing" not found`)
		assert.Empty(t, stdout.String())
	})
}

func TestUploadCmd(t *testing.T) {
	t.Parallel()

	writeFile := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("loads files and imports them", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Files = fs.NewLoader()
		var got []docrag.TextUnit
		deps.Ingester = &mock.Ingester{
			IngestAsNewCorpusFn: func(ctx context.Context, label, description string, units []docrag.TextUnit) (*docrag.ImportOutcome, error) {
				assert.Equal(t, "notes", label)
				got = units
				return outcome("h-9", units), nil
			},
		}

		cmd := &main.UploadCmd{
			Label: "notes",
			Files: []string{writeFile(t, "a.md", "# A\n\nalpha"), writeFile(t, "b.txt", "beta")},
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "# A\n\nalpha", got[0].Text)
		assert.Equal(t, "beta", got[1].Text)
		assert.Contains(t, stdout.String(), "Uploading 2 files")
		assert.Contains(t, stdout.String(), `Imported 2 of 2 files into "notes" (h-9)`)
	})

	t.Run("unsupported file fails before ingestion", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)
		deps.Files = fs.NewLoader()
		deps.Ingester = &mock.Ingester{}

		cmd := &main.UploadCmd{Label: "notes", Files: []string{writeFile(t, "a.pdf", "%PDF")}}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "unsupported file type")
	})
}

func TestAskCmd(t *testing.T) {
	t.Parallel()

	t.Run("auto mode without corpora", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Registry = registry(map[string]string{"htmx": "h-1", "go": "h-2"})
		var got docrag.Question
		deps.Asker = &mock.Asker{
			AskFn: func(ctx context.Context, q docrag.Question) (*docrag.Answer, error) {
				got = q
				return &docrag.Answer{Text: "Use hx-get.", Handles: []string{"h-1"}}, nil
			},
		}

		err := (&main.AskCmd{Question: "How do I load content?"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, docrag.ModeAuto, got.Mode)
		assert.Equal(t, "How do I load content?", got.Query)
		assert.Equal(t, "Use hx-get.\n\nSources: htmx\n", stdout.String())
	})

	t.Run("manual mode with corpora", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Registry = registry(map[string]string{"htmx": "h-1", "go": "h-2"})
		var got docrag.Question
		deps.Asker = &mock.Asker{
			AskFn: func(ctx context.Context, q docrag.Question) (*docrag.Answer, error) {
				got = q
				return &docrag.Answer{Text: "Answer.", Handles: []string{"h-2", "h-unknown"}}, nil
			},
		}

		err := (&main.AskCmd{Question: "q", Corpus: []string{"go"}}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, docrag.ModeManual, got.Mode)
		assert.Equal(t, []string{"go"}, got.Labels)
		assert.Contains(t, stdout.String(), "Sources: go, h-unknown")
	})

	t.Run("reports errors", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		deps := newDeps(stdout, stderr)
		deps.Registry = registry(nil)
		deps.Asker = &mock.Asker{
			AskFn: func(ctx context.Context, q docrag.Question) (*docrag.Answer, error) {
				return nil, docrag.Errorf(docrag.ENOTFOUND, "No relevant documents found.")
			},
		}

		err := (&main.AskCmd{Question: "q"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, "error: No relevant documents found.\n", stderr.String())
		assert.Empty(t, stdout.String())
	})
}

func TestListCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists registered and unregistered corpora", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Registry = registry(map[string]string{"go": "h-2", "htmx": "h-1"})
		deps.Corpora = &mock.CorpusService{
			ListCorporaFn: func(ctx context.Context) ([]*docrag.Corpus, error) {
				return []*docrag.Corpus{
					{Handle: "h-1", Label: "htmx"},
					{Handle: "h-3", Label: "orphan"},
				}, nil
			},
		}

		err := (&main.ListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "go  h-2\nhtmx  h-1\norphan  h-3  (unregistered)\n", stdout.String())
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		deps.Registry = registry(nil)
		deps.Corpora = &mock.CorpusService{
			ListCorporaFn: func(ctx context.Context) ([]*docrag.Corpus, error) {
				return nil, nil
			},
		}

		require.NoError(t, (&main.ListCmd{}).Run(deps))

		assert.Contains(t, stdout.String(), "No corpora found")
	})

	t.Run("service error", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)
		deps.Registry = registry(nil)
		deps.Corpora = &mock.CorpusService{
			ListCorporaFn: func(ctx context.Context) ([]*docrag.Corpus, error) {
				return nil, errors.New("disk gone")
			},
		}

		err := (&main.ListCmd{}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, "error: Internal error.\n", stderr.String())
	})
}

func TestDeleteCmd(t *testing.T) {
	t.Parallel()

	t.Run("requires force", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := newDeps(&bytes.Buffer{}, stderr)

		err := (&main.DeleteCmd{Label: "docs"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--force")
	})

	t.Run("unknown label", func(t *testing.T) {
		t.Parallel()

		deps := newDeps(&bytes.Buffer{}, &bytes.Buffer{})
		deps.Registry = registry(nil)

		err := (&main.DeleteCmd{Label: "docs", Force: true}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
	})

	t.Run("deletes corpus and unregisters label", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := newDeps(stdout, &bytes.Buffer{})
		reg := registry(map[string]string{"docs": "h-1"})
		var unregistered string
		reg.UnregisterFn = func(ctx context.Context, label string) error {
			unregistered = label
			return nil
		}
		deps.Registry = reg
		var deleted string
		deps.Corpora = &mock.CorpusService{
			DeleteCorpusFn: func(ctx context.Context, handle string) error {
				deleted = handle
				return nil
			},
		}

		err := (&main.DeleteCmd{Label: "docs", Force: true}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "h-1", deleted)
		assert.Equal(t, "docs", unregistered)
		assert.Equal(t, "Deleted corpus \"docs\"\n", stdout.String())
	})

	t.Run("corpus already gone still unregisters", func(t *testing.T) {
		t.Parallel()

		deps := newDeps(&bytes.Buffer{}, &bytes.Buffer{})
		reg := registry(map[string]string{"docs": "h-1"})
		var unregistered bool
		reg.UnregisterFn = func(ctx context.Context, label string) error {
			unregistered = true
			return nil
		}
		deps.Registry = reg
		deps.Corpora = &mock.CorpusService{
			DeleteCorpusFn: func(ctx context.Context, handle string) error {
				return docrag.Errorf(docrag.ENOTFOUND, "corpus not found")
			},
		}

		require.NoError(t, (&main.DeleteCmd{Label: "docs", Force: true}).Run(deps))

		assert.True(t, unregistered)
	})

	t.Run("service failure keeps label", func(t *testing.T) {
		t.Parallel()

		deps := newDeps(&bytes.Buffer{}, &bytes.Buffer{})
		reg := registry(map[string]string{"docs": "h-1"})
		reg.UnregisterFn = func(ctx context.Context, label string) error {
			t.Fatal("unregister should not be called")
			return nil
		}
		deps.Registry = reg
		deps.Corpora = &mock.CorpusService{
			DeleteCorpusFn: func(ctx context.Context, handle string) error {
				return docrag.Errorf(docrag.EUNAVAILABLE, "service down")
			},
		}

		err := (&main.DeleteCmd{Label: "docs", Force: true}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, docrag.EUNAVAILABLE, docrag.ErrorCode(err))
	})
}
