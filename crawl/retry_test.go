package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("timeout")
			}
			return "<p>ok</p>", nil
		}

		html, err := crawl.FetchWithRetry(context.Background(), "https://example.com/", fetch, nil, []time.Duration{0, 0, 0})

		require.NoError(t, err)
		assert.Equal(t, "<p>ok</p>", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error after exhausting attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("HTTP 503")
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com/", fetch, nil, []time.Duration{0, 0})

		require.EqualError(t, err, "HTTP 503")
		assert.Equal(t, 3, calls)
	})

	t.Run("fetches once without delays", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("HTTP 404")
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com/", fetch, nil, nil)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops retrying when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		fetch := func(context.Context, string) (string, error) {
			calls++
			cancel()
			return "", errors.New("timeout")
		}

		_, err := crawl.FetchWithRetry(ctx, "https://example.com/", fetch, nil, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestFetchWithRetry_NotFoundIsFinal(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(context.Context, string) (string, error) {
		calls++
		return "", docrag.Errorf(docrag.ENOTFOUND, "HTTP 404 for https://example.com/gone")
	}

	_, err := crawl.FetchWithRetry(context.Background(), "https://example.com/gone", fetch, nil, []time.Duration{0, 0, 0})

	require.Error(t, err)
	assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
	assert.Equal(t, 1, calls)
}
