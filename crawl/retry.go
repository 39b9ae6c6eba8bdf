package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
)

// FetchFunc fetches the HTML at url.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays waits 1s, 2s and then 4s between attempts.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry tries fetch up to len(delays)+1 times, sleeping delays[i]
// before retry i. ENOTFOUND errors are returned at once since another
// attempt would get the same answer. A nil logger is allowed.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	for attempt := 0; ; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		if attempt == len(delays) || docrag.ErrorCode(err) == docrag.ENOTFOUND {
			return "", err
		}

		if logger != nil {
			logger.Debug("retry fetch", "url", url, "attempt", attempt+2, "delay", delays[attempt], "err", err)
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}
