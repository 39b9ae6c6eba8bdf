package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
)

// Ensure LoggingGenerator implements docrag.Generator.
var _ docrag.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with logging. Prompt and reply text
// are not logged, only their sizes.
type LoggingGenerator struct {
	next   docrag.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next docrag.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Complete delegates to the wrapped generator and logs the call.
func (g *LoggingGenerator) Complete(ctx context.Context, prompt string) (reply string, err error) {
	defer func(begin time.Time) {
		g.logger.Debug("completion",
			"prompt_bytes", len(prompt),
			"reply_bytes", len(reply),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Complete(ctx, prompt)
}
