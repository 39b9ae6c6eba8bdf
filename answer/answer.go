// Package answer implements retrieval-augmented question answering across
// several corpora.
package answer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/docrag"
)

// DefaultTopK is the number of snippets retrieved from each corpus.
const DefaultTopK = 5

// Failure messages returned to callers.
const (
	MsgNoValidCorpora = "no valid corpora selected"
	MsgNoRelevantDocs = "no relevant documentation found"
	MsgNoMatchingDocs = "no matching documents"
	MsgTryAgainLater  = "I encountered an error. Please try again later."
)

const promptInstructions = "You are a helpful documentation assistant. Answer the question using only the context below. " +
	"If the answer is not explicitly within the context, say \"I don't know based on the provided context\"."

// Ensure Orchestrator implements docrag.Asker at compile time.
var _ docrag.Asker = (*Orchestrator)(nil)

// Orchestrator answers questions by selecting corpora, retrieving the most
// similar snippets from each, and asking the generator to answer from them.
type Orchestrator struct {
	Registry   docrag.CorpusRegistry
	Corpora    docrag.CorpusService
	Generator  docrag.Generator
	Classifier docrag.CorpusClassifier

	// TopK is the per-corpus snippet count. Zero means DefaultTopK.
	TopK int

	Logger *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *Orchestrator) topK() int {
	if o.TopK <= 0 {
		return DefaultTopK
	}
	return o.TopK
}

// Ask answers q. Corpora that fail to respond are skipped; a question only
// fails outright when no corpus can be selected, nothing is retrieved, or
// the generator fails.
func (o *Orchestrator) Ask(ctx context.Context, q docrag.Question) (*docrag.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	handles, err := o.selectCorpora(ctx, q)
	if err != nil {
		return nil, err
	}

	var snippets, used []string
	for _, handle := range handles {
		got, err := o.Corpora.Query(ctx, handle, q.Query, o.topK())
		if err != nil {
			o.logger().Warn("corpus query failed", "handle", handle, "error", err)
			continue
		}
		if len(got) == 0 {
			continue
		}
		snippets = append(snippets, got...)
		used = append(used, handle)
	}
	if len(snippets) == 0 {
		return nil, docrag.Errorf(docrag.ENOTFOUND, MsgNoMatchingDocs)
	}

	text, err := o.Generator.Complete(ctx, BuildPrompt(snippets, q.Query))
	if err != nil {
		o.logger().Error("answer generation failed", "error", err)
		return nil, docrag.Errorf(docrag.EUNAVAILABLE, MsgTryAgainLater)
	}

	return &docrag.Answer{Text: text, Handles: used}, nil
}

// selectCorpora resolves the question's corpora to handles, in order and
// without duplicates.
func (o *Orchestrator) selectCorpora(ctx context.Context, q docrag.Question) ([]string, error) {
	var labels []string
	switch q.Mode {
	case docrag.ModeManual:
		labels = q.Labels
	default:
		registered := o.Registry.Labels()
		if len(registered) == 0 {
			return nil, docrag.Errorf(docrag.ENOTFOUND, MsgNoRelevantDocs)
		}
		selected, err := o.Classifier.ClassifyRelevantCorpora(ctx, q.Query, registered)
		if err != nil {
			o.logger().Error("corpus classification failed", "error", err)
			return nil, docrag.Errorf(docrag.EUNAVAILABLE, MsgTryAgainLater)
		}
		labels = selected
	}

	handles := o.resolve(labels)
	if len(handles) > 0 {
		return handles, nil
	}
	if q.Mode == docrag.ModeManual {
		return nil, docrag.Errorf(docrag.EINVALID, MsgNoValidCorpora)
	}
	return nil, docrag.Errorf(docrag.ENOTFOUND, MsgNoRelevantDocs)
}

// resolve maps labels to registered handles. Unknown labels are dropped
// and a handle reached through two labels is kept once.
func (o *Orchestrator) resolve(labels []string) []string {
	seen := make(map[string]bool)
	var handles []string
	for _, label := range labels {
		handle, ok := o.Registry.Lookup(strings.TrimSpace(label))
		if !ok {
			o.logger().Debug("unknown corpus label dropped", "label", label)
			continue
		}
		if seen[handle] {
			continue
		}
		seen[handle] = true
		handles = append(handles, handle)
	}
	return handles
}

// BuildPrompt embeds the snippets, separated by blank lines, and the
// question in an answer-from-context-only prompt.
func BuildPrompt(snippets []string, query string) string {
	var sb strings.Builder
	sb.WriteString(promptInstructions)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(strings.Join(snippets, "\n\n"))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}
