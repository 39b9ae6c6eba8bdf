// Package classify picks the corpora relevant to a question, either by
// asking a generative model or by deterministic keyword matching.
package classify

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/fwojciec/docrag"
)

// NoneSentinel is the reply that means no corpus is relevant.
const NoneSentinel = "none"

// Ensure Generative implements docrag.CorpusClassifier at compile time.
var _ docrag.CorpusClassifier = (*Generative)(nil)

// Generative asks a Generator which of the labels are relevant and parses
// its free-text reply.
type Generative struct {
	Generator docrag.Generator
}

// ClassifyRelevantCorpora returns the labels the model named, in the order
// it named them. Names that aren't in labels are dropped.
func (c *Generative) ClassifyRelevantCorpora(ctx context.Context, query string, labels []string) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	reply, err := c.Generator.Complete(ctx, BuildPrompt(query, labels))
	if err != nil {
		return nil, err
	}
	return ParseLabels(reply, labels), nil
}

// BuildPrompt asks for a comma-separated list of relevant labels or the
// literal word none.
func BuildPrompt(query string, labels []string) string {
	var sb strings.Builder
	sb.WriteString("You route questions to documentation collections.\n")
	sb.WriteString("Available collections:\n")
	for _, label := range labels {
		fmt.Fprintf(&sb, "- %s\n", label)
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\n\n", query)
	sb.WriteString("Reply with the names of the collections that are relevant to the question, ")
	sb.WriteString("exactly as listed and separated by commas. ")
	fmt.Fprintf(&sb, "If none are relevant, reply with the single word %q.", NoneSentinel)
	return sb.String()
}

// ParseLabels extracts known labels from a model reply. Items are split on
// commas and newlines; surrounding whitespace, quotes, list bullets and
// trailing periods are ignored, and matching is case-insensitive. The
// result uses the canonical spelling from labels, without duplicates.
func ParseLabels(reply string, labels []string) []string {
	canonical := make(map[string]string, len(labels))
	for _, label := range labels {
		canonical[normalize(label)] = label
	}

	seen := make(map[string]bool)
	var out []string
	for _, item := range strings.FieldsFunc(reply, func(r rune) bool { return r == ',' || r == '\n' }) {
		key := normalize(item)
		if key == "" || key == NoneSentinel {
			continue
		}
		label, ok := canonical[key]
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

func normalize(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("\"'`*-•.", r)
	})
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
