package classify

import (
	"context"
	"strings"
	"unicode"

	"github.com/fwojciec/docrag"
)

// minKeywordLen drops short words such as "a" or "to" from matching.
const minKeywordLen = 3

// Ensure Keyword implements docrag.CorpusClassifier at compile time.
var _ docrag.CorpusClassifier = Keyword{}

// Keyword selects every label that shares a word of at least three letters
// with the query. It makes no external calls, so results are repeatable.
type Keyword struct{}

// ClassifyRelevantCorpora returns matching labels in the order given.
func (Keyword) ClassifyRelevantCorpora(ctx context.Context, query string, labels []string) ([]string, error) {
	words := make(map[string]bool)
	for _, w := range keywords(query) {
		words[w] = true
	}

	var out []string
	for _, label := range labels {
		for _, w := range keywords(label) {
			if words[w] {
				out = append(out, label)
				break
			}
		}
	}
	return out, nil
}

func keywords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if len([]rune(f)) >= minKeywordLen {
			out = append(out, f)
		}
	}
	return out
}
