package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docrag/classify"
	"github.com/fwojciec/docrag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabels(t *testing.T) {
	t.Parallel()

	labels := []string{"Docs A", "Go Stdlib", "htmx"}

	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{name: "single label", reply: "Docs A", want: []string{"Docs A"}},
		{name: "comma separated keeps reply order", reply: "htmx, Docs A", want: []string{"htmx", "Docs A"}},
		{name: "case and whitespace are normalized", reply: "  docs a ,GO   STDLIB \n", want: []string{"Docs A", "Go Stdlib"}},
		{name: "quotes bullets and periods are stripped", reply: "- \"Docs A\"\n* `htmx`.", want: []string{"Docs A", "htmx"}},
		{name: "unknown labels are dropped", reply: "Docs A, Rust Book", want: []string{"Docs A"}},
		{name: "duplicates collapse", reply: "htmx, HTMX, htmx", want: []string{"htmx"}},
		{name: "none sentinel", reply: "none", want: nil},
		{name: "none sentinel any case", reply: "None.", want: nil},
		{name: "empty reply", reply: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, classify.ParseLabels(tt.reply, labels))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := classify.BuildPrompt("How do I swap content?", []string{"Docs A", "htmx"})

	assert.Contains(t, prompt, "- Docs A\n- htmx\n")
	assert.Contains(t, prompt, "Question: How do I swap content?")
	assert.Contains(t, prompt, `"none"`)
}

func TestGenerative_ClassifyRelevantCorpora(t *testing.T) {
	t.Parallel()

	t.Run("parses generator reply", func(t *testing.T) {
		t.Parallel()

		var prompt string
		c := &classify.Generative{Generator: &mock.Generator{
			CompleteFn: func(ctx context.Context, p string) (string, error) {
				prompt = p
				return "htmx", nil
			},
		}}

		got, err := c.ClassifyRelevantCorpora(context.Background(), "swap?", []string{"Docs A", "htmx"})

		require.NoError(t, err)
		assert.Equal(t, []string{"htmx"}, got)
		assert.Contains(t, prompt, "- htmx")
	})

	t.Run("no labels makes no call", func(t *testing.T) {
		t.Parallel()

		c := &classify.Generative{Generator: &mock.Generator{
			CompleteFn: func(ctx context.Context, p string) (string, error) {
				t.Fatal("generator should not be called")
				return "", nil
			},
		}}

		got, err := c.ClassifyRelevantCorpora(context.Background(), "q", nil)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("propagates generator error", func(t *testing.T) {
		t.Parallel()

		c := &classify.Generative{Generator: &mock.Generator{
			CompleteFn: func(ctx context.Context, p string) (string, error) {
				return "", errors.New("quota")
			},
		}}

		_, err := c.ClassifyRelevantCorpora(context.Background(), "q", []string{"Docs A"})

		assert.EqualError(t, err, "quota")
	})
}

func TestKeyword_ClassifyRelevantCorpora(t *testing.T) {
	t.Parallel()

	labels := []string{"Django Docs", "Go Stdlib", "htmx"}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "matches shared word", query: "How do Django models work?", want: []string{"Django Docs"}},
		{name: "matches several in label order", query: "use htmx with django", want: []string{"Django Docs", "htmx"}},
		{name: "ignores short words", query: "go to the docs", want: []string{"Django Docs"}},
		{name: "no match", query: "what is rust?", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := classify.Keyword{}.ClassifyRelevantCorpora(context.Background(), tt.query, labels)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
