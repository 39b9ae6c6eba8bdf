package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/docrag"
	"google.golang.org/genai"
)

// DefaultTemperature keeps answers close to the supplied context.
const DefaultTemperature = 0.4

// Ensure Generator implements docrag.Generator at compile time.
var _ docrag.Generator = (*Generator)(nil)

// Generator implements docrag.Generator using Gemini's single-turn
// GenerateContent call.
type Generator struct {
	client *genai.Client
	model  string

	// SystemInstruction is sent with every request when set.
	SystemInstruction string
}

// NewGenerator creates a Generator for model. An empty model selects
// DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	return g.model
}

// Complete sends prompt as a single user turn and returns the response text.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", docrag.Errorf(docrag.EINVALID, "prompt required")
	}
	if g.client == nil {
		return "", docrag.Errorf(docrag.EINTERNAL, "gemini client not configured")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		BuildConfig(g.SystemInstruction),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if result == nil {
		return "", docrag.Errorf(docrag.EINTERNAL, "gemini returned nil result")
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", docrag.Errorf(docrag.EINTERNAL, "gemini returned an empty response")
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(systemInstruction string) *genai.GenerateContentConfig {
	temp := float32(DefaultTemperature)
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}
	return config
}
