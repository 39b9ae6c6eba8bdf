package docrag

import (
	"context"
	"strings"
)

// Mode selects how corpora are chosen for a question.
type Mode string

// Corpus selection modes.
const (
	// ModeAuto lets a classifier pick relevant corpora from the registry.
	ModeAuto Mode = "auto"

	// ModeManual uses the labels supplied with the question.
	ModeManual Mode = "manual"
)

// ParseMode converts s to a Mode. An empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeManual:
		return ModeManual, nil
	default:
		return "", Errorf(EINVALID, "unknown mode %q (want auto or manual)", s)
	}
}

// Question is a natural language query together with its corpus selection.
type Question struct {
	Query string
	Mode  Mode

	// Labels are the corpus labels to search in ModeManual.
	Labels []string
}

// Validate returns an error if the question cannot be answered.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return Errorf(EINVALID, "query required")
	}
	if q.Mode != ModeAuto && q.Mode != ModeManual {
		return Errorf(EINVALID, "unknown mode %q (want auto or manual)", q.Mode)
	}
	return nil
}

// Answer is a generated response grounded in retrieved context.
type Answer struct {
	Text string `json:"answer"`

	// Handles are the corpora that contributed context, in query order.
	Handles []string `json:"corpora"`
}

// Asker provides natural language question answering over indexed corpora.
type Asker interface {
	// Ask answers q using context retrieved from the selected corpora.
	Ask(ctx context.Context, q Question) (*Answer, error)
}
