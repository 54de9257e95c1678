// Package summarize produces the recap and title stored when an admin closes
// a help session.
package summarize

import (
	"context"
	"errors"
	"strings"

	"eldrix/admin/internal/models"
)

var ErrDisabled = errors.New("summarizer disabled")

type Summary struct {
	Recap string
	Title string
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (Summary, error)
}

// Transcript renders messages the way the prompts expect them.
func Transcript(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "User"
		if m.IsAdmin {
			speaker = "Support Agent"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n\n")
}

// Noop is used when no API key is configured.
type Noop struct{}

func (Noop) Summarize(context.Context, string) (Summary, error) {
	return Summary{}, ErrDisabled
}
