package summarize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eldrix/admin/internal/config"
	"eldrix/admin/internal/models"
)

type fakeCompleter struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	reply    func(req openai.ChatCompletionRequest) (string, error)
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	text, err := f.reply(req)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}},
	}}, nil
}

func TestTranscript(t *testing.T) {
	got := Transcript([]models.Message{
		{Content: "My email won't load", IsAdmin: false},
		{Content: "Try restarting the app", IsAdmin: true},
	})

	assert.Equal(t, "User: My email won't load\n\nSupport Agent: Try restarting the app", got)
}

func TestOpenAISummarize(t *testing.T) {
	fake := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		if req.MaxTokens == titleMaxTokens {
			return ` "Email App Not Loading" `, nil
		}
		return " Restarted the mail app. ", nil
	}}
	s := NewOpenAIWithClient(fake, "")

	summary, err := s.Summarize(context.Background(), "User: help")
	require.NoError(t, err)
	assert.Equal(t, "Restarted the mail app.", summary.Recap)
	assert.Equal(t, "Email App Not Loading", summary.Title)

	require.Len(t, fake.requests, 2)
	for _, req := range fake.requests {
		assert.Equal(t, openai.GPT4oMini, req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 0.001)
		assert.True(t, strings.Contains(req.Messages[0].Content, "User: help"))
	}
}

func TestOpenAISummarizeFailsIfEitherPromptFails(t *testing.T) {
	fake := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		if req.MaxTokens == titleMaxTokens {
			return "", errors.New("rate limited")
		}
		return "recap", nil
	}}

	_, err := NewOpenAIWithClient(fake, "gpt-4o-mini").Summarize(context.Background(), "User: hi")
	assert.ErrorContains(t, err, "rate limited")
}

func TestOpenAISummarizeRejectsEmptyCompletion(t *testing.T) {
	fake := &fakeCompleter{reply: func(openai.ChatCompletionRequest) (string, error) { return "   ", nil }}

	_, err := NewOpenAIWithClient(fake, "").Summarize(context.Background(), "User: hi")
	assert.Error(t, err)
}

func TestNewWithoutKeyIsNoop(t *testing.T) {
	s := New(config.SummarizerConfig{})

	_, err := s.Summarize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
}
