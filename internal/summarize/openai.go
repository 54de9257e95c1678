package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"eldrix/admin/internal/config"
)

const (
	recapMaxTokens = 150
	titleMaxTokens = 25
	temperature    = 0.7
)

const recapPrompt = `Please create a concise summary (maximum 3-4 sentences) of the following tech support conversation.
Focus on:
1. The main problem or question the user had
2. The key solutions or advice provided
3. Any next steps or unresolved issues

CONVERSATION:
%s

SUMMARY:`

const titlePrompt = `Based on the following tech support conversation, create a short, descriptive title (5-7 words max)
that clearly identifies the main topic or issue discussed.

CONVERSATION:
%s

TITLE:`

type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAI struct {
	client ChatCompleter
	model  string
}

func NewOpenAI(cfg config.SummarizerConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewOpenAIWithClient(openai.NewClientWithConfig(clientCfg), cfg.Model)
}

func NewOpenAIWithClient(client ChatCompleter, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: client, model: model}
}

// New picks the OpenAI adapter when an API key is configured.
func New(cfg config.SummarizerConfig) Summarizer {
	if cfg.APIKey == "" {
		return Noop{}
	}
	return NewOpenAI(cfg)
}

// Summarize issues the recap and title prompts concurrently. Both must
// succeed; the caller owns the deadline.
func (o *OpenAI) Summarize(ctx context.Context, transcript string) (Summary, error) {
	var summary Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recap, err := o.complete(gctx, fmt.Sprintf(recapPrompt, transcript), recapMaxTokens)
		if err != nil {
			return fmt.Errorf("recap: %w", err)
		}
		summary.Recap = recap
		return nil
	})
	g.Go(func() error {
		title, err := o.complete(gctx, fmt.Sprintf(titlePrompt, transcript), titleMaxTokens)
		if err != nil {
			return fmt.Errorf("title: %w", err)
		}
		summary.Title = strings.Trim(title, `"`)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (o *OpenAI) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
