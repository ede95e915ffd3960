package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// Completer produces a text completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error)
}

// Claude completes prompts with the Anthropic Messages API.
type Claude struct {
	inner anthropic.Client
	model anthropic.Model
}

var _ Completer = (*Claude)(nil)

func NewClaude(apiKey, model string) (*Claude, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("insight: anthropic api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Claude{
		inner: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: anthropic.Model(model),
	}, nil
}

func (c *Claude) Complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
