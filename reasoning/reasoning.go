// Package reasoning wraps the external reasoning service behind a
// narrow contract. The pipeline uses it only for bounded sub-tasks
// (conversational replies, intent/resolution classification, order
// extraction); every structured output is validated by the caller
// before the state machine trusts it.
package reasoning

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/gantrylabs/foreman/core"
)

// Service is the reasoning service contract consumed by the pipeline.
type Service interface {
	// Complete sends a prompt under a system instruction and returns
	// the text response. Failures wrap core.ErrReasoning.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Claude is the Anthropic-backed Service implementation.
type Claude struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// ClaudeOption configures a Claude service.
type ClaudeOption func(*Claude)

// WithModel overrides the default model.
func WithModel(model string) ClaudeOption {
	return func(c *Claude) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the default response token cap.
func WithMaxTokens(n int64) ClaudeOption {
	return func(c *Claude) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewClaude creates a Claude-backed reasoning service.
func NewClaude(client *anthropic.Client, opts ...ClaudeOption) *Claude {
	c := &Claude{
		client:    client,
		model:     "claude-sonnet-4-20250514",
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete calls the model once and concatenates its text blocks.
func (c *Claude) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrReasoning, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
