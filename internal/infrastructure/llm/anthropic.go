package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/orris-inc/archy/internal/application/ai"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicCompleter sends conversations to the messages endpoint. System
// messages are joined into the top-level system prompt.
type AnthropicCompleter struct {
	client *anthropic.Client
}

func NewAnthropicCompleter(apiKey, baseURL string) *AnthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicCompleter{client: &client}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	var system []string
	convo := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case ai.RoleSystem:
			system = append(system, m.Content)
		case ai.RoleAssistant:
			convo = append(convo, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			convo = append(convo, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if len(convo) == 0 {
		return "", errors.New("conversation has no user message")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(opts.Model),
		MaxTokens:   int64(maxTokens),
		Messages:    convo,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(b.Text)
		}
	}
	return out.String(), nil
}
