// Package ai wraps a chat completion provider with the assistant's fixed
// preamble and the prompts used for summaries and tags.
package ai

import (
	"context"
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completer is a chat completion provider.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// CommandIndex is prepended to every conversation sent to the provider.
const CommandIndex = `You are Archy, a Discord assistant bot. The available commands are:

!ping - Respond with Pong to check bot responsiveness.
!summary - Generate a concise summary of the current conversation.
!retag - Generate relevant tags for the current ticket.
!archive - Archive this ticket channel, its messages and attachments.
!search <keywords> - Find archived tickets and restore or summarize them.
!ghostbusters - Show runtime diagnostics for the bot process.
!info - Show information about the bot and available commands.

Always respond with knowledge of these commands when appropriate.`

// Client sends conversations through a Completer with the command index and
// default options applied.
type Client struct {
	completer Completer
	defaults  Options
}

func NewClient(completer Completer, defaults Options) *Client {
	return &Client{completer: completer, defaults: defaults}
}

// Ask prefixes messages with the command index and returns the trimmed reply.
func (c *Client) Ask(ctx context.Context, messages ...Message) (string, error) {
	full := make([]Message, 0, len(messages)+1)
	full = append(full, Message{Role: RoleSystem, Content: CommandIndex})
	full = append(full, messages...)

	reply, err := c.completer.Complete(ctx, full, c.defaults)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
