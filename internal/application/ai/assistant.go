package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/orris-inc/archy/internal/domain/archive"
)

// MaxSummaryMessages caps the log sent for a summary; older entries are dropped.
const MaxSummaryMessages = 150

const summarySystemPrompt = "You are Archy, a helpful assistant that summarizes ticket issues and resolutions. Summarize the following conversation concisely based on the full log provided."

// ErrEmptyLog is returned when there is nothing to send to the provider.
var ErrEmptyLog = errors.New("no messages to summarize")

// Assistant produces summaries and tags for a conversation log.
type Assistant struct {
	client *Client
}

func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

// LimitForSummary keeps the last MaxSummaryMessages entries and reports whether it cut any.
func LimitForSummary(log []archive.LogEntry) ([]archive.LogEntry, bool) {
	if len(log) <= MaxSummaryMessages {
		return log, false
	}
	return log[len(log)-MaxSummaryMessages:], true
}

func (a *Assistant) Summarize(ctx context.Context, log []archive.LogEntry) (string, error) {
	if len(log) == 0 {
		return "", ErrEmptyLog
	}
	payload, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("failed to encode log: %w", err)
	}
	return a.client.Ask(ctx,
		Message{Role: RoleSystem, Content: summarySystemPrompt},
		Message{Role: RoleUser, Content: "Summarize the following conversation concisely:\n" + string(payload)},
	)
}

// GenerateTags returns the provider's raw reply and the tags parsed from it.
func (a *Assistant) GenerateTags(ctx context.Context, log []archive.LogEntry) (string, []string, error) {
	payload, err := json.Marshal(log)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode log: %w", err)
	}
	reply, err := a.client.Ask(ctx,
		Message{Role: RoleUser, Content: "Generate relevant tags for the following conversation:\n" + string(payload)},
	)
	if err != nil {
		return "", nil, err
	}
	return reply, ParseTags(reply), nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// ParseTags splits a free-form tag reply on commas and newlines, strips list
// markers and hashes, and drops case-insensitive duplicates.
func ParseTags(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	seen := make(map[string]bool, len(fields))
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tag := listMarker.ReplaceAllString(strings.TrimSpace(f), "")
		tag = strings.Trim(tag, "\"'`*# ")
		if tag == "" || strings.HasSuffix(tag, ":") {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}
