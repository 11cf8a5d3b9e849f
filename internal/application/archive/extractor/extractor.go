// Package extractor derives structured ticket metadata from a conversation log.
package extractor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/orris-inc/archy/internal/application/ai"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

const systemPrompt = `You are a metadata extractor for Discord ticket logs. Extract *only* the following fields and output valid JSON:
- "sale_id": External reference ID, typically SID-000XXXXXX (string, "UNKNOWN" if absent)
- "staff": Array of staff usernames (empty array if none)
- "quoted": Numeric value (USD, e.g., quoted/estimated/approved price, or null if not present)
- "tags": Array of keywords relevant to the ticket (empty array if none)

"quoted" must be a number if present, or null if not found. Do not use currency symbols or text. Do not output any value other than a number or null for "quoted".

If a field is missing or unknown, return it as specified: "sale_id" as "UNKNOWN", "staff" as empty array, "quoted" as null, "tags" as empty array.

Example output:
{"sale_id":"sid-000123456","staff":["user1"],"quoted":1299.99,"tags":["pump","repair"]}

Return only valid JSON and no extra commentary.`

// Asker is satisfied by *ai.Client.
type Asker interface {
	Ask(ctx context.Context, messages ...ai.Message) (string, error)
}

type Extractor struct {
	client Asker
	logger logger.Interface
}

func New(client Asker, log logger.Interface) *Extractor {
	return &Extractor{client: client, logger: log}
}

// Extract never fails. It returns the sanitised metadata and the decoded object
// as the provider produced it, for the schema gate. When the reply cannot be
// decoded both are defaults.
func (e *Extractor) Extract(ctx context.Context, log []archive.LogEntry) (archive.ExtractedMetadata, map[string]any) {
	payload, err := json.Marshal(log)
	if err != nil {
		e.logger.Warnw("failed to encode extraction log", "error", err)
		return archive.DefaultExtractedMetadata(), defaultRaw()
	}

	reply, err := e.client.Ask(ctx,
		ai.Message{Role: ai.RoleSystem, Content: systemPrompt},
		ai.Message{Role: ai.RoleUser, Content: string(payload)},
	)
	if err != nil {
		e.logger.Warnw("metadata extraction failed, using defaults", "error", err)
		return archive.DefaultExtractedMetadata(), defaultRaw()
	}

	raw, ok := Decode(reply)
	if !ok {
		e.logger.Warnw("metadata extraction returned non-JSON, using defaults", "reply_length", len(reply))
		return archive.DefaultExtractedMetadata(), defaultRaw()
	}

	return archive.SanitizeMetadata(raw), raw
}

// Decode parses a single JSON object, tolerating a surrounding markdown fence.
func Decode(reply string) (map[string]any, bool) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil || raw == nil {
		return nil, false
	}
	return raw, true
}

func defaultRaw() map[string]any {
	return map[string]any{
		"sale_id": archive.UnknownSaleID,
		"staff":   []any{},
		"quoted":  nil,
		"tags":    []any{},
	}
}
