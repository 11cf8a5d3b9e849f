package archive

import (
	"fmt"
	"math"
	"strings"
)

// IsValidTextMessage guards the persistence boundary: author and content must be non-blank.
func IsValidTextMessage(author, content string) bool {
	return strings.TrimSpace(author) != "" && strings.TrimSpace(content) != ""
}

// IsAIEligible reports whether a chat message may be sent to the completion
// provider: human-authored, non-empty text, no attachments.
func IsAIEligible(msg ChatMessage) bool {
	if msg.Author.Bot {
		return false
	}
	if strings.TrimSpace(msg.Content) == "" {
		return false
	}
	return len(msg.Attachments) == 0
}

type SchemaResult struct {
	Valid  bool
	Issues []string
}

// ValidateSchema checks the field types of a decoded extraction object. It does
// not coerce; callers sanitize separately.
func ValidateSchema(raw map[string]any) SchemaResult {
	if raw == nil {
		return SchemaResult{Valid: false, Issues: []string{"No metadata found"}}
	}

	var issues []string
	if _, ok := raw["sale_id"].(string); !ok {
		issues = append(issues, "sale_id must be string")
	}
	if !isArray(raw["staff"]) {
		issues = append(issues, "staff must be array")
	}
	if q, present := raw["quoted"]; present && q != nil {
		if _, ok := finiteNumber(q); !ok {
			issues = append(issues, "quoted must be number or null")
		}
	}
	if !isArray(raw["tags"]) {
		issues = append(issues, "tags must be array")
	}

	return SchemaResult{Valid: len(issues) == 0, Issues: issues}
}

// NormalizeQuoted replaces a non-numeric or non-finite quoted value with null
// in place, before the schema gate runs.
func NormalizeQuoted(raw map[string]any) {
	if raw == nil {
		return
	}
	if _, ok := finiteNumber(raw["quoted"]); !ok {
		raw["quoted"] = nil
	}
}

func finiteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ExtractedMetadata is the sanitised output of the metadata extractor.
type ExtractedMetadata struct {
	SaleID string
	Staff  []string
	Quoted *float64
	Tags   []string
}

// DefaultExtractedMetadata is returned whenever extraction cannot produce a usable object.
func DefaultExtractedMetadata() ExtractedMetadata {
	return ExtractedMetadata{SaleID: UnknownSaleID, Staff: []string{}, Tags: []string{}}
}

// SanitizeMetadata coerces a decoded extraction object into ExtractedMetadata:
// non-blank string sale_id or UNKNOWN, array staff/tags or empty, finite
// numeric quoted or nil.
func SanitizeMetadata(raw map[string]any) ExtractedMetadata {
	out := DefaultExtractedMetadata()
	if raw == nil {
		return out
	}
	if s, ok := raw["sale_id"].(string); ok && strings.TrimSpace(s) != "" {
		out.SaleID = s
	}
	out.Staff = stringItems(raw["staff"])
	if f, ok := finiteNumber(raw["quoted"]); ok {
		out.Quoted = &f
	}
	out.Tags = stringItems(raw["tags"])
	return out
}

func isArray(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	}
	return false
}

func stringItems(v any) []string {
	var items []any
	switch a := v.(type) {
	case []any:
		items = a
	case []string:
		items = make([]any, len(a))
		for i, s := range a {
			items[i] = s
		}
	default:
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}
