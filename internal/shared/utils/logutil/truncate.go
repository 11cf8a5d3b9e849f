package logutil

import "unicode/utf8"

// TruncateForLog shortens s to at most maxLen runes, appending "..." when cut.
// Chat content is user supplied, so logs only carry a prefix.
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
