package archive

import "strings"

var (
	affirmativeReplies = []string{"yes", "sure", "go ahead", "yep", "okay", "confirm", "please do", "do it", "proceed", "sounds good"}
	negativeReplies    = []string{"no", "cancel", "stop", "don't", "do not", "never mind", "abort", "not now"}
)

// IsAffirmative reports whether a reply to the closure prompt accepts it.
func IsAffirmative(reply string) bool {
	return startsWithAny(normalizeReply(reply), affirmativeReplies)
}

// IsNegative reports whether a reply to the closure prompt declines it.
func IsNegative(reply string) bool {
	return startsWithAny(normalizeReply(reply), negativeReplies)
}

func normalizeReply(reply string) string {
	reply = strings.ToLower(strings.TrimSpace(reply))
	return strings.NewReplacer(".", "", "!", "", "?", "").Replace(reply)
}

func startsWithAny(s string, prefixes []string) bool {
	if s == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
