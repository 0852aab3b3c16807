package openai

import (
	"strings"
	"unicode/utf8"
)

// maxDescriptionChars bounds the posting description sent to the model so a
// single oversized scrape cannot blow the context window.
const maxDescriptionChars = 4000

// scrubString collapses whitespace runs and trims the ends of short free-text
// fields before they are embedded in the prompt.
func scrubString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateText cuts s to at most limit bytes without splitting a rune,
// appending an ellipsis marker when anything was dropped.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + " [truncated]"
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
