package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidSlugChars = regexp.MustCompile(`[^a-z0-9\-_]+`)
	repeatedSeps     = regexp.MustCompile(`[-_]{2,}`)
)

// NormalizeSlug turns arbitrary candidate text into a lowercase, hyphenated
// path segment restricted to [a-z0-9-_]. Repeated separators are collapsed
// and leading/trailing separators trimmed. Returns "" for input that has no
// usable characters left - the caller decides the fallback.
func NormalizeSlug(input string) string {
	// Fold diacritics to ASCII ("Crème Brûlée" -> "Creme Brulee")
	folded := removeDiacritics(input)

	lower := strings.ToLower(folded)

	// Whitespace becomes hyphens before stripping invalid characters so
	// word boundaries survive.
	hyphenated := strings.Join(strings.Fields(lower), "-")

	cleaned := invalidSlugChars.ReplaceAllString(hyphenated, "")

	collapsed := repeatedSeps.ReplaceAllString(cleaned, "-")

	return strings.Trim(collapsed, "-_")
}

// removeDiacritics strips combining marks after NFD decomposition
func removeDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
