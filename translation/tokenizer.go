// Package translation turns chat text into a sequence of sign-language
// video segments, one per word, with a finger-spelling fallback.
package translation

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Tokenize splits text into lowercased words in their original order.
// Punctuation and whitespace tokens are dropped.
func Tokenize(text string) []string {
	var out []string
	tokens := words.FromString(text)
	for tokens.Next() {
		token := strings.ToLower(strings.TrimSpace(tokens.Value()))
		if token == "" || !hasLetterOrDigit(token) {
			continue
		}
		out = append(out, token)
	}
	return out
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
