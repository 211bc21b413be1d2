package lexical

import (
	"strings"
	"unicode"
)

// Tokenizer converts text to a term sequence. Stemming and stopword removal
// belong to the implementation, not to the scorer.
type Tokenizer interface {
	Tokenize(text string) []string
}

// SimpleTokenizer lowercases and splits on any non-letter/non-digit rune.
// It is the built-in default; callers with language-specific needs inject
// their own Tokenizer.
type SimpleTokenizer struct{}

// Tokenize implements Tokenizer.
func (SimpleTokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
