// Package textprep prepares raw text for speech synthesis: symbol
// verbalization, character filtering and word-bounded chunking.
package textprep

import (
	"strings"
	"unicode"
)

// DefaultAllowed is the punctuation kept as-is.
var DefaultAllowed = map[rune]bool{
	'.': true,
	',': true,
	'!': true,
	':': true,
	';': true,
	'-': true,
}

// DefaultSpoken maps symbols to the phrase the engine should pronounce.
// '!' is also allowed, but the spoken form always wins.
var DefaultSpoken = map[rune]string{
	'!': " exclamation mark ",
	'@': " at ",
	'&': " and ",
	'%': " percent ",
	'$': " dollar ",
}

// Sanitizer bundles the allow-set and the spoken map.
type Sanitizer struct {
	Allowed map[rune]bool
	Spoken  map[rune]string
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{Allowed: DefaultAllowed, Spoken: DefaultSpoken}
}

func (s *Sanitizer) Clean(text string) string {
	return Clean(text, s.Allowed, s.Spoken)
}

// Clean replaces spoken symbols with their phrase, keeps letters, digits,
// whitespace and allowed punctuation, and drops everything else.
func Clean(text string, allowed map[rune]bool, spoken map[rune]string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if phrase, ok := spoken[r]; ok {
			b.WriteString(phrase)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) || isSpace(r) || allowed[r] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isSpace is unicode.IsSpace plus the ASCII separators 0x1c-0x1f.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
