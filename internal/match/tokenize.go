package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tokenize lowercases s and splits it into tokens longer than one rune.
// Every rune that is not a lowercase Latin letter, an ASCII digit, a space,
// a period or a hyphen acts as a separator.
func Tokenize(s string) []string {
	s = lower(s)
	if s == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// lower composes decomposed accents before lowercasing so "é" typed as
// e + U+0301 survives tokenization as one letter.
func lower(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

func keepRune(r rune) bool {
	switch {
	case r == ' ' || r == '.' || r == '-':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	}
	return r > unicode.MaxASCII && unicode.IsLower(r) && unicode.Is(unicode.Latin, r)
}
