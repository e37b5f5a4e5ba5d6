// Package textnorm normalises extracted page text and find queries so that
// visually identical strings compare equal.
package textnorm

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize drops invisible format characters (soft hyphens, zero-width
// spaces), turns no-break spaces into spaces and composes to NFC.
// Invalid input is returned unchanged.
func Normalize(s string) string {
	if isPlainASCII(s) {
		return s
	}
	t := transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		runes.Map(func(r rune) rune {
			if r == '\u00a0' || r == '\u202f' {
				return ' '
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
