package slug

import (
	"strings"
	"unicode"
)

// replacements maps common accented characters to their ASCII equivalents.
var replacements = map[rune]rune{
	'á': 'a', 'à': 'a', 'ã': 'a', 'â': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'õ': 'o', 'ô': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

// Make converts a string into a URL-safe slug: lowercase ASCII letters,
// digits, and single hyphens.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(s) {
		if repl, ok := replacements[r]; ok {
			r = repl
		}
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
