package scraperapi

import (
	"strings"
	"unicode"
)

// Sanitize prépare un titre pour les endpoints de recherche:
// tout caractère hors [A-Za-z0-9_] et espaces devient un espace, puis le terme est
// encodé comme encodeURIComponent et "%3A" est ramené à ":" (les backends matchent
// les titres contenant ":" sur cette forme).
func Sanitize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.ReplaceAll(encodeURIComponent(b.String()), "%3A", ":")
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

const upperHex = "0123456789ABCDEF"

// encodeURIComponent reproduit l'encodage JS (espace => %20, pas de '+').
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
