package domain

import (
	"strings"
	"unicode"
)

// Display caps for upstream-provided token names. Metadata is attacker
// controlled; everything rendered downstream goes through these.
const (
	MaxNameLen   = 64
	MaxSymbolLen = 16
)

// SanitizeName strips control characters and caps length.
func SanitizeName(s string) string {
	return sanitize(s, MaxNameLen)
}

// SanitizeSymbol strips control characters and caps length.
func SanitizeSymbol(s string) string {
	return sanitize(s, MaxSymbolLen)
}

func sanitize(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r == unicode.ReplacementChar || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if len(out) > max {
		// Cut on a rune boundary.
		runes := []rune(out)
		for len(string(runes)) > max {
			runes = runes[:len(runes)-1]
		}
		out = string(runes)
	}
	return out
}
