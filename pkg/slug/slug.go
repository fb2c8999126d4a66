package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name. Accented
// characters are transliterated to their ASCII equivalents; anything else
// non-alphanumeric collapses into single hyphens.
//
// Examples:
//
//   - "Café Crème"     → "cafe-creme"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Strip combining marks after decomposition so "é" becomes "e".
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
