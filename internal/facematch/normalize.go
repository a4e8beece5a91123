package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeIdentity normalizes a worker identity field (name, surname or role)
// for lookup and uniqueness checks: trimmed, lowercased, diacritics removed.
// Workers are matched by these free-text fields, so a submission typed with a
// different case still resolves to the same record.
func NormalizeIdentity(field string) string {
	field = strings.TrimSpace(field)
	field = RemoveDiacritics(field)
	return strings.ToLower(field)
}
