package normalize

import (
	"regexp"
	"strings"
)

var identifierDisallowed = regexp.MustCompile(`[^A-Z0-9/\-]`)

// Identifier canonicalizes a GTIN, MPN, or model number for comparison and storage.
//
// Rules: uppercase, strip every character outside {A-Z, 0-9, /, -}, collapse "//" into "/",
// and treat an all-stripped result as absent. "-" and "/" are kept distinct on purpose:
// "AN16-51" and "AN16/51" canonicalize to different strings.
func Identifier(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	v = identifierDisallowed.ReplaceAllString(v, "")
	for strings.Contains(v, "//") {
		v = strings.ReplaceAll(v, "//", "/")
	}
	return v
}

// IdentifierOrEmpty is Identifier but returns "" (treated as absent) for blank input,
// matching the normalize_identifier "empty -> None" rule.
func IdentifierOrEmpty(value string) string {
	return Identifier(value)
}
