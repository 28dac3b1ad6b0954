package normalize

import (
	"regexp"
	"strings"
)

var (
	textDisallowed  = regexp.MustCompile(`[^A-Z0-9 ]`)
	textWhitespace  = regexp.MustCompile(`\s+`)
	mixedAlnumToken = regexp.MustCompile(`^(?:[A-Z]+[0-9]+|[0-9]+[A-Z]+)[A-Z0-9]*$`)
)

// Text canonicalizes free text for matching/search purposes: uppercase, strip everything
// outside {A-Z, 0-9, space}, collapse internal whitespace.
func Text(value string) string {
	v := strings.ToUpper(value)
	v = textDisallowed.ReplaceAllString(v, " ")
	v = textWhitespace.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

// Tokens splits normalized text on whitespace.
func Tokens(value string) []string {
	normalized := Text(value)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// IsMixedAlnum reports whether a token mixes letters and digits (e.g. "16GB"), the trigger
// for emitting a space-stripped variant when building searchable text.
func IsMixedAlnum(token string) bool {
	return mixedAlnumToken.MatchString(token)
}

// DedupTokens deduplicates tokens, preserving first-seen order, and caps the result at max
// entries. max <= 0 means unbounded.
func DedupTokens(tokens []string, max int) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
