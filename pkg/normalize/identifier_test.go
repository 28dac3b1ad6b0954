package normalize

import "testing"

func TestIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  an16-51 ", "AN16-51"},
		{"AN16/51", "AN16/51"},
		{"abc//def", "ABC/DEF"},
		{"...", ""},
		{"GTIN#1234567890123", "GTIN1234567890123"},
	}
	for _, c := range cases {
		if got := Identifier(c.in); got != c.want {
			t.Errorf("Identifier(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIdentifierDistinguishesDashAndSlash(t *testing.T) {
	if Identifier("AN16-51") == Identifier("AN16/51") {
		t.Fatal("identifier normalization must keep '-' and '/' distinct")
	}
}

func TestIdentifierIdempotent(t *testing.T) {
	for _, s := range []string{"an16-51", "ABC//DEF", "  spaced out 123  "} {
		once := Identifier(s)
		twice := Identifier(once)
		if once != twice {
			t.Errorf("Identifier not idempotent for %q: %q vs %q", s, once, twice)
		}
	}
}
