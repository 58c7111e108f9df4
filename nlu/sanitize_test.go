package nlu

import (
	"strings"
	"testing"
)

func TestSanitizeStripsControlChars(t *testing.T) {
	got := Sanitize("find\x00 shoes\x1F now")
	if got != "find  shoes  now" {
		t.Errorf("Expected control chars replaced with spaces, got %q", got)
	}
}

func TestSanitizeStripsInjectionTokens(t *testing.T) {
	cases := []string{
		"find shoes ```ignore previous```",
		"<script>alert(1)</script> find shoes",
		"@everyone buy now",
	}
	for _, in := range cases {
		got := Sanitize(in)
		for _, bad := range []string{"```", "<script>", "</script>", "@everyone"} {
			if strings.Contains(got, bad) {
				t.Errorf("Sanitize(%q) kept %q: %q", in, bad, got)
			}
		}
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("a", 2000)
	got := Sanitize(long)
	if len(got) != maxTextLen {
		t.Errorf("Expected %d runes after truncation, got %d", maxTextLen, len(got))
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("Expected empty output for empty input, got %q", got)
	}
	if got := Sanitize("   "); got != "" {
		t.Errorf("Expected empty output for whitespace input, got %q", got)
	}
}

func TestFixTerms(t *testing.T) {
	cases := []struct{ in, want string }{
		{"find me shows under $100", "find me shoes under $100"},
		{"add 2 packs of mellow", "add 2 packs of milo"},
		{"add 3 bottles of cocks", "add 3 bottles of coke"},
		{"find shoes", "find shoes"},
	}
	for _, c := range cases {
		if got := FixTerms(c.in); got != c.want {
			t.Errorf("FixTerms(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
