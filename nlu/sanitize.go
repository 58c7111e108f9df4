package nlu

import (
	"regexp"
	"strings"
)

// maxTextLen caps utterances at a length no spoken query gets near.
const maxTextLen = 600

var (
	controlCharsRe = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F]")
	injectionRe    = regexp.MustCompile("(?i)(?:```|</?script>|@everyone|@here)")
)

// Sanitize truncates raw input, replaces control characters and known
// prompt-injection tokens with spaces, and trims. It never fails: empty
// input yields an empty string.
func Sanitize(text string) string {
	return sanitizeN(text, maxTextLen)
}

func sanitizeN(text string, limit int) string {
	if limit <= 0 {
		limit = maxTextLen
	}
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	out := string(runes)
	out = controlCharsRe.ReplaceAllString(out, " ")
	out = injectionRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// FixTerms applies the fixed table of speech-to-text corrections. The
// table entries do not overlap, so application order does not matter.
func FixTerms(text string) string {
	for _, f := range termFixes {
		text = f.re.ReplaceAllString(text, f.repl)
	}
	return text
}
