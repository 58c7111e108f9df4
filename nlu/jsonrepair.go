package nlu

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var errNoJSON = errors.New("no JSON object found")

var (
	codeFenceRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	bareKeyRe      = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_\-]*)(\s*):`)
	trailingComaRe = regexp.MustCompile(`,(\s*[}\]])`)
	quotedNumRe    = regexp.MustCompile(`:(\s*)"(-?\d+(?:\.\d+)?)"(\s*[,}])`)
)

// extractJSONObject returns the first balanced {...} span in s. Brace
// counting skips over string literals so braces inside values do not
// unbalance the scan.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errNoJSON
	}
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoJSON
}

// RepairJSON extracts the first JSON object from free-form model output
// and fixes the usual LLM damage: markdown fences, single quotes,
// unquoted keys, trailing commas, and numbers wrapped in quotes. The
// result is re-validated with encoding/json before being returned.
func RepairJSON(raw string) (string, error) {
	if m := codeFenceRe.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	obj, err := extractJSONObject(raw)
	if err != nil {
		return "", err
	}
	if json.Valid([]byte(obj)) {
		return obj, nil
	}

	fixed := obj
	if !strings.Contains(fixed, `"`) {
		fixed = strings.ReplaceAll(fixed, "'", `"`)
	}
	fixed = bareKeyRe.ReplaceAllString(fixed, `$1"$2"$3:`)
	fixed = trailingComaRe.ReplaceAllString(fixed, "$1")
	fixed = quotedNumRe.ReplaceAllString(fixed, `:$1$2$3`)

	if !json.Valid([]byte(fixed)) {
		return "", errors.New("unrepairable JSON: " + truncate(obj, 200))
	}
	return fixed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
