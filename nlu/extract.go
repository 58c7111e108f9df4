package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

// Attribute extractors scan the whole sanitized text, not just the span
// the intent pattern matched, so "blue sneakers please" still yields a
// color. First match wins per attribute.
var (
	colorRe = regexp.MustCompile(`(?i)\b(` + colorAlt + `)\b`)
	sizeRe  = regexp.MustCompile(`(?i)\b(` + sizeAlt + `)\b`)
	brandRe = regexp.MustCompile(`(?i)\b(` + brandAlt + `)\b`)

	priceBetweenRe = regexp.MustCompile(
		`(?i)(?:between|from)\s*(?P<cur1>` + currencyAlt + `)?\s*(?P<min>` + amountAlt + `)\s*(?:and|to|-)\s*(?P<cur2>` + currencyAlt + `)?\s*(?P<max>` + amountAlt + `)`)
	priceUnderRe = regexp.MustCompile(
		`(?i)(?:under|below|less\s*than)\s*(?P<cur>` + currencyAlt + `)?\s*(?P<val>` + amountAlt + `)`)
	priceOverRe = regexp.MustCompile(
		`(?i)(?:over|above|more\s*than|at\s*least)\s*(?P<cur>` + currencyAlt + `)?\s*(?P<val>` + amountAlt + `)`)
)

// parseAmount converts a matched amount token to a float. Comma
// thousands-separators are dropped; a trailing k/m multiplies by 1e3 /
// 1e6. Unparseable or negative input yields ok=false.
func parseAmount(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1e3
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1e6
		s = strings.TrimSuffix(s, "m")
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f * mult, true
}

// extractAttributes fills color/size/brand from anywhere in the text,
// leaving slots unset on no match.
func extractAttributes(text string, slots map[string]any) {
	if m := colorRe.FindStringSubmatch(text); m != nil {
		slots["color"] = strings.ToLower(m[1])
	}
	if m := sizeRe.FindStringSubmatch(text); m != nil {
		slots["size"] = strings.ToLower(m[1])
	}
	if m := brandRe.FindStringSubmatch(text); m != nil {
		slots["brand"] = strings.ToLower(m[1])
	}
}

// extractPrices applies the three price-phrase shapes in fixed order:
// between sets both bounds; under and over fill a bound only if it is
// still unset.
func extractPrices(text string, slots map[string]any) {
	if m := findNamed(priceBetweenRe, text); m != nil {
		if v, ok := parseAmount(m["min"]); ok {
			slots["price_min"] = v
		}
		if v, ok := parseAmount(m["max"]); ok {
			slots["price_max"] = v
		}
		if cur := firstOf(m["cur1"], m["cur2"]); cur != "" {
			slots["currency"] = cur
		}
	}

	if _, have := slots["price_max"]; !have {
		if m := findNamed(priceUnderRe, text); m != nil {
			if v, ok := parseAmount(m["val"]); ok {
				slots["price_max"] = v
				if m["cur"] != "" {
					slots["currency"] = m["cur"]
				}
			}
		}
	}

	if _, have := slots["price_min"]; !have {
		if m := findNamed(priceOverRe, text); m != nil {
			if v, ok := parseAmount(m["val"]); ok {
				slots["price_min"] = v
				if m["cur"] != "" {
					slots["currency"] = m["cur"]
				}
			}
		}
	}
}

// findNamed returns the named capture groups of the first match, or nil.
func findNamed(re *regexp.Regexp, text string) map[string]string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	out := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(m) {
			out[name] = m[i]
		}
	}
	return out
}

func firstOf(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
