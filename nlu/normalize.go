package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceClauseRe = regexp.MustCompile(
		`(?i)\s*(?:(?:between|from)\s*(?:` + currencyAlt + `)?\s*` + amountAlt +
			`\s*(?:and|to|-)\s*(?:` + currencyAlt + `)?\s*` + amountAlt +
			`|(?:under|below|less\s*than|over|above|more\s*than|at\s*least)\s*(?:` + currencyAlt + `)?\s*` + amountAlt + `).*$`)
	leadingFillerRe  = regexp.MustCompile(`(?i)^(?:(?:me|some|the|a|an)\s+)+`)
	trailingPoliteRe = regexp.MustCompile(`(?i)[\s,]*\b(?:please|pls|thanks|thank\s+you)\b[\s.!?]*$`)
	uomOfRe          = regexp.MustCompile(`(?i)^(?:` + uomAlt + `)\s+of\s+`)
)

// parseQuantity accepts digits or the small word-number vocabulary.
// Quantities below one are rejected; the qty slot is always positive.
func parseQuantity(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if n, ok := wordNumbers[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// cleanProduct strips polite fillers, leading articles, unit-of-measure
// prefixes, and any price clause the lazy capture swallowed (together
// with everything after it), then lowercases what is left.
func cleanProduct(s string) string {
	s = strings.TrimSpace(s)
	s = trailingPoliteRe.ReplaceAllString(s, "")
	s = priceClauseRe.ReplaceAllString(s, "")
	s = leadingFillerRe.ReplaceAllString(s, "")
	s = uomOfRe.ReplaceAllString(s, "")
	s = strings.Trim(s, " .,!?")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// inferCategory maps a product phrase onto a catalog category using the
// ordered keyword table. Empty string means no category matched.
func inferCategory(product string) string {
	if product == "" {
		return ""
	}
	for _, e := range categoryKeywords {
		for _, kw := range e.keywords {
			if strings.Contains(product, kw) {
				return e.name
			}
		}
	}
	return ""
}

// normalizeGroups converts the raw capture groups of the matched intent
// pattern into typed slots.
func normalizeGroups(groups map[string]string, slots map[string]any) {
	if q, ok := parseQuantity(groups["qty"]); ok {
		slots["qty"] = q
	}
	if v := strings.ToLower(strings.TrimSpace(groups["uom"])); v != "" {
		slots["uom"] = v
	}
	if p := cleanProduct(groups["product"]); p != "" {
		slots["product"] = p
	}
	if v := strings.ToLower(strings.TrimSpace(groups["size"])); v != "" {
		slots["size"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(groups["color"])); v != "" {
		slots["color"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(groups["brand"])); v != "" {
		slots["brand"] = v
	}
	if f, ok := parseAmount(groups["price_max"]); ok {
		slots["price_max"] = f
	}
	if f, ok := parseAmount(groups["price_min"]); ok {
		slots["price_min"] = f
	}
	if cur := firstOf(groups["cur1"], groups["cur2"]); cur != "" {
		slots["currency"] = cur
	}
}

// normalizeCurrency maps any recognized currency token (symbol, code or
// word) to its display symbol. Unrecognized tokens pass through.
func normalizeCurrency(tok string) string {
	key := strings.ToLower(strings.TrimSpace(tok))
	key = strings.TrimSuffix(key, ".")
	code, ok := currencyCodes[key]
	if !ok {
		return tok
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

// polishSlots runs after every contributor (matcher, extractors, tagger,
// clarifier) has written its slots: category inference, currency
// symbol normalization, the price_limit alias, and collapsing a
// degenerate min==max range onto the max bound.
func polishSlots(slots map[string]any) {
	if p, _ := slots["product"].(string); p != "" {
		if _, have := slots["category"]; !have {
			if c := inferCategory(p); c != "" {
				slots["category"] = c
			}
		}
	}

	if cur, _ := slots["currency"].(string); cur != "" {
		slots["currency"] = normalizeCurrency(cur)
	}

	// Clarifier output sometimes uses price_limit for a cap.
	if v, have := slots["price_limit"]; have {
		if _, haveMax := slots["price_max"]; !haveMax {
			if f, cur, ok := coercePrice(v); ok {
				slots["price_max"] = f
				if cur != "" {
					if _, haveCur := slots["currency"]; !haveCur {
						slots["currency"] = cur
					}
				}
			}
		}
		delete(slots, "price_limit")
	}

	min, haveMin := slots["price_min"].(float64)
	max, haveMax := slots["price_max"].(float64)
	if haveMin && haveMax && min == max {
		delete(slots, "price_min")
		haveMin = false
	}
	if haveMax && !haveMin {
		slots["price_limit"] = max
	}
}
