package nlu

import "regexp"

// Intent is the coarse action category of an utterance.
type Intent string

const (
	IntentSearch   Intent = "search_product"
	IntentAdd      Intent = "add_to_cart"
	IntentRemove   Intent = "remove_from_cart"
	IntentShowCart Intent = "show_cart"
	IntentCheckout Intent = "checkout"
	IntentGreeting Intent = "greeting"
	IntentUnknown  Intent = "unknown"
)

// intentPattern pairs an intent tag with its compiled pattern. Adding
// an intent is a table change: named capture groups map directly onto
// slot names.
type intentPattern struct {
	intent Intent
	re     *regexp.Regexp
}

// Pattern order is the tie-break: action-verb and fixed-phrase patterns
// come before the generic search pattern so "add 2 packs of milo" and
// "show my cart" are not swallowed by it.
var intentPatterns = []intentPattern{
	{IntentAdd, regexp.MustCompile(
		`(?i)\b(?:add|buy|put)\b\s+` +
			`(?:(?:a|an)\s+)?` +
			`(?:(?P<qty>\d+|` + wordNumberAlt + `)\b\s*)?` +
			`(?:(?P<uom>` + uomAlt + `)\b\s*)?(?:of\s+)?` +
			`(?P<product>.+?)` +
			`(?:\s+(?P<size>` + sizeAlt + `))?` +
			`(?:\s+(?P<color>` + colorAlt + `))?` +
			`(?:\s+(?:from|by)\s+(?P<brand>` + brandAlt + `))?` +
			`(?:\s+(?:under|below|less\s*than)\s*(?P<cur1>` + currencyAlt + `)?\s*(?P<price_max>` + amountAlt + `))?` +
			`(?:\s+(?:over|above|more\s*than|at\s*least)\s*(?P<cur2>` + currencyAlt + `)?\s*(?P<price_min>` + amountAlt + `))?` +
			`(?:\s+to\s+(?:my\s+|the\s+)?cart)?` +
			`\s*$`)},
	{IntentRemove, regexp.MustCompile(
		`(?i)\b(?:remove|delete|take\s*out)\b\s+` +
			`(?P<product>.+?)` +
			`(?:\s+(?P<size>` + sizeAlt + `))?` +
			`(?:\s+(?P<color>` + colorAlt + `))?` +
			`(?:\s+(?:from|by)\s+(?P<brand>` + brandAlt + `))?` +
			`(?:\s+from\s+(?:my\s+|the\s+)?cart)?` +
			`\s*$`)},
	{IntentShowCart, regexp.MustCompile(`(?i)\b(?:show|view|see|what'?s|whats)\b.*\bcart\b`)},
	{IntentCheckout, regexp.MustCompile(`(?i)\b(?:checkout|check\s*out|place\s+order|pay)\b`)},
	{IntentSearch, regexp.MustCompile(
		`(?i)\b(?:find|search|show|look\s*for)\b\s+(?:me\s+|some\s+)?` +
			`(?P<product>.+?)\s*` +
			`(?:(?:under|below|less\s*than)\s*(?P<cur1>` + currencyAlt + `)?\s*(?P<price_max>` + amountAlt + `))?\s*` +
			`(?:(?:over|above|more\s*than|at\s*least)\s*(?P<cur2>` + currencyAlt + `)?\s*(?P<price_min>` + amountAlt + `))?\s*$`)},
	{IntentGreeting, regexp.MustCompile(`(?i)\b(?:hi|hello|hey)\b`)},
}

// detectIntent returns the first matching intent and its named capture
// groups, or IntentUnknown with nil groups.
func detectIntent(text string) (Intent, map[string]string) {
	for _, p := range intentPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		groups := make(map[string]string)
		for i, name := range p.re.SubexpNames() {
			if name != "" && i < len(m) && m[i] != "" {
				groups[name] = m[i]
			}
		}
		return p.intent, groups
	}
	return IntentUnknown, nil
}
