// Package nlu turns a raw shopper utterance into a structured shopping
// intent plus normalized slots. The pipeline is regex-first: a sanitize
// pass, a speech-to-text term-fix pass, ordered intent patterns with
// named capture groups, independent attribute extractors, and a
// normalization polish. Optional enrichment (entity tagger, generative
// clarifier) fills gaps but never overrides what the patterns found.
package nlu

import "regexp"

// Spelled-out quantities accepted in add-to-cart phrases and clarifier
// output.
var wordNumbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"dozen": 12, "pair": 2, "pairs": 2,
}

// Alternation used inside the add-to-cart pattern. Longest-first so
// "pairs" is preferred over "pair"; leading articles are consumed
// separately by the pattern itself.
const wordNumberAlt = `dozen|pairs|three|seven|eight|pair|four|five|nine|six|ten|one|two`

const (
	uomAlt   = `packs?|packets?|pieces?|pcs?|bottles?|units?|cans?|bags?|boxes?|kg|g|lb|lbs|ml|l|liters?|litres?`
	colorAlt = `black|white|red|blue|green|yellow|pink|purple|silver|gold|gray|grey|brown|beige|navy|orange`
	sizeAlt  = `xxs|xs|s|m|l|xl|xxl|xxxl|small|medium|large|\d+[x×]\d+|\d+(?:\.\d+)?(?:cm|mm|in|inch|inches)`
	brandAlt = `nike|adidas|puma|reebok|samsung|apple|sony|dell|hp|lenovo|milo|nestle|coke|pepsi|asus|acer|msi`

	// Currency tokens as they appear inline: a symbol or a code word.
	currencyAlt = `[$£€]|rs\.?|lkr|usd|eur|gbp`

	// Amounts accept comma separators and a k/m magnitude suffix.
	amountAlt = `[\d,]+(?:\.\d+)?[km]?`
)

// Currency word/symbol to canonical code.
var currencyCodes = map[string]string{
	"dollar": "USD", "dollars": "USD", "$": "USD", "usd": "USD",
	"rupee": "LKR", "rupees": "LKR", "rs": "LKR", "lkr": "LKR",
	"euro": "EUR", "euros": "EUR", "€": "EUR", "eur": "EUR",
	"pound": "GBP", "pounds": "GBP", "£": "GBP", "gbp": "GBP",
}

// Canonical code to display symbol.
var currencySymbols = map[string]string{
	"USD": "$", "LKR": "Rs", "EUR": "€", "GBP": "£",
}

// categoryEntry keeps the keyword table ordered: the first category
// whose keyword appears in the product phrase wins.
type categoryEntry struct {
	name     string
	keywords []string
}

var categoryKeywords = []categoryEntry{
	{"shoes", []string{"shoe", "shoes", "sneaker", "sneakers", "heels", "sandals", "boots"}},
	{"laptops", []string{"laptop", "notebook", "macbook", "chromebook"}},
	{"phones", []string{"phone", "smartphone", "iphone", "android"}},
	{"tshirts", []string{"t-shirt", "t shirt", "tee", "tees"}},
	{"beverages", []string{"milo", "coke", "pepsi", "coffee", "tea", "juice", "soda"}},
}

// termFix corrects a common speech-to-text mis-transcription.
type termFix struct {
	re   *regexp.Regexp
	repl string
}

var termFixes = []termFix{
	{regexp.MustCompile(`(?i)\bshows\b`), "shoes"},
	{regexp.MustCompile(`(?i)\bmellow\b`), "milo"},
	{regexp.MustCompile(`(?i)\bcocks\b`), "coke"},
}
