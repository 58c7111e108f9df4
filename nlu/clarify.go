package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/llm"
)

const clarifySystem = `You are a shopping query interpreter. Given a shopper's utterance and the slots
already extracted, fill in ONLY what is missing or ambiguous. Respond with a single
JSON object and nothing else. Example:
{"intent": "search_product", "product": "running shoes", "brand": "nike", "price_max": 100, "currency": "$"}
Allowed intents: search_product, add_to_cart, remove_from_cart, show_cart, checkout, greeting, unknown.
Prices may be numbers or short strings like "300k LKR". Never invent attributes
the shopper did not say. Omit keys you are not confident about.`

// clarifierSchema accepts price fields as number or string so "300k
// LKR" style answers survive validation and get coerced afterwards.
const clarifierSchema = `{
	"type": "object",
	"properties": {
		"intent":      {"type": "string"},
		"product":     {"type": "string", "maxLength": 120},
		"category":    {"type": "string", "maxLength": 50},
		"qty":         {"type": "integer", "minimum": 0},
		"uom":         {"type": "string", "maxLength": 20},
		"size":        {"type": "string", "maxLength": 20},
		"color":       {"type": "string", "maxLength": 30},
		"brand":       {"type": "string", "maxLength": 50},
		"currency":    {"type": "string", "maxLength": 10},
		"price_min":   {"type": ["number", "string"]},
		"price_max":   {"type": ["number", "string"]},
		"price_limit": {"type": ["number", "string"]},
		"reply":       {"type": "string"}
	}
}`

var clarifierSchemaLoader = gojsonschema.NewStringLoader(clarifierSchema)

// clarifierSlotKeys is the merge allow-list: anything else the model
// returns is dropped.
var clarifierSlotKeys = []string{
	"product", "category", "qty", "uom", "size", "color", "brand",
	"currency", "price_min", "price_max", "price_limit",
}

var intentSynonyms = map[string]Intent{
	"buy":      IntentSearch,
	"purchase": IntentSearch,
	"order":    IntentAdd,
	"search":   IntentSearch,
	"add":      IntentAdd,
	"remove":   IntentRemove,
}

var knownIntents = map[Intent]bool{
	IntentSearch: true, IntentAdd: true, IntentRemove: true,
	IntentShowCart: true, IntentCheckout: true, IntentGreeting: true,
	IntentUnknown: true,
}

var priceStringRe = regexp.MustCompile(
	`(?i)(?P<cur1>` + currencyAlt + `)?\s*(?P<amt>` + amountAlt + `)\s*(?P<cur2>` + currencyAlt + `)?`)

// coercePrice converts a clarifier price value to a float, pulling out
// any embedded currency token. JSON numbers arrive as float64.
func coercePrice(v any) (float64, string, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, "", false
		}
		return t, "", true
	case int:
		if t < 0 {
			return 0, "", false
		}
		return float64(t), "", true
	case string:
		m := findNamed(priceStringRe, t)
		if m == nil {
			return 0, "", false
		}
		f, ok := parseAmount(m["amt"])
		if !ok {
			return 0, "", false
		}
		return f, firstOf(m["cur1"], m["cur2"]), true
	}
	return 0, "", false
}

// normalizeClarifiedIntent maps the model's intent word onto a known
// intent, via the synonym table when needed. Unknown words are dropped.
func normalizeClarifiedIntent(s string) (Intent, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	if syn, ok := intentSynonyms[key]; ok {
		return syn, true
	}
	if knownIntents[Intent(key)] {
		return Intent(key), true
	}
	return "", false
}

// Clarifier asks an LLM to fill slots the deterministic pipeline could
// not, validating and sanity-bounding everything it returns before any
// of it reaches the response.
type Clarifier struct {
	Client llm.Client
}

// clarified is the validated, coerced model contribution.
type clarified struct {
	intent Intent
	hasInt bool
	slots  map[string]any
	raw    string
}

// Clarify runs one model round-trip. The error covers transport and
// unrepairable output; schema-invalid output is also an error so the
// caller can record it without trusting any of it.
func (c *Clarifier) Clarify(ctx context.Context, text string, intent Intent, slots map[string]any) (*clarified, error) {
	user := buildClarifyUser(text, intent, slots)
	raw, err := c.Client.Chat(ctx, clarifySystem, user)
	if err != nil {
		return nil, err
	}

	repaired, err := RepairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("clarifier output: %w", err)
	}

	res, err := gojsonschema.Validate(clarifierSchemaLoader, gojsonschema.NewStringLoader(repaired))
	if err != nil {
		return nil, fmt.Errorf("clarifier schema: %w", err)
	}
	if !res.Valid() {
		return nil, fmt.Errorf("clarifier output rejected: %s", schemaErrors(res))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, err
	}

	out := &clarified{slots: make(map[string]any), raw: repaired}
	if s, _ := obj["intent"].(string); s != "" {
		if in, ok := normalizeClarifiedIntent(s); ok {
			out.intent = in
			out.hasInt = true
		}
	}
	for _, key := range clarifierSlotKeys {
		v, have := obj[key]
		if !have || v == nil {
			continue
		}
		switch key {
		case "price_min", "price_max", "price_limit":
			f, cur, ok := coercePrice(v)
			if !ok {
				continue
			}
			out.slots[key] = f
			if cur != "" {
				if _, haveCur := out.slots["currency"]; !haveCur {
					out.slots["currency"] = cur
				}
			}
		case "qty":
			if f, ok := v.(float64); ok && f >= 0 {
				out.slots[key] = int(f)
			}
		default:
			if s, ok := v.(string); ok {
				s = strings.ToLower(strings.TrimSpace(s))
				if s != "" {
					out.slots[key] = s
				}
			}
		}
	}
	return out, nil
}

// merge applies the clarifier contribution on top of the deterministic
// slots without ever overwriting them, unless override is set. The
// intent is adopted only when the matcher gave up. Returns the final
// intent and whether anything from the model was used.
func (cl *clarified) merge(intent Intent, slots map[string]any, override bool) (Intent, bool) {
	used := false
	if cl.hasInt && cl.intent != IntentUnknown && (intent == IntentUnknown || override) {
		if cl.intent != intent {
			used = true
		}
		intent = cl.intent
	}
	for k, v := range cl.slots {
		if _, have := slots[k]; have && !override {
			continue
		}
		slots[k] = v
		used = true
	}
	return intent, used
}

func buildClarifyUser(text string, intent Intent, slots map[string]any) string {
	known, _ := json.Marshal(slots)
	return fmt.Sprintf("Utterance: %q\nDetected intent: %s\nExtracted slots: %s", text, intent, known)
}

func schemaErrors(res *gojsonschema.Result) string {
	var parts []string
	for _, e := range res.Errors() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
