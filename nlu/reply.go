package nlu

import (
	"fmt"
	"math"
	"strings"
)

const fallbackReply = "Sorry, I didn't understand that."

// composeReply builds the acknowledgment string for an intent + slot
// set. Pure function: no slot is touched.
func composeReply(intent Intent, slots map[string]any) string {
	switch intent {
	case IntentGreeting:
		return "Hi! Try: 'find Nike shoes under $100', 'add 2 packs of Milo', 'show cart', or 'checkout'."
	case IntentSearch:
		p := slotString(slots, "product", "the item")
		var bits []string
		if b := slotString(slots, "brand", ""); b != "" {
			bits = append(bits, b)
		}
		if c := slotString(slots, "color", ""); c != "" {
			bits = append(bits, c)
		}
		if s := slotString(slots, "size", ""); s != "" {
			bits = append(bits, s)
		}
		cur := slotString(slots, "currency", "$")
		if v, ok := slots["price_min"].(float64); ok {
			bits = append(bits, fmt.Sprintf("over %s%s", cur, formatPrice(v)))
		}
		if v, ok := slots["price_max"].(float64); ok {
			bits = append(bits, fmt.Sprintf("under %s%s", cur, formatPrice(v)))
		}
		if len(bits) > 0 {
			return fmt.Sprintf("Searching for %s (%s)...", p, strings.Join(bits, ", "))
		}
		return fmt.Sprintf("Searching for %s...", p)
	case IntentAdd:
		qty := 1
		if q, ok := slots["qty"].(int); ok {
			qty = q
		}
		uom := ""
		if u := slotString(slots, "uom", ""); u != "" {
			uom = " " + u
		}
		return fmt.Sprintf("Adding %d%s of %s to your cart...", qty, uom, slotString(slots, "product", "item"))
	case IntentRemove:
		return fmt.Sprintf("Removing %s from your cart...", slotString(slots, "product", "that item"))
	case IntentShowCart:
		return "Here's what's in your cart..."
	case IntentCheckout:
		return "Proceeding to checkout..."
	default:
		return fallbackReply
	}
}

// scoreConfidence is 0.9 for any recognized intent and 0.3 for unknown,
// with a 0.8 floor whenever the clarifier contributed a field.
func scoreConfidence(intent Intent, clarifierUsed bool) float64 {
	conf := 0.3
	if intent != IntentUnknown {
		conf = 0.9
	}
	if clarifierUsed && conf < 0.8 {
		conf = 0.8
	}
	return math.Round(conf*100) / 100
}

func slotString(slots map[string]any, key, def string) string {
	if s, ok := slots[key].(string); ok && s != "" {
		return s
	}
	return def
}

// formatPrice drops a trailing .0 so "$100" reads like the shopper said
// it.
func formatPrice(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
