package nlu

import (
	"context"
	"strings"
	"testing"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/config"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/types"
)

func process(t *testing.T, text string) types.QueryResponse {
	t.Helper()
	p := New(Options{})
	return p.Process(context.Background(), types.QueryRequest{Text: text})
}

func TestProcessSearchWithBrandAndPrice(t *testing.T) {
	res := process(t, "find Nike shoes under $100")
	if res.Intent != "search_product" {
		t.Fatalf("Expected search_product, got %s", res.Intent)
	}
	if res.Slots["brand"] != "nike" {
		t.Errorf("Expected brand nike, got %v", res.Slots["brand"])
	}
	product, _ := res.Slots["product"].(string)
	if !strings.Contains(product, "shoes") {
		t.Errorf("Expected product to contain shoes, got %q", product)
	}
	if res.Slots["price_max"] != 100.0 {
		t.Errorf("Expected price_max 100, got %v", res.Slots["price_max"])
	}
	if res.Slots["currency"] != "$" {
		t.Errorf("Expected currency $, got %v", res.Slots["currency"])
	}
	if res.Slots["category"] != "shoes" {
		t.Errorf("Expected category shoes, got %v", res.Slots["category"])
	}
	if res.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %v", res.Confidence)
	}
}

func TestProcessAddWithQuantityAndUnit(t *testing.T) {
	res := process(t, "add 2 packs of Milo")
	if res.Intent != "add_to_cart" {
		t.Fatalf("Expected add_to_cart, got %s", res.Intent)
	}
	if res.Slots["qty"] != 2 {
		t.Errorf("Expected qty 2, got %v", res.Slots["qty"])
	}
	if res.Slots["uom"] != "packs" {
		t.Errorf("Expected uom packs, got %v", res.Slots["uom"])
	}
	product, _ := res.Slots["product"].(string)
	if !strings.Contains(product, "milo") {
		t.Errorf("Expected product to contain milo, got %q", product)
	}
	if res.Slots["category"] != "beverages" {
		t.Errorf("Expected category beverages, got %v", res.Slots["category"])
	}
}

func TestProcessWordQuantity(t *testing.T) {
	res := process(t, "add a pair of shoes")
	if res.Intent != "add_to_cart" {
		t.Fatalf("Expected add_to_cart, got %s", res.Intent)
	}
	if res.Slots["qty"] != 2 {
		t.Errorf("Expected qty 2 from 'pair', got %v", res.Slots["qty"])
	}
}

func TestProcessSTTTermFix(t *testing.T) {
	res := process(t, "add 3 bottles of cocks")
	if res.Intent != "add_to_cart" {
		t.Fatalf("Expected add_to_cart, got %s", res.Intent)
	}
	if res.Slots["qty"] != 3 {
		t.Errorf("Expected qty 3, got %v", res.Slots["qty"])
	}
	if res.Slots["uom"] != "bottles" {
		t.Errorf("Expected uom bottles, got %v", res.Slots["uom"])
	}
	if res.Slots["product"] != "coke" {
		t.Errorf("Expected product coke after term fix, got %v", res.Slots["product"])
	}
	if res.Slots["category"] != "beverages" {
		t.Errorf("Expected category beverages, got %v", res.Slots["category"])
	}
}

func TestProcessPriceRange(t *testing.T) {
	res := process(t, "find shoes between $50 and $150")
	if res.Slots["price_min"] != 50.0 {
		t.Errorf("Expected price_min 50, got %v", res.Slots["price_min"])
	}
	if res.Slots["price_max"] != 150.0 {
		t.Errorf("Expected price_max 150, got %v", res.Slots["price_max"])
	}
	if res.Slots["product"] != "shoes" {
		t.Errorf("Expected product shoes with price clause stripped, got %v", res.Slots["product"])
	}
}

func TestProcessInlinePriceBeatsGlobalScan(t *testing.T) {
	res := process(t, "find shoes between 50 and 100 under 30")
	if res.Slots["price_max"] != 30.0 {
		t.Errorf("Expected inline price_max 30 to win, got %v", res.Slots["price_max"])
	}
	if res.Slots["price_min"] != 50.0 {
		t.Errorf("Expected price_min 50, got %v", res.Slots["price_min"])
	}
	if res.Slots["product"] != "shoes" {
		t.Errorf("Expected product shoes, got %v", res.Slots["product"])
	}
}

func TestProcessInlineColorBeatsGlobalScan(t *testing.T) {
	res := process(t, "remove blue cup red")
	if res.Intent != "remove_from_cart" {
		t.Fatalf("Expected remove_from_cart, got %s", res.Intent)
	}
	if res.Slots["color"] != "red" {
		t.Errorf("Expected inline color red to win, got %v", res.Slots["color"])
	}
	if res.Slots["product"] != "blue cup" {
		t.Errorf("Expected product blue cup, got %v", res.Slots["product"])
	}
}

func TestProcessZeroQuantityDropped(t *testing.T) {
	res := process(t, "add 0 bottles of water")
	if res.Intent != "add_to_cart" {
		t.Fatalf("Expected add_to_cart, got %s", res.Intent)
	}
	if _, have := res.Slots["qty"]; have {
		t.Errorf("Expected no qty slot for a zero quantity, got %v", res.Slots["qty"])
	}
}

func TestProcessMagnitudeSuffixAndCurrencyWord(t *testing.T) {
	res := process(t, "find laptops under rs 300k")
	if res.Slots["price_max"] != 300000.0 {
		t.Errorf("Expected price_max 300000, got %v", res.Slots["price_max"])
	}
	if res.Slots["currency"] != "Rs" {
		t.Errorf("Expected currency Rs, got %v", res.Slots["currency"])
	}
	if res.Slots["price_limit"] != 300000.0 {
		t.Errorf("Expected price_limit alias, got %v", res.Slots["price_limit"])
	}
	if res.Slots["category"] != "laptops" {
		t.Errorf("Expected category laptops, got %v", res.Slots["category"])
	}
}

func TestProcessEmptyInput(t *testing.T) {
	res := process(t, "")
	if res.Intent != "unknown" {
		t.Errorf("Expected unknown, got %s", res.Intent)
	}
	if res.Confidence != 0.3 {
		t.Errorf("Expected confidence 0.3, got %v", res.Confidence)
	}
	if res.Reply != fallbackReply {
		t.Errorf("Expected fallback reply, got %q", res.Reply)
	}
	if res.Locale != "en-US" {
		t.Errorf("Expected default locale en-US, got %q", res.Locale)
	}
}

func TestProcessGibberish(t *testing.T) {
	res := process(t, "asdkjasd")
	if res.Intent != "unknown" {
		t.Errorf("Expected unknown, got %s", res.Intent)
	}
	if _, have := res.Slots["product"]; have {
		t.Errorf("Expected no product slot, got %v", res.Slots["product"])
	}
	if res.Confidence != 0.3 {
		t.Errorf("Expected confidence 0.3, got %v", res.Confidence)
	}
}

func TestProcessActionMirrorsSlots(t *testing.T) {
	res := process(t, "find shoes")
	if res.Action.Type != res.Intent {
		t.Errorf("Expected action type %s, got %s", res.Intent, res.Action.Type)
	}
	for k, v := range res.Slots {
		if res.Action.Params[k] != v {
			t.Errorf("Expected action param %s = %v, got %v", k, v, res.Action.Params[k])
		}
	}
}

func TestProcessEchoesIdentity(t *testing.T) {
	p := New(Options{})
	res := p.Process(context.Background(), types.QueryRequest{Text: "show my cart", UserID: "u-1", Locale: "si-LK"})
	if res.Intent != "show_cart" {
		t.Errorf("Expected show_cart, got %s", res.Intent)
	}
	if res.UserID != "u-1" {
		t.Errorf("Expected user id echoed, got %q", res.UserID)
	}
	if res.Locale != "si-LK" {
		t.Errorf("Expected locale echoed, got %q", res.Locale)
	}
}

// Re-running the pipeline on its own reply must never panic.
func TestProcessReplyIdempotence(t *testing.T) {
	p := New(Options{})
	inputs := []string{
		"find Nike shoes under $100",
		"add 2 packs of Milo",
		"show my cart",
		"checkout",
		"hello",
		"asdkjasd",
	}
	for _, in := range inputs {
		first := p.Process(context.Background(), types.QueryRequest{Text: in})
		second := p.Process(context.Background(), types.QueryRequest{Text: first.Reply})
		if second.Confidence < 0 || second.Confidence > 1 {
			t.Errorf("Confidence out of range for reply of %q: %v", in, second.Confidence)
		}
	}
}

func TestProcessClarifierFillsGaps(t *testing.T) {
	fake := &fakeLLM{out: `{"intent": "search_product", "product": "bluetooth speaker", "price_max": "300k LKR"}`}
	p := New(Options{ClarifierMode: config.ClarifierAuto, LLM: fake})
	res := p.Process(context.Background(), types.QueryRequest{Text: "asdkjasd"})

	if res.Intent != "search_product" {
		t.Fatalf("Expected clarifier intent adopted, got %s", res.Intent)
	}
	if res.Slots["product"] != "bluetooth speaker" {
		t.Errorf("Expected clarifier product, got %v", res.Slots["product"])
	}
	if res.Slots["price_max"] != 300000.0 {
		t.Errorf("Expected coerced price_max 300000, got %v", res.Slots["price_max"])
	}
	if res.Slots["currency"] != "Rs" {
		t.Errorf("Expected normalized currency Rs, got %v", res.Slots["currency"])
	}
	if res.Slots["_llm_used"] != true {
		t.Errorf("Expected _llm_used diagnostic, got %v", res.Slots["_llm_used"])
	}
	if res.Slots["_llm_model"] != "fake-model" {
		t.Errorf("Expected _llm_model diagnostic, got %v", res.Slots["_llm_model"])
	}
	if res.Confidence < 0.8 {
		t.Errorf("Expected confidence floor 0.8 with clarifier contribution, got %v", res.Confidence)
	}
}

func TestProcessClarifierNeverOverwrites(t *testing.T) {
	fake := &fakeLLM{out: `{"intent": "add_to_cart", "brand": "adidas", "color": "red"}`}
	p := New(Options{ClarifierMode: config.ClarifierAlways, LLM: fake})
	res := p.Process(context.Background(), types.QueryRequest{Text: "find nike headphones"})

	if res.Intent != "search_product" {
		t.Errorf("Expected matcher intent kept, got %s", res.Intent)
	}
	if res.Slots["brand"] != "nike" {
		t.Errorf("Expected pattern brand kept, got %v", res.Slots["brand"])
	}
	if res.Slots["color"] != "red" {
		t.Errorf("Expected clarifier to fill missing color, got %v", res.Slots["color"])
	}
}

func TestProcessClarifierFailureIsSoft(t *testing.T) {
	fake := &fakeLLM{out: "no json here at all"}
	p := New(Options{ClarifierMode: config.ClarifierAuto, LLM: fake})
	res := p.Process(context.Background(), types.QueryRequest{Text: "asdkjasd"})

	if res.Intent != "unknown" {
		t.Errorf("Expected unknown after clarifier failure, got %s", res.Intent)
	}
	if res.Confidence != 0.3 {
		t.Errorf("Expected confidence 0.3, got %v", res.Confidence)
	}
	if _, have := res.Slots["_llm_error"]; !have {
		t.Error("Expected _llm_error diagnostic slot")
	}
}

func TestProcessClarifierOffByDefault(t *testing.T) {
	fake := &fakeLLM{out: `{"intent": "checkout"}`}
	p := New(Options{LLM: fake})
	res := p.Process(context.Background(), types.QueryRequest{Text: "asdkjasd"})
	if res.Intent != "unknown" {
		t.Errorf("Expected clarifier not consulted with mode off, got %s", res.Intent)
	}
}

func TestProcessNERFillsBrand(t *testing.T) {
	tagger := tagFunc(func(ctx context.Context, text string) ([]Entity, error) {
		return []Entity{{Text: "Sony", Label: "ORG"}}, nil
	})
	p := New(Options{UseNER: true, Tagger: tagger})
	res := p.Process(context.Background(), types.QueryRequest{Text: "find wireless headphones"})
	if res.Slots["brand"] != "sony" {
		t.Errorf("Expected tagger brand sony, got %v", res.Slots["brand"])
	}
}

func TestProcessNERFailureIsSoft(t *testing.T) {
	tagger := tagFunc(func(ctx context.Context, text string) ([]Entity, error) {
		return nil, context.DeadlineExceeded
	})
	p := New(Options{UseNER: true, Tagger: tagger})
	res := p.Process(context.Background(), types.QueryRequest{Text: "find shoes"})
	if res.Intent != "search_product" {
		t.Errorf("Expected pipeline to survive tagger failure, got %s", res.Intent)
	}
}

type tagFunc func(ctx context.Context, text string) ([]Entity, error)

func (f tagFunc) Tag(ctx context.Context, text string) ([]Entity, error) { return f(ctx, text) }
