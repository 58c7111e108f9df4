package nlu

import "testing"

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"one", 1, true},
		{"a", 1, true},
		{"pair", 2, true},
		{"pairs", 2, true},
		{"dozen", 12, true},
		{"Ten", 10, true},
		{"", 0, false},
		{"zillion", 0, false},
		{"0", 0, false},
		{"-2", 0, false},
	}
	for _, c := range cases {
		got, ok := parseQuantity(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseQuantity(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCleanProduct(t *testing.T) {
	cases := []struct{ in, want string }{
		{"me some Running Shoes please", "running shoes"},
		{"the shoes", "shoes"},
		{"bottles of coke", "coke"},
		{"shoes between $50 and $150", "shoes"},
		{"laptops under 2k", "laptops"},
		{"shoes under 50 for my son", "shoes"},
		{"  Milo  ", "milo"},
	}
	for _, c := range cases {
		if got := cleanProduct(c.in); got != c.want {
			t.Errorf("cleanProduct(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInferCategory(t *testing.T) {
	cases := []struct{ in, want string }{
		{"nike sneakers", "shoes"},
		{"leather boots", "shoes"},
		{"running shoes", "shoes"},
		{"gaming laptop", "laptops"},
		{"iphone", "phones"},
		{"milo", "beverages"},
		{"graphic tee", "tshirts"},
		{"garden hose", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := inferCategory(c.in); got != c.want {
			t.Errorf("inferCategory(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	cases := []struct{ in, want string }{
		{"$", "$"},
		{"usd", "$"},
		{"rs", "Rs"},
		{"Rs.", "Rs"},
		{"LKR", "Rs"},
		{"eur", "€"},
		{"gbp", "£"},
		{"rupees", "Rs"},
		{"yen", "yen"},
	}
	for _, c := range cases {
		if got := normalizeCurrency(c.in); got != c.want {
			t.Errorf("normalizeCurrency(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPolishSlotsCategoryAndCurrency(t *testing.T) {
	slots := map[string]any{"product": "nike sneakers", "currency": "lkr", "price_max": 300000.0}
	polishSlots(slots)
	if slots["category"] != "shoes" {
		t.Errorf("Expected category shoes, got %v", slots["category"])
	}
	if slots["currency"] != "Rs" {
		t.Errorf("Expected currency Rs, got %v", slots["currency"])
	}
	if slots["price_limit"] != 300000.0 {
		t.Errorf("Expected price_limit alias 300000, got %v", slots["price_limit"])
	}
}

func TestPolishSlotsMinMaxCollapse(t *testing.T) {
	slots := map[string]any{"price_min": 100.0, "price_max": 100.0}
	polishSlots(slots)
	if _, have := slots["price_min"]; have {
		t.Errorf("Expected price_min removed when equal to price_max, got %v", slots["price_min"])
	}
	if slots["price_max"] != 100.0 {
		t.Errorf("Expected price_max kept, got %v", slots["price_max"])
	}
	if slots["price_limit"] != 100.0 {
		t.Errorf("Expected price_limit alias after collapse, got %v", slots["price_limit"])
	}
}

func TestPolishSlotsKeepsDistinctRange(t *testing.T) {
	slots := map[string]any{"price_min": 50.0, "price_max": 150.0}
	polishSlots(slots)
	if slots["price_min"] != 50.0 || slots["price_max"] != 150.0 {
		t.Errorf("Expected range kept, got min=%v max=%v", slots["price_min"], slots["price_max"])
	}
	if _, have := slots["price_limit"]; have {
		t.Errorf("Expected no price_limit alias for a real range")
	}
}

func TestPolishSlotsExistingCategoryWins(t *testing.T) {
	slots := map[string]any{"product": "milo", "category": "groceries"}
	polishSlots(slots)
	if slots["category"] != "groceries" {
		t.Errorf("Expected existing category kept, got %v", slots["category"])
	}
}
