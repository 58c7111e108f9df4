package nlu

import "testing"

func TestDetectIntentAddToCart(t *testing.T) {
	intent, groups := detectIntent("add 3 bottles of coke")
	if intent != IntentAdd {
		t.Fatalf("Expected add_to_cart, got %s", intent)
	}
	if groups["qty"] != "3" {
		t.Errorf("Expected qty group 3, got %q", groups["qty"])
	}
	if groups["uom"] != "bottles" {
		t.Errorf("Expected uom group bottles, got %q", groups["uom"])
	}
	if groups["product"] != "coke" {
		t.Errorf("Expected product group coke, got %q", groups["product"])
	}
}

func TestDetectIntentWordQuantity(t *testing.T) {
	intent, groups := detectIntent("add a pair of shoes")
	if intent != IntentAdd {
		t.Fatalf("Expected add_to_cart, got %s", intent)
	}
	if groups["qty"] != "pair" {
		t.Errorf("Expected qty group pair, got %q", groups["qty"])
	}
	if groups["product"] != "shoes" {
		t.Errorf("Expected product group shoes, got %q", groups["product"])
	}
}

// A word that merely starts with a number word must not be split.
func TestDetectIntentNoPrefixQuantity(t *testing.T) {
	intent, groups := detectIntent("add tender coconut")
	if intent != IntentAdd {
		t.Fatalf("Expected add_to_cart, got %s", intent)
	}
	if groups["qty"] != "" {
		t.Errorf("Expected no qty group, got %q", groups["qty"])
	}
	if groups["product"] != "tender coconut" {
		t.Errorf("Expected product group 'tender coconut', got %q", groups["product"])
	}
}

func TestDetectIntentAddWithCartTail(t *testing.T) {
	intent, groups := detectIntent("add nike shoes to my cart")
	if intent != IntentAdd {
		t.Fatalf("Expected add_to_cart, got %s", intent)
	}
	if groups["product"] != "nike shoes" {
		t.Errorf("Expected product group 'nike shoes', got %q", groups["product"])
	}
}

func TestDetectIntentRemove(t *testing.T) {
	intent, groups := detectIntent("remove the shoes from my cart")
	if intent != IntentRemove {
		t.Fatalf("Expected remove_from_cart, got %s", intent)
	}
	if groups["product"] != "the shoes" {
		t.Errorf("Expected product group 'the shoes', got %q", groups["product"])
	}
}

// show/view phrases must hit the cart pattern before the generic
// search pattern gets a chance at them.
func TestDetectIntentCartBeforeSearch(t *testing.T) {
	for _, in := range []string{"show my cart", "view cart", "whats in my cart"} {
		intent, _ := detectIntent(in)
		if intent != IntentShowCart {
			t.Errorf("detectIntent(%q) = %s, want show_cart", in, intent)
		}
	}
}

func TestDetectIntentCheckout(t *testing.T) {
	for _, in := range []string{"checkout", "check out please", "place order"} {
		intent, _ := detectIntent(in)
		if intent != IntentCheckout {
			t.Errorf("detectIntent(%q) = %s, want checkout", in, intent)
		}
	}
}

func TestDetectIntentSearchWithPrice(t *testing.T) {
	intent, groups := detectIntent("find nike shoes under $100")
	if intent != IntentSearch {
		t.Fatalf("Expected search_product, got %s", intent)
	}
	if groups["product"] != "nike shoes" {
		t.Errorf("Expected product group 'nike shoes', got %q", groups["product"])
	}
	if groups["price_max"] != "100" {
		t.Errorf("Expected price_max group 100, got %q", groups["price_max"])
	}
	if groups["cur1"] != "$" {
		t.Errorf("Expected cur1 group $, got %q", groups["cur1"])
	}
}

func TestDetectIntentGreeting(t *testing.T) {
	intent, _ := detectIntent("hey there")
	if intent != IntentGreeting {
		t.Errorf("Expected greeting, got %s", intent)
	}
}

func TestDetectIntentUnknown(t *testing.T) {
	for _, in := range []string{"", "asdkjasd", "the weather is nice"} {
		intent, groups := detectIntent(in)
		if intent != IntentUnknown {
			t.Errorf("detectIntent(%q) = %s, want unknown", in, intent)
		}
		if groups != nil {
			t.Errorf("detectIntent(%q) returned groups %v for unknown", in, groups)
		}
	}
}
