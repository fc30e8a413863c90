package sailthru

import "testing"

func TestSanitizePropertiesRemovesListedKeys(t *testing.T) {
	props := map[string]interface{}{
		"email": "x",
		"city":  "y",
		"foo":   "bar",
	}
	out := SanitizeProperties(props)
	if len(out) != 1 || out["foo"] != "bar" {
		t.Fatalf("expected only foo to survive, got %v", out)
	}
	if props["email"] != "x" {
		t.Fatal("input must not be mutated")
	}
}

func TestSanitizePropertiesStripsTemplateFields(t *testing.T) {
	out := SanitizeProperties(map[string]interface{}{
		"reminderTemplate": "abandoned",
		"reminderTime":     "+60 minutes",
		"sendTemplate":     "receipt",
		"template":         "optin",
		"userId":           "u1",
		"anonymousId":      "a1",
		"sku":              "SKU-1",
	})
	if len(out) != 1 || out["sku"] != "SKU-1" {
		t.Fatalf("template and identity fields should be stripped, got %v", out)
	}
}

func TestSanitizeTraits(t *testing.T) {
	out := SanitizeTraits(map[string]interface{}{
		"email":           "x@y.com",
		"defaultListName": "list",
		"optout_email":    "all",
		"id":              "1",
		"userId":          "u",
		"anonymousId":     "a",
		"source":          "home",
	})
	if len(out) != 1 || out["source"] != "home" {
		t.Fatalf("expected only source to survive, got %v", out)
	}
}

func TestSanitizeProductVars(t *testing.T) {
	out := sanitizeProductVars(map[string]interface{}{
		"url":             "https://x",
		"value":           10,
		"quantity":        2,
		"name":            "Widget",
		"price":           18.99,
		"product_id":      "P1",
		"id":              "P1",
		"image_url":       "https://img",
		"image_url_thumb": "https://thumb",
		"color":           "blue",
		"sku":             "SKU-1",
	})
	if len(out) != 2 || out["color"] != "blue" || out["sku"] != "SKU-1" {
		t.Fatalf("expected custom attributes only, got %v", out)
	}
}

func TestSanitizeNilInput(t *testing.T) {
	if out := SanitizeProperties(nil); out == nil || len(out) != 0 {
		t.Fatalf("nil props should sanitize to empty map, got %v", out)
	}
}
