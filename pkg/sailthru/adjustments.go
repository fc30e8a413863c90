package sailthru

import "sailhook/pkg/event"

// Adjustment is a named price adjustment in cents. Discounts carry a
// negative price.
type Adjustment struct {
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// Adjustments derives tax, shipping, and discount adjustments from an event,
// in that fixed order. Sources that are zero or missing are omitted rather
// than emitted as zero-valued entries.
func Adjustments(evt *event.Event, props map[string]interface{}) []Adjustment {
	adjustments := []Adjustment{}

	if tax := firstTruthy(evt.Tax(), lookup(props, "tax")); truthy(tax) {
		adjustments = append(adjustments, Adjustment{Title: "tax", Price: ToCents(tax)})
	}
	if shipping := firstTruthy(evt.Shipping(), lookup(props, "shipping")); truthy(shipping) {
		adjustments = append(adjustments, Adjustment{Title: "shipping", Price: ToCents(shipping)})
	}
	if discount := firstTruthy(evt.Discount(), lookup(props, "discount")); truthy(discount) {
		adjustments = append(adjustments, Adjustment{Title: "discount", Price: -ToCents(discount)})
	}
	return adjustments
}
