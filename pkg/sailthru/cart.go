package sailthru

// MergeMode selects cart merge semantics.
type MergeMode string

const (
	MergeAdd    MergeMode = "add"
	MergeRemove MergeMode = "remove"
)

// Cart is an in-progress purchase aggregate. Items are unique by ID. The
// cart is owned by the caller for the duration of one add/remove dispatch;
// nothing here persists it.
type Cart struct {
	Items      []Item `json:"items"`
	Incomplete int    `json:"incomplete"`
}

// NewCart returns an empty cart flagged as incomplete.
func NewCart() *Cart {
	return &Cart{Items: []Item{}, Incomplete: 1}
}

// MergeItem merges an item into the cart and returns the same cart.
// Quantities of matching lines are summed (add) or subtracted (remove), item
// vars are shallow-overlaid with incoming keys winning, and lines left at
// zero or negative quantity are pruned. Removing an item that is not in the
// cart is a no-op.
func (c *Cart) MergeItem(item Item, mode MergeMode) *Cart {
	for i := range c.Items {
		if c.Items[i].ID != item.ID {
			continue
		}
		existing := &c.Items[i]
		if mode == MergeRemove {
			existing.Qty -= item.Qty
		} else {
			existing.Qty += item.Qty
		}
		existing.Vars = overlayVars(existing.Vars, item.Vars)
		c.prune()
		return c
	}
	if mode != MergeRemove {
		c.Items = append(c.Items, item)
	}
	return c
}

// Payload renders the cart as a vendor payload map.
func (c *Cart) Payload() map[string]interface{} {
	return map[string]interface{}{
		"items":      c.Items,
		"incomplete": c.Incomplete,
	}
}

func (c *Cart) prune() {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.Qty > 0 {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

func overlayVars(base, overlay map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}

// ItemFromMap decodes an already vendor-shaped item (for example a
// pre-populated cart line arriving in properties.items). Prices are assumed
// to already be in cents. Decoding is best effort.
func ItemFromMap(m map[string]interface{}) Item {
	qty := int64(numberValue(firstTruthy(lookup(m, "qty"), lookup(m, "quantity"))))
	item := Item{
		Qty:   qty,
		Title: pickString(lookup(m, "title")),
		Price: int64(numberValue(lookup(m, "price"))),
		ID:    pickString(lookup(m, "id")),
		URL:   pickString(lookup(m, "url")),
	}
	if images, ok := lookup(m, "images").(map[string]interface{}); ok {
		if full, ok := images["full"].(map[string]interface{}); ok {
			item.Images.Full.URL = pickString(full["url"])
		}
		if thumb, ok := images["thumb"].(map[string]interface{}); ok {
			item.Images.Thumb.URL = pickString(thumb["url"])
		}
	}
	if vars, ok := lookup(m, "vars").(map[string]interface{}); ok {
		item.Vars = vars
	}
	return item
}
