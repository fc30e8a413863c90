package sailthru

// Image is a single product image reference.
type Image struct {
	URL string `json:"url"`
}

// Images carries the full-size and thumbnail product images.
type Images struct {
	Full  Image `json:"full"`
	Thumb Image `json:"thumb"`
}

// Item is a product line in the vendor's cart/purchase format. Price is in
// integer cents.
type Item struct {
	Qty    int64                  `json:"qty"`
	Title  string                 `json:"title"`
	Price  int64                  `json:"price"`
	ID     string                 `json:"id"`
	URL    string                 `json:"url"`
	Images Images                 `json:"images"`
	Vars   map[string]interface{} `json:"vars"`
}

// MapItem converts a product-like property bag into an Item. The product URL
// falls back to contextURL+"/"+id, then baseURL+"/"+id. Custom product
// attributes survive under Vars.
func MapItem(product map[string]interface{}, contextURL, baseURL string) Item {
	id := pickString(
		lookup(product, "product_id"),
		lookup(product, "id"),
		lookup(product, "sku"),
	)

	qty := int64(1)
	if quantity := lookup(product, "quantity"); truthy(quantity) {
		qty = int64(numberValue(quantity))
	}

	url := pickString(lookup(product, "url"))
	if url == "" {
		if contextURL != "" {
			url = contextURL + "/" + id
		} else {
			url = baseURL + "/" + id
		}
	}

	return Item{
		Qty:   qty,
		Title: pickString(lookup(product, "name")),
		Price: ToCents(lookup(product, "price")),
		ID:    id,
		URL:   url,
		Images: Images{
			Full:  Image{URL: pickString(lookup(product, "image_url"))},
			Thumb: Image{URL: pickString(lookup(product, "image_url_thumb"))},
		},
		Vars: sanitizeProductVars(product),
	}
}

// MapItems converts a products array. A nil or missing array maps to an
// empty slice; entries that are not objects become default-valued items.
func MapItems(products []interface{}, contextURL, baseURL string) []Item {
	items := make([]Item, 0, len(products))
	for _, raw := range products {
		product, _ := raw.(map[string]interface{})
		items = append(items, MapItem(product, contextURL, baseURL))
	}
	return items
}
