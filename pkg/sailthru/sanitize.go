package sailthru

// Keys stripped from identify traits before they become user vars.
var traitExclusions = []string{
	"email",
	"defaultListName",
	"optout_email",
	"id",
	"userId",
	"anonymousId",
}

// Keys stripped from track/page properties: PII plus template, reminder, and
// identity fields that already travel in dedicated payload slots.
var propertyExclusions = []string{
	"email",
	"firstName",
	"lastName",
	"gender",
	"city",
	"country",
	"phone",
	"state",
	"zip",
	"birthday",
	"defaultListName",
	"reminderTime",
	"reminderTemplate",
	"sendTemplate",
	"template",
	"userId",
	"anonymousId",
}

// Keys stripped from a product before the remainder becomes item vars.
var productExclusions = []string{
	"url",
	"value",
	"quantity",
	"name",
	"price",
	"product_id",
	"id",
	"image_url",
	"image_url_thumb",
}

// SanitizeTraits copies traits, dropping identity and list-management keys.
func SanitizeTraits(traits map[string]interface{}) map[string]interface{} {
	return omitKeys(traits, traitExclusions)
}

// SanitizeProperties copies event properties, dropping personally identifying
// fields and fields forwarded through dedicated payload slots.
func SanitizeProperties(props map[string]interface{}) map[string]interface{} {
	return omitKeys(props, propertyExclusions)
}

func sanitizeProductVars(product map[string]interface{}) map[string]interface{} {
	return omitKeys(product, productExclusions)
}

func omitKeys(m map[string]interface{}, exclude []string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		if containsKey(exclude, key) {
			continue
		}
		out[key] = value
	}
	return out
}

func containsKey(keys []string, key string) bool {
	for _, candidate := range keys {
		if candidate == key {
			return true
		}
	}
	return false
}
