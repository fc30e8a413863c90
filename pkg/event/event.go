package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the inbound analytics event type.
type Type string

const (
	TypeIdentify Type = "identify"
	TypePage     Type = "page"
	TypeTrack    Type = "track"
)

// Event is a generic analytics event (identify, page, or track). Property
// bags are free-form JSON objects; accessors below tolerate missing or
// malformed fields and fall back to zero values.
type Event struct {
	Type         Type                   `json:"type"`
	Name         string                 `json:"event"`
	MessageID    string                 `json:"messageId"`
	UserID       string                 `json:"userId"`
	AnonymousID  string                 `json:"anonymousId"`
	Properties   map[string]interface{} `json:"properties"`
	Traits       map[string]interface{} `json:"traits"`
	Context      map[string]interface{} `json:"context"`
	Integrations map[string]interface{} `json:"integrations"`

	// Raw is the decoded JSON object the event was parsed from, kept for
	// rule evaluation against the original structure.
	Raw map[string]interface{} `json:"-"`
}

// Decode parses a JSON-encoded analytics event.
func Decode(data []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if evt.Type == "" {
		return nil, fmt.Errorf("decode event: missing type")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err == nil {
		evt.Raw = raw
	}
	return &evt, nil
}

// Email returns the email attached to the event context, if any. Trait- and
// property-level emails take precedence over this value and are resolved by
// the mapper, not here.
func (e *Event) Email() string {
	traits, _ := child(e.Context, "traits").(map[string]interface{})
	email, _ := traits["email"].(string)
	return email
}

// PageURL returns the page URL from properties, falling back to the context
// page object.
func (e *Event) PageURL() string {
	if url, ok := e.Properties["url"].(string); ok && url != "" {
		return url
	}
	page, _ := child(e.Context, "page").(map[string]interface{})
	url, _ := page["url"].(string)
	return url
}

// ContextPageURL returns context.page.url only, ignoring properties.
func (e *Event) ContextPageURL() string {
	page, _ := child(e.Context, "page").(map[string]interface{})
	url, _ := page["url"].(string)
	return url
}

// Tax returns the numeric tax amount from properties, or 0.
func (e *Event) Tax() float64 { return e.number("tax") }

// Shipping returns the numeric shipping amount from properties, or 0.
func (e *Event) Shipping() float64 { return e.number("shipping") }

// Discount returns the numeric discount amount from properties, or 0.
func (e *Event) Discount() float64 { return e.number("discount") }

// IntegrationSettings returns the per-event settings block for the named
// destination, or nil when absent.
func (e *Event) IntegrationSettings(name string) map[string]interface{} {
	settings, _ := child(e.Integrations, name).(map[string]interface{})
	return settings
}

func (e *Event) number(key string) float64 {
	if e.Properties == nil {
		return 0
	}
	return Number(e.Properties[key])
}

// Number coerces a JSON value to a float64, returning 0 for anything that is
// not numeric. Numeric strings are parsed.
func Number(value interface{}) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case json.Number:
		parsed, _ := typed.Float64()
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func child(m map[string]interface{}, key string) interface{} {
	if m == nil {
		return nil
	}
	return m[key]
}
