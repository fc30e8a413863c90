package sailthru

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sailhook/pkg/event"
)

// Sink call kinds recorded on deliveries.
const (
	CallTrack       = "track"
	CallIntegration = "integration"
)

// Delivery describes the single sink call made for an inbound event.
type Delivery struct {
	Call    string
	Event   string
	Payload map[string]interface{}
}

// Adapter routes inbound analytics events to the vendor sink, one sink call
// per event. It holds no state between calls.
type Adapter struct {
	options Options
	sink    Sink
	logger  *log.Logger
}

// New creates an Adapter delivering through sink.
func New(options Options, sink Sink, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{options: options, sink: sink, logger: logger}
}

// Dispatch routes an event by type. The returned Delivery reports what was
// sent even when the sink call itself failed.
func (a *Adapter) Dispatch(ctx context.Context, evt *event.Event) (*Delivery, error) {
	switch evt.Type {
	case event.TypeIdentify:
		return a.Identify(ctx, evt)
	case event.TypePage:
		return a.Page(ctx, evt)
	case event.TypeTrack:
		return a.Track(ctx, evt)
	default:
		return nil, fmt.Errorf("unsupported event type: %q", evt.Type)
	}
}

// Identify maps an identify event to the vendor's userSignUp call, which
// creates or updates the user profile.
func (a *Adapter) Identify(ctx context.Context, evt *event.Event) (*Delivery, error) {
	traits := evt.Traits
	id := UserID(evt, nil)
	email := Email(evt, nil, traits)
	settings := evt.IntegrationSettings(IntegrationName)

	payload := map[string]interface{}{
		"keys": map[string]interface{}{
			"email": email,
			"extid": id,
		},
		"optout_email": a.options.optoutValue(settings),
		"keysconflict": "merge",
		"vars":         SanitizeTraits(traits),
	}
	if listName := a.options.listName(nil, traits, settings); listName != "" {
		payload["lists"] = map[string]interface{}{listName: 1}
	}
	AppendIdentity(payload, email, id)

	return a.integration(ctx, "userSignUp", payload)
}

// Page maps a page event to the vendor's pageview call.
func (a *Adapter) Page(ctx context.Context, evt *event.Event) (*Delivery, error) {
	payload := map[string]interface{}{
		"url": evt.PageURL(),
	}
	if tags := lookup(evt.Properties, "tags"); truthy(tags) {
		payload["tags"] = tags
	}
	return a.track(ctx, "pageview", payload)
}

// Track routes a track event by name. Commerce and consent events get
// dedicated mappings; everything else becomes a custom event.
func (a *Adapter) Track(ctx context.Context, evt *event.Event) (*Delivery, error) {
	switch canonicalName(evt.Name) {
	case "productadded":
		return a.addOrRemoveProduct(ctx, evt, MergeAdd)
	case "productremoved":
		return a.addOrRemoveProduct(ctx, evt, MergeRemove)
	case "orderupdated":
		return a.orderUpdated(ctx, evt)
	case "ordercompleted":
		return a.orderCompleted(ctx, evt)
	case "usersignupconfirmedoptin":
		return a.signUpConfirmed(ctx, evt)
	case "gdprdonottrack":
		return a.track(ctx, "gdprDoNotTrack", nil)
	case "cookiesdonottrack":
		return a.track(ctx, "cookiesDoNotTrack", nil)
	default:
		return a.customEvent(ctx, evt)
	}
}

func (a *Adapter) signUpConfirmed(ctx context.Context, evt *event.Event) (*Delivery, error) {
	props := evt.Properties
	traits := evt.Traits
	settings := evt.IntegrationSettings(IntegrationName)

	payload := map[string]interface{}{
		"template": map[string]interface{}{
			"name": a.options.optInTemplate(props, settings),
		},
		"vars": traits,
	}
	AppendIdentity(payload, Email(evt, props, traits), UserID(evt, props))

	return a.integration(ctx, "userSignUpConfirmedOptIn", payload)
}

func (a *Adapter) addOrRemoveProduct(ctx context.Context, evt *event.Event, mode MergeMode) (*Delivery, error) {
	props := copyMap(evt.Properties)
	traits := evt.Traits
	id := UserID(evt, props)
	email := Email(evt, props, traits)
	settings := evt.IntegrationSettings(IntegrationName)

	cart := NewCart()
	if items, ok := lookup(props, "items").([]interface{}); ok {
		for _, raw := range items {
			if line, ok := raw.(map[string]interface{}); ok {
				cart.Items = append(cart.Items, ItemFromMap(line))
			}
		}
		delete(props, "items")
	}

	product := SanitizeProperties(props)
	item := MapItem(product, evt.ContextPageURL(), a.options.ProductBaseURL)
	cart.MergeItem(item, mode)

	payload := cart.Payload()
	AppendIdentity(payload, email, id)
	a.appendReminder(payload, props, settings)

	return a.integration(ctx, "addToCart", payload)
}

func (a *Adapter) orderUpdated(ctx context.Context, evt *event.Event) (*Delivery, error) {
	props := copyMap(evt.Properties)
	traits := evt.Traits
	id := UserID(evt, props)
	email := Email(evt, props, traits)
	settings := evt.IntegrationSettings(IntegrationName)

	products, _ := lookup(props, "products").([]interface{})
	payload := map[string]interface{}{
		"items":       MapItems(products, evt.ContextPageURL(), a.options.ProductBaseURL),
		"adjustments": Adjustments(evt, props),
		"incomplete":  1,
	}

	delete(props, "products")
	payload["vars"] = Flatten(SanitizeProperties(props))
	AppendIdentity(payload, email, id)
	a.appendReminder(payload, props, settings)

	return a.integration(ctx, "addToCart", payload)
}

func (a *Adapter) orderCompleted(ctx context.Context, evt *event.Event) (*Delivery, error) {
	props := copyMap(evt.Properties)
	traits := evt.Traits
	id := UserID(evt, props)
	email := Email(evt, props, traits)
	settings := evt.IntegrationSettings(IntegrationName)

	products, _ := lookup(props, "products").([]interface{})
	payload := map[string]interface{}{
		"items":       MapItems(products, evt.ContextPageURL(), a.options.ProductBaseURL),
		"adjustments": Adjustments(evt, props),
	}

	delete(props, "products")
	payload["vars"] = Flatten(SanitizeProperties(props))
	AppendIdentity(payload, email, id)
	if sendTemplate := a.options.sendTemplate(props, settings); sendTemplate != "" {
		payload["send_template"] = sendTemplate
	}

	return a.integration(ctx, "purchase", payload)
}

func (a *Adapter) customEvent(ctx context.Context, evt *event.Event) (*Delivery, error) {
	props := evt.Properties
	traits := evt.Traits

	payload := map[string]interface{}{
		"name": evt.Name,
		"vars": Flatten(SanitizeProperties(props)),
	}
	AppendIdentity(payload, Email(evt, props, traits), UserID(evt, props))

	return a.integration(ctx, "customEvent", payload)
}

// appendReminder attaches abandoned-cart reminder fields; both the template
// and the time must resolve or neither is sent.
func (a *Adapter) appendReminder(payload, props, settings map[string]interface{}) {
	template := a.options.reminderTemplate(props, settings)
	timeValue := a.options.reminderTime(props, settings)
	if template == "" || timeValue == "" {
		return
	}
	payload["reminder_template"] = template
	payload["reminder_time"] = timeValue
}

func (a *Adapter) track(ctx context.Context, name string, payload map[string]interface{}) (*Delivery, error) {
	err := a.sink.Track(ctx, name, payload)
	if err != nil {
		a.logger.Printf("track %s failed: %v", name, err)
	}
	return &Delivery{Call: CallTrack, Event: name, Payload: payload}, err
}

func (a *Adapter) integration(ctx context.Context, name string, payload map[string]interface{}) (*Delivery, error) {
	err := a.sink.Integration(ctx, name, payload)
	if err != nil {
		a.logger.Printf("integration %s failed: %v", name, err)
	}
	return &Delivery{Call: CallIntegration, Event: name, Payload: payload}, err
}

// canonicalName normalizes track event names so "Product Added" and
// "productAdded" route identically.
func canonicalName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}
