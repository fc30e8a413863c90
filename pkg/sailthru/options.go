package sailthru

// IntegrationName keys the per-event settings block recognized by this
// destination.
const IntegrationName = "Sailthru"

// DefaultEndpoint is the vendor API base used when none is configured.
const DefaultEndpoint = "https://api.sail-horizon.com/v1"

// Options is the destination configuration. Every field can be overridden
// per event: properties win over the event's integration-settings block,
// which wins over these globals.
type Options struct {
	CustomerID       string `yaml:"customer_id"`
	APIKey           string `yaml:"api_key"`
	Secret           string `yaml:"secret"`
	Endpoint         string `yaml:"endpoint"`
	ProductBaseURL   string `yaml:"product_base_url"`
	OptoutValue      string `yaml:"optout_value"`
	DefaultListName  string `yaml:"default_list_name"`
	SendTemplate     string `yaml:"send_template"`
	ReminderTemplate string `yaml:"reminder_template"`
	ReminderTime     string `yaml:"reminder_time"`
}

// optoutValue resolves the opt-out level applied on sign up. Integration
// settings override the global option; the vendor default is "none".
func (o Options) optoutValue(settings map[string]interface{}) string {
	if value := pickString(lookup(settings, "optoutValue"), o.OptoutValue); value != "" {
		return value
	}
	return "none"
}

// listName resolves the subscriber list for sign ups.
func (o Options) listName(props, traits, settings map[string]interface{}) string {
	return pickString(
		lookup(props, "defaultListName"),
		lookup(traits, "defaultListName"),
		lookup(settings, "defaultListName"),
		o.DefaultListName,
	)
}

// reminderTemplate resolves the abandoned-cart reminder template.
func (o Options) reminderTemplate(props, settings map[string]interface{}) string {
	return pickString(
		lookup(props, "reminderTemplate"),
		lookup(settings, "reminderTemplate"),
		o.ReminderTemplate,
	)
}

// reminderTime resolves the abandoned-cart reminder delay. The value is
// passed through to the vendor unchanged.
func (o Options) reminderTime(props, settings map[string]interface{}) string {
	return pickString(
		lookup(props, "reminderTime"),
		lookup(settings, "reminderTime"),
		o.ReminderTime,
	)
}

// sendTemplate resolves the purchase-confirmation template.
func (o Options) sendTemplate(props, settings map[string]interface{}) string {
	return pickString(
		lookup(props, "sendTemplate"),
		lookup(settings, "sendTemplate"),
		o.SendTemplate,
	)
}

// optInTemplate resolves the double-opt-in confirmation template. There is
// no global option for it.
func (o Options) optInTemplate(props, settings map[string]interface{}) string {
	return pickString(
		lookup(props, "template"),
		lookup(settings, "template"),
	)
}
