package sailthru

import "testing"

func TestOptoutValuePrecedence(t *testing.T) {
	opts := Options{OptoutValue: "basic"}

	settings := map[string]interface{}{"optoutValue": "all"}
	if got := opts.optoutValue(settings); got != "all" {
		t.Fatalf("settings should win, got %q", got)
	}
	if got := opts.optoutValue(nil); got != "basic" {
		t.Fatalf("options fallback, got %q", got)
	}
	if got := (Options{}).optoutValue(nil); got != "none" {
		t.Fatalf("vendor default, got %q", got)
	}
}

func TestListNamePrecedence(t *testing.T) {
	opts := Options{DefaultListName: "global-list"}
	props := map[string]interface{}{"defaultListName": "prop-list"}
	traits := map[string]interface{}{"defaultListName": "trait-list"}
	settings := map[string]interface{}{"defaultListName": "settings-list"}

	if got := opts.listName(props, traits, settings); got != "prop-list" {
		t.Fatalf("props should win, got %q", got)
	}
	if got := opts.listName(nil, traits, settings); got != "trait-list" {
		t.Fatalf("traits next, got %q", got)
	}
	if got := opts.listName(nil, nil, settings); got != "settings-list" {
		t.Fatalf("settings next, got %q", got)
	}
	if got := opts.listName(nil, nil, nil); got != "global-list" {
		t.Fatalf("options last, got %q", got)
	}
}

func TestTemplateResolution(t *testing.T) {
	opts := Options{
		SendTemplate:     "global-send",
		ReminderTemplate: "global-reminder",
		ReminderTime:     "+20 minutes",
	}
	props := map[string]interface{}{"sendTemplate": "prop-send"}
	settings := map[string]interface{}{"reminderTemplate": "settings-reminder"}

	if got := opts.sendTemplate(props, settings); got != "prop-send" {
		t.Fatalf("props send template should win, got %q", got)
	}
	if got := opts.reminderTemplate(nil, settings); got != "settings-reminder" {
		t.Fatalf("settings reminder should win, got %q", got)
	}
	if got := opts.reminderTime(nil, nil); got != "+20 minutes" {
		t.Fatalf("reminder time passthrough, got %q", got)
	}
	if got := opts.optInTemplate(map[string]interface{}{"template": "optin"}, nil); got != "optin" {
		t.Fatalf("opt-in template from props, got %q", got)
	}
	if got := opts.optInTemplate(nil, nil); got != "" {
		t.Fatalf("opt-in template has no global fallback, got %q", got)
	}
}
