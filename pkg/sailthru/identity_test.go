package sailthru

import (
	"testing"

	"sailhook/pkg/event"
)

func TestUserIDPrecedence(t *testing.T) {
	evt := &event.Event{
		UserID:      "event-user",
		AnonymousID: "event-anon",
		Traits:      map[string]interface{}{"userId": "trait-user"},
	}
	props := map[string]interface{}{"userId": "prop-user"}

	if got := UserID(evt, props); got != "prop-user" {
		t.Fatalf("props userId should win, got %q", got)
	}
	if got := UserID(evt, nil); got != "trait-user" {
		t.Fatalf("traits userId should win, got %q", got)
	}

	evt.Traits = nil
	if got := UserID(evt, nil); got != "event-user" {
		t.Fatalf("event userId should win, got %q", got)
	}

	evt.UserID = ""
	if got := UserID(evt, nil); got != "event-anon" {
		t.Fatalf("anonymousId fallback, got %q", got)
	}

	props = map[string]interface{}{"anonymousId": "prop-anon"}
	if got := UserID(evt, props); got != "prop-anon" {
		t.Fatalf("props anonymousId should win over event, got %q", got)
	}
}

func TestUserIDEmptyValuesSkipped(t *testing.T) {
	evt := &event.Event{AnonymousID: "anon"}
	props := map[string]interface{}{"userId": "", "anonymousId": 0}
	if got := UserID(evt, props); got != "anon" {
		t.Fatalf("empty values must not short-circuit, got %q", got)
	}
}

func TestUserIDNumericIdentifier(t *testing.T) {
	evt := &event.Event{}
	props := map[string]interface{}{"userId": 1234.0}
	if got := UserID(evt, props); got != "1234" {
		t.Fatalf("numeric id should stringify, got %q", got)
	}
}

func TestEmailPrecedence(t *testing.T) {
	evt := &event.Event{
		Context: map[string]interface{}{
			"traits": map[string]interface{}{"email": "ctx@example.com"},
		},
	}
	props := map[string]interface{}{"email": "props@example.com"}
	traits := map[string]interface{}{"email": "traits@example.com"}

	if got := Email(evt, props, traits); got != "traits@example.com" {
		t.Fatalf("traits email should win, got %q", got)
	}
	if got := Email(evt, props, nil); got != "props@example.com" {
		t.Fatalf("props email should win, got %q", got)
	}
	if got := Email(evt, nil, nil); got != "ctx@example.com" {
		t.Fatalf("context email fallback, got %q", got)
	}
}

func TestAppendIdentityExclusivity(t *testing.T) {
	payload := map[string]interface{}{}
	AppendIdentity(payload, "a@b.com", "id1")
	if payload["email"] != "a@b.com" {
		t.Fatalf("expected email, got %v", payload)
	}
	if _, ok := payload["id"]; ok {
		t.Fatal("id must not be set alongside email")
	}
	if _, ok := payload["key"]; ok {
		t.Fatal("key must not be set alongside email")
	}

	payload = map[string]interface{}{}
	AppendIdentity(payload, "", "id1")
	if payload["id"] != "id1" || payload["key"] != "extid" {
		t.Fatalf("expected extid identity, got %v", payload)
	}
	if _, ok := payload["email"]; ok {
		t.Fatal("email must not be set without one")
	}
}

func TestAppendIdentityNoIdentity(t *testing.T) {
	payload := map[string]interface{}{}
	AppendIdentity(payload, "", "")
	if len(payload) != 0 {
		t.Fatalf("payload should be untouched, got %v", payload)
	}
}
