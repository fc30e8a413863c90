package sailthru

import "sailhook/pkg/event"

// UserID resolves the stable identifier for an event. userId wins over
// anonymousId; property- and trait-level values win over the event envelope:
// props.userId, traits.userId, event userId, props.anonymousId,
// traits.anonymousId, event anonymousId.
func UserID(evt *event.Event, props map[string]interface{}) string {
	return pickString(
		lookup(props, "userId"),
		lookup(evt.Traits, "userId"),
		evt.UserID,
		lookup(props, "anonymousId"),
		lookup(evt.Traits, "anonymousId"),
		evt.AnonymousID,
	)
}

// Email resolves the user email: traits.email, then props.email, then the
// event context.
func Email(evt *event.Event, props, traits map[string]interface{}) string {
	return pickString(
		lookup(traits, "email"),
		lookup(props, "email"),
		evt.Email(),
	)
}

// AppendIdentity attaches user identification to a payload. An email wins
// exclusively; without one the id is sent under the external-id key scheme.
// With neither, the payload is left untouched.
func AppendIdentity(payload map[string]interface{}, email, id string) {
	if email != "" {
		payload["email"] = email
		return
	}
	if id == "" {
		return
	}
	payload["id"] = id
	payload["key"] = "extid"
}
