package sailthru

import "context"

// Sink is the vendor client surface. Implementations deliver payloads over
// the vendor's channel; the mapping layer treats calls as fire-and-forget
// and never retries.
type Sink interface {
	// Track sends a vendor track event. Payload may be nil.
	Track(ctx context.Context, event string, payload map[string]interface{}) error
	// Integration sends a vendor integration event.
	Integration(ctx context.Context, event string, payload map[string]interface{}) error
}
