package worker

import (
	"github.com/ThreeDotsLabs/watermill/message"

	"sailhook/pkg/event"
)

// Codec decodes a queue message into an analytics event.
type Codec interface {
	Decode(topic string, msg *message.Message) (*event.Event, error)
}

// DefaultCodec decodes JSON message payloads. The message UUID fills in a
// missing messageId.
type DefaultCodec struct{}

func (DefaultCodec) Decode(topic string, msg *message.Message) (*event.Event, error) {
	evt, err := event.Decode(msg.Payload)
	if err != nil {
		return nil, err
	}
	if evt.MessageID == "" {
		evt.MessageID = msg.UUID
	}
	return evt, nil
}
