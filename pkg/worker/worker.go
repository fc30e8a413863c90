package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"sailhook/pkg/core"
	"sailhook/pkg/sailthru"
	"sailhook/pkg/storage"
)

// Worker subscribes to analytics event topics, runs each message through the
// rules, and dispatches allowed events to the destination. Messages are
// always acked; failed deliveries are recorded, not retried.
type Worker struct {
	subscriber  message.Subscriber
	codec       Codec
	topics      []string
	engine      *core.RuleEngine
	adapter     *sailthru.Adapter
	store       storage.DeliveryStore
	logger      *log.Logger
	concurrency int
}

// Option is a function that configures a Worker.
type Option func(*Worker)

// WithSubscriber sets the watermill subscriber for the worker.
func WithSubscriber(sub message.Subscriber) Option {
	return func(w *Worker) {
		w.subscriber = sub
	}
}

// WithTopics adds topics for the worker to subscribe to.
func WithTopics(topics ...string) Option {
	return func(w *Worker) {
		for _, topic := range topics {
			if topic != "" {
				w.topics = append(w.topics, topic)
			}
		}
	}
}

// WithCodec sets the codec for decoding messages.
func WithCodec(c Codec) Option {
	return func(w *Worker) {
		if c != nil {
			w.codec = c
		}
	}
}

// WithRuleEngine sets the rule engine filtering events.
func WithRuleEngine(engine *core.RuleEngine) Option {
	return func(w *Worker) {
		w.engine = engine
	}
}

// WithStore sets the delivery log.
func WithStore(store storage.DeliveryStore) Option {
	return func(w *Worker) {
		w.store = store
	}
}

// WithLogger sets the logger for the worker.
func WithLogger(l *log.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithConcurrency sets the number of concurrent message processors.
func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// New creates a new Worker dispatching through the adapter.
func New(adapter *sailthru.Adapter, opts ...Option) *Worker {
	w := &Worker{
		adapter:     adapter,
		codec:       DefaultCodec{},
		logger:      core.NewLogger("worker"),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewFromConfig builds the subscriber from config and creates a Worker.
func NewFromConfig(cfg core.WatermillConfig, adapter *sailthru.Adapter, opts ...Option) (*Worker, error) {
	sub, err := BuildSubscriber(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithSubscriber(sub), WithTopics(cfg.Topic))
	return New(adapter, opts...), nil
}

// Run starts the worker, subscribing to topics and processing messages.
// It blocks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if w.adapter == nil {
		return errors.New("adapter is required")
	}
	if w.subscriber == nil {
		return errors.New("subscriber is required")
	}
	if len(w.topics) == 0 {
		return errors.New("at least one topic is required")
	}

	sem := make(chan struct{}, w.concurrency)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, topic := range unique(w.topics) {
		msgs, err := w.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(topic string, ch <-chan *message.Message) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					sem <- struct{}{}
					wg.Add(1)
					go func(msg *message.Message) {
						defer wg.Done()
						defer func() { <-sem }()
						w.handleMessage(ctx, topic, msg)
					}(msg)
				}
			}
		}(topic, msgs)
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (w *Worker) handleMessage(ctx context.Context, topic string, msg *message.Message) {
	defer msg.Ack()

	evt, err := w.codec.Decode(topic, msg)
	if err != nil {
		w.logger.Printf("decode failed topic=%s uuid=%s: %v", topic, msg.UUID, err)
		w.record(ctx, storage.DeliveryRecord{
			MessageID:    msg.UUID,
			Status:       storage.StatusFailed,
			ErrorMessage: err.Error(),
		})
		return
	}

	record := storage.DeliveryRecord{
		MessageID: evt.MessageID,
		EventType: string(evt.Type),
		EventName: evt.Name,
	}

	if w.engine != nil {
		allowed, matched := w.engine.Allow(core.RuleEventFrom(evt))
		if matched != nil {
			record.RuleID = matched.ID
		}
		if !allowed {
			record.Status = storage.StatusDropped
			w.record(ctx, record)
			return
		}
	}

	delivery, err := w.adapter.Dispatch(ctx, evt)
	if delivery != nil {
		record.Call = delivery.Call
		record.VendorEvent = delivery.Event
		record.PayloadJSON = payloadJSON(delivery.Payload)
	}
	switch {
	case err != nil && delivery == nil:
		record.Status = storage.StatusSkipped
		record.ErrorMessage = err.Error()
	case err != nil:
		record.Status = storage.StatusFailed
		record.ErrorMessage = err.Error()
	default:
		record.Status = storage.StatusDelivered
	}
	w.record(ctx, record)
}

func (w *Worker) record(ctx context.Context, record storage.DeliveryRecord) {
	if w.store == nil {
		return
	}
	if err := w.store.Save(ctx, record); err != nil {
		w.logger.Printf("delivery log save failed: %v", err)
	}
}

func payloadJSON(payload map[string]interface{}) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
