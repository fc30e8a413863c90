package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"sailhook/pkg/core"
	"sailhook/pkg/event"
	"sailhook/pkg/sailthru"
	"sailhook/pkg/storage"
)

// Handler ingests analytics events over HTTP. A request body is either a
// single event or a {"batch":[...]} envelope.
type Handler struct {
	rules       *core.RuleEngine
	adapter     *sailthru.Adapter
	store       storage.DeliveryStore
	logger      *log.Logger
	maxBody     int64
	debugEvents bool
}

// Summary reports per-status counts for one ingest request.
type Summary struct {
	Accepted  int `json:"accepted"`
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// NewHandler creates an ingest handler dispatching through the adapter.
func NewHandler(rules *core.RuleEngine, adapter *sailthru.Adapter, store storage.DeliveryStore, logger *log.Logger, maxBody int64, debugEvents bool) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		rules:       rules,
		adapter:     adapter,
		store:       store,
		logger:      logger,
		maxBody:     maxBody,
		debugEvents: debugEvents,
	}
}

// ServeHTTP handles an incoming HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	reqID := requestID(r)
	w.Header().Set("X-Request-Id", reqID)
	logger := core.WithRequestID(h.logger, reqID)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if len(body) == 0 || !gjson.ValidBytes(body) {
		logger.Printf("rejected invalid body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if h.debugEvents {
		logger.Printf("inbound body: %s", body)
	}

	var summary Summary
	if batch := gjson.GetBytes(body, "batch"); batch.IsArray() {
		for _, item := range batch.Array() {
			h.process(r.Context(), logger, reqID, []byte(item.Raw), &summary)
		}
	} else {
		h.process(r.Context(), logger, reqID, body, &summary)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.Printf("write response failed: %v", err)
	}
}

func (h *Handler) process(ctx context.Context, logger *log.Logger, reqID string, body []byte, summary *Summary) {
	summary.Accepted++

	evt, err := event.Decode(body)
	if err != nil {
		logger.Printf("decode failed: %v", err)
		summary.Failed++
		h.record(ctx, storage.DeliveryRecord{
			RequestID:    reqID,
			Status:       storage.StatusFailed,
			ErrorMessage: err.Error(),
		})
		return
	}

	record := storage.DeliveryRecord{
		MessageID: evt.MessageID,
		RequestID: reqID,
		EventType: string(evt.Type),
		EventName: evt.Name,
	}

	if h.rules != nil {
		allowed, matched := h.rules.AllowWithLogger(core.RuleEventFrom(evt), logger)
		if matched != nil {
			record.RuleID = matched.ID
		}
		if !allowed {
			summary.Dropped++
			record.Status = storage.StatusDropped
			h.record(ctx, record)
			return
		}
	}

	delivery, err := h.adapter.Dispatch(ctx, evt)
	if delivery != nil {
		record.Call = delivery.Call
		record.VendorEvent = delivery.Event
		record.PayloadJSON = payloadJSON(delivery.Payload)
	}
	switch {
	case err != nil && delivery == nil:
		summary.Skipped++
		record.Status = storage.StatusSkipped
		record.ErrorMessage = err.Error()
	case err != nil:
		summary.Failed++
		record.Status = storage.StatusFailed
		record.ErrorMessage = err.Error()
	default:
		summary.Delivered++
		record.Status = storage.StatusDelivered
	}
	h.record(ctx, record)
}

func (h *Handler) record(ctx context.Context, record storage.DeliveryRecord) {
	if h.store == nil {
		return
	}
	if err := h.store.Save(ctx, record); err != nil {
		h.logger.Printf("delivery log save failed: %v", err)
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

func requestID(r *http.Request) string {
	if r == nil {
		return uuid.NewString()
	}
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Correlation-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}
