package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sailhook/pkg/core"
	"sailhook/pkg/sailthru"
	"sailhook/pkg/storage"
)

type stubSink struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubSink) Track(_ context.Context, event string, _ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "track:"+event)
	return s.err
}

func (s *stubSink) Integration(_ context.Context, event string, _ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "integration:"+event)
	return s.err
}

type memoryStore struct {
	mu      sync.Mutex
	records []storage.DeliveryRecord
}

func (m *memoryStore) Save(_ context.Context, record storage.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *memoryStore) List(_ context.Context, _ storage.DeliveryFilter) ([]storage.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.DeliveryRecord(nil), m.records...), nil
}

func (m *memoryStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	return nil, nil
}

func (m *memoryStore) Close() error { return nil }

func newTestHandler(t *testing.T, rules []core.Rule, strict bool) (*Handler, *stubSink, *memoryStore) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	sink := &stubSink{}
	store := &memoryStore{}

	var engine *core.RuleEngine
	if len(rules) > 0 || strict {
		normalized, err := core.NormalizeRules(rules)
		if err != nil {
			t.Fatalf("normalize rules: %v", err)
		}
		engine, err = core.NewRuleEngine(core.RulesConfig{Rules: normalized, Strict: strict, Logger: logger})
		if err != nil {
			t.Fatalf("rule engine: %v", err)
		}
	}

	adapter := sailthru.New(sailthru.Options{}, sink, logger)
	return NewHandler(engine, adapter, store, logger, 1<<20, false), sink, store
}

func post(t *testing.T, handler http.Handler, body string, headers map[string]string) (*httptest.ResponseRecorder, Summary) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var summary Summary
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
			t.Fatalf("decode summary: %v", err)
		}
	}
	return rec, summary
}

func TestHandlerSingleEvent(t *testing.T) {
	handler, sink, store := newTestHandler(t, nil, false)

	rec, summary := post(t, handler, `{"type":"page","properties":{"url":"https://x"}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if summary.Accepted != 1 || summary.Delivered != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id header must be set")
	}
	if len(sink.calls) != 1 || sink.calls[0] != "track:pageview" {
		t.Fatalf("unexpected sink calls: %v", sink.calls)
	}

	records, _ := store.List(context.Background(), storage.DeliveryFilter{})
	if len(records) != 1 || records[0].Status != storage.StatusDelivered || records[0].VendorEvent != "pageview" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestHandlerBatch(t *testing.T) {
	handler, sink, _ := newTestHandler(t, nil, false)

	body := `{"batch":[
		{"type":"page","properties":{"url":"https://a"}},
		{"type":"identify","userId":"u1"},
		{"type":"screen"}
	]}`
	rec, summary := post(t, handler, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if summary.Accepted != 3 || summary.Delivered != 2 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sink.calls) != 2 {
		t.Fatalf("unexpected sink calls: %v", sink.calls)
	}
}

func TestHandlerRejectsMalformedBody(t *testing.T) {
	handler, _, _ := newTestHandler(t, nil, false)
	rec, _ := post(t, handler, "not json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec, _ = post(t, handler, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", rec.Code)
	}
}

func TestHandlerRejectsNonPost(t *testing.T) {
	handler, _, _ := newTestHandler(t, nil, false)
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHandlerAppliesRules(t *testing.T) {
	handler, sink, store := newTestHandler(t, []core.Rule{
		{ID: "drop-pages", When: `type == "page"`, Action: core.ActionDrop},
	}, false)

	_, summary := post(t, handler, `{"type":"page","properties":{"url":"https://x"}}`, nil)
	if summary.Dropped != 1 || summary.Delivered != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sink.calls) != 0 {
		t.Fatalf("dropped event must not reach the sink: %v", sink.calls)
	}

	records, _ := store.List(context.Background(), storage.DeliveryFilter{})
	if len(records) != 1 || records[0].Status != storage.StatusDropped || records[0].RuleID != "drop-pages" {
		t.Fatalf("unexpected records: %+v", records)
	}

	_, summary = post(t, handler, `{"type":"track","event":"orderCompleted","properties":{}}`, nil)
	if summary.Delivered != 1 {
		t.Fatalf("non-matching event must be delivered: %+v", summary)
	}
}

func TestHandlerEchoesRequestID(t *testing.T) {
	handler, _, store := newTestHandler(t, nil, false)
	rec, _ := post(t, handler, `{"type":"identify","userId":"u1"}`, map[string]string{"X-Request-Id": "req-42"})
	if rec.Header().Get("X-Request-Id") != "req-42" {
		t.Fatalf("expected request id echo, got %q", rec.Header().Get("X-Request-Id"))
	}
	records, _ := store.List(context.Background(), storage.DeliveryFilter{})
	if len(records) != 1 || records[0].RequestID != "req-42" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
