package sailthru

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientRequiresCustomerID(t *testing.T) {
	if _, err := NewClient(Options{}, nil); err == nil {
		t.Fatal("expected error without customer id")
	}
}

func TestNewClientDefaultsEndpoint(t *testing.T) {
	client, err := NewClient(Options{CustomerID: "c1"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.endpoint != DefaultEndpoint {
		t.Fatalf("expected default endpoint, got %q", client.endpoint)
	}

	client, err = NewClient(Options{CustomerID: "c1", Endpoint: "https://api.example.com/v1/"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.endpoint != "https://api.example.com/v1" {
		t.Fatalf("trailing slash should be trimmed, got %q", client.endpoint)
	}
}

func TestClientPostsTrackAndIntegration(t *testing.T) {
	type received struct {
		path string
		body map[string]interface{}
	}
	var got []received

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		got = append(got, received{path: r.URL.Path, body: body})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Options{
		CustomerID: "c1",
		APIKey:     "k1",
		Endpoint:   srv.URL,
	}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()
	if err := client.Track(ctx, "pageview", map[string]interface{}{"url": "https://x"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := client.Integration(ctx, "userSignUp", nil); err != nil {
		t.Fatalf("integration: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected two requests, got %d", len(got))
	}
	if got[0].path != "/track" || got[1].path != "/integration" {
		t.Fatalf("unexpected paths: %q %q", got[0].path, got[1].path)
	}
	if got[0].body["event"] != "pageview" || got[0].body["customer_id"] != "c1" || got[0].body["key"] != "k1" {
		t.Fatalf("unexpected track body: %v", got[0].body)
	}
	payload, _ := got[0].body["payload"].(map[string]interface{})
	if payload["url"] != "https://x" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := got[1].body["payload"]; ok {
		t.Fatal("nil payload must be omitted from the body")
	}
}

func TestClientReportsVendorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Options{CustomerID: "c1", Endpoint: srv.URL}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.Track(context.Background(), "pageview", nil)
	if err == nil {
		t.Fatal("expected error on 502")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should carry the status, got %v", err)
	}
}
