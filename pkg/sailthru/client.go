package sailthru

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client delivers payloads to the vendor HTTP API. There is no retry logic;
// failures are reported to the caller and otherwise dropped.
type Client struct {
	endpoint   string
	customerID string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a vendor API client from the destination options.
func NewClient(options Options, logger *log.Logger) (*Client, error) {
	if options.CustomerID == "" {
		return nil, errors.New("customer_id is required")
	}
	endpoint := strings.TrimRight(options.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		endpoint:   endpoint,
		customerID: options.CustomerID,
		apiKey:     options.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

// Track sends a vendor track event.
func (c *Client) Track(ctx context.Context, event string, payload map[string]interface{}) error {
	return c.post(ctx, "/track", event, payload)
}

// Integration sends a vendor integration event.
func (c *Client) Integration(ctx context.Context, event string, payload map[string]interface{}) error {
	return c.post(ctx, "/integration", event, payload)
}

func (c *Client) post(ctx context.Context, path, event string, payload map[string]interface{}) error {
	body := map[string]interface{}{
		"event":       event,
		"customer_id": c.customerID,
	}
	if payload != nil {
		body["payload"] = payload
	}
	if c.apiKey != "" {
		body["key"] = c.apiKey
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver %s: %w", event, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("deliver %s: vendor responded %d", event, resp.StatusCode)
	}
	return nil
}
