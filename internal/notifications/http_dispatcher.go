package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPDispatcher posts notifications as JSON to the email function.
type HTTPDispatcher struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewHTTPDispatcher builds a dispatcher for url. apiKey may be empty.
func NewHTTPDispatcher(url, apiKey string) *HTTPDispatcher {
	return &HTTPDispatcher{
		URL:    strings.TrimSpace(url),
		APIKey: strings.TrimSpace(apiKey),
		Client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Notify sends one request; any non-2xx answer is an error.
func (d *HTTPDispatcher) Notify(ctx context.Context, n Notification) error {
	if d.URL == "" {
		return fmt.Errorf("email function url not configured")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.APIKey)
	}

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email function status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ Dispatcher = (*HTTPDispatcher)(nil)
