// Package discord posts embed messages to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Footer is the small text line under an embed.
type Footer struct {
	Text string `json:"text"`
}

type Embed struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Color       int     `json:"color"`
	Description string  `json:"description"`
	Footer      *Footer `json:"footer,omitempty"`
}

// Payload is the webhook body. Discord accepts at most 10 embeds per message.
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

// DeliveryError is returned when the webhook answers anything but 204.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("discord webhook returned %d: %s", e.Status, e.Body)
}

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

type WebhookClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookClient(url string, httpClient *http.Client) *WebhookClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebhookClient{url: url, httpClient: httpClient}
}

// Send posts one payload. Success is exactly HTTP 204 No Content.
func (c *WebhookClient) Send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}
