// Package notify delivers farm alerts to a configured webhook endpoint.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Alert is the JSON payload posted for harvest reconciliations and nightly
// report summaries.
type Alert struct {
	CycleID string    `json:"cycle_id,omitempty"`
	PondID  string    `json:"pond_id,omitempty"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Client exposes the alert delivery operation used by the application.
type Client interface {
	SendAlert(ctx context.Context, alert Alert) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds an alert client pointed at the given webhook URL.
func NewWebhookClient(webhookURL string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        webhookURL,
	}
}

// SendAlert posts the alert payload. Delivery is fire-and-forget from the
// caller's perspective; a non-2xx response is returned as an error so the
// caller can log it.
func (c *WebhookClient) SendAlert(ctx context.Context, alert Alert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post alert webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
