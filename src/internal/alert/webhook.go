// FILE: logseer/src/internal/alert/webhook.go
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"logseer/src/internal/config"
	"logseer/src/internal/core"

	"github.com/valyala/fasthttp"
)

// WebhookNotifier posts alerts as JSON to an HTTP endpoint
type WebhookNotifier struct {
	config *config.WebhookConfig
	client *fasthttp.Client
}

// NewWebhookNotifier creates a webhook notifier from configuration
func NewWebhookNotifier(cfg *config.WebhookConfig) *WebhookNotifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &WebhookNotifier{
		config: cfg,
		client: &fasthttp.Client{
			MaxConnsPerHost: 2,
			ReadTimeout:     timeout,
			WriteTimeout:    timeout,
		},
	}
}

// Name identifies the channel in logs
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// Notify posts the alert record as a JSON payload
func (n *WebhookNotifier) Notify(ctx context.Context, rec core.AlertRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.config.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if n.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.config.Token)
	}
	req.SetBody(body)

	timeout := time.Duration(n.config.TimeoutSeconds) * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := n.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook returned status %d", status)
	}
	return nil
}
