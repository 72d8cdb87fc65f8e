package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// WebhookNotifier POSTs critical findings to a configured URL, for wiring
// into quality-escalation systems. Non-critical findings are dropped.
type WebhookNotifier struct {
	URL     string
	Timeout time.Duration
	client  *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		URL:     url,
		Timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *WebhookNotifier) ExceptionsDetected(ctx context.Context, c *models.Component, exceptions []models.Exception) error {
	var critical []models.Exception
	for _, ex := range exceptions {
		if ex.Severity == models.SeverityCritical {
			critical = append(critical, ex)
		}
	}
	if len(critical) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"component_id":  c.ID,
		"part_number":   c.PartNumber,
		"serial_number": c.SerialNumber,
		"exceptions":    critical,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "AeroTrace-Integrity/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
