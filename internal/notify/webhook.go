package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrNoWebhookURL = errors.New("webhook url not configured")

// Webhook posts a Slack-style {"text": ...} payload. The URL is looked up on
// every call so it can be rotated in the keyring without a restart.
type Webhook struct {
	url    func() (string, error)
	client *http.Client
}

func NewWebhook(url func() (string, error)) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	target, err := w.url()
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if strings.TrimSpace(target) == "" {
		return ErrNoWebhookURL
	}

	body, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", n.Title, n.Message),
	})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
