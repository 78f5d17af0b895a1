// Package discord talks to Discord: executing webhooks over plain HTTP and
// provisioning them through a bot gateway session.
package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zachyzissou/stanton-times/internal/logger"
)

const webhookBaseURL = "https://discord.com/api/webhooks"

// WebhookURL returns the canonical execute URL for a webhook.
func WebhookURL(id, token string) string {
	return fmt.Sprintf("%s/%s/%s", webhookBaseURL, id, token)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when Discord answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("discord API error: status %s, body: %s", status, e.Body)
}

// WebhookClient posts messages to a single webhook URL.
type WebhookClient struct {
	client HTTPClient
	url    string
	logger *logger.Logger
}

// NewWebhookClient returns a client for url. A nil client uses
// http.DefaultClient, which has no timeout.
func NewWebhookClient(url string, client HTTPClient, log *logger.Logger) *WebhookClient {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.Discard()
	}
	return &WebhookClient{
		client: client,
		url:    url,
		logger: log,
	}
}

// Send posts payload once. There is no retry: a transport error leaves it
// unknown whether Discord received the message.
func (wc *WebhookClient) Send(ctx context.Context, payload Payload) error {
	data, err := payload.Marshal()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	wc.logger.Debug("Posting webhook message", "bytes", len(data))

	resp, err := wc.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(resp.Body)
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
		if readErr != nil {
			return errors.Join(statusErr, fmt.Errorf("read response body: %w", readErr))
		}
		return statusErr
	}

	wc.logger.Debug("Webhook message accepted", "status", resp.StatusCode)
	return nil
}
