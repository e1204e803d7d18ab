package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendTimeout = 10 * time.Second

// APIMailer delivers mail through a Resend-style HTTP API.
type APIMailer struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// NewAPIMailer constructs an HTTP API mailer.
func NewAPIMailer(apiKey, baseURL, from string) *APIMailer {
	return &APIMailer{
		apiKey:  apiKey,
		baseURL: baseURL,
		from:    from,
		client:  &http.Client{Timeout: sendTimeout},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Send posts the message to the provider. A non-2xx response or timeout
// is a retryable failure for the caller; no state is implied.
func (m *APIMailer) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{message.To},
		Subject: message.Subject,
		HTML:    message.HTML,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr sendError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("email provider: %s (%s)", apiErr.Message, resp.Status)
		}
		return fmt.Errorf("email provider: unexpected status %s", resp.Status)
	}

	return nil
}
