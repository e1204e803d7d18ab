package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable means no AI provider is configured. The feature is
// optional and every caller must handle this error gracefully.
var ErrUnavailable = errors.New("assistant provider is not configured")

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces a completion for a chat transcript.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// HTTPClient speaks to an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewHTTPClient builds a completion client for the given endpoint
// and model.
func NewHTTPClient(apiKey, baseURL, model string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the transcript and returns the first choice.
func (c *HTTPClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("assistant response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("assistant provider: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("assistant provider: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("assistant provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Unavailable is wired in when no provider is configured, so the
// service fails with a recognizable error instead of a nil deref.
type Unavailable struct{}

// Complete always reports ErrUnavailable.
func (Unavailable) Complete(context.Context, []Message) (string, error) {
	return "", ErrUnavailable
}
