package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const providerTimeout = 15 * time.Second

// Session is a newly created identity-verification session at the
// external provider. The client secret is handed to the beneficiary's
// browser to drive the document + selfie capture flow.
type Session struct {
	ID           string
	ClientSecret string
}

// SessionRequest carries the metadata the provider echoes back in
// webhook events, plus the capture requirements.
type SessionRequest struct {
	BeneficiaryID string
	AccessKey     string
	ReturnURL     string
}

// Provider represents a connector to an external document+selfie
// identity check service.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// HTTPProvider talks to the real identity provider API.
type HTTPProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds the production provider connector.
func NewHTTPProvider(apiKey, baseURL string) *HTTPProvider {
	return &HTTPProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: providerTimeout},
	}
}

type createSessionRequest struct {
	Type    string `json:"type"`
	Options struct {
		Document struct {
			AllowedTypes          []string `json:"allowed_types"`
			RequireLiveCapture    bool     `json:"require_live_capture"`
			RequireMatchingSelfie bool     `json:"require_matching_selfie"`
		} `json:"document"`
	} `json:"options"`
	Metadata  map[string]string `json:"metadata"`
	ReturnURL string            `json:"return_url"`
}

type createSessionResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession opens a document-check session requiring live capture
// and a matching selfie. Failures are retryable; no local state changes
// until the session id is persisted by the caller.
func (p *HTTPProvider) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	body := createSessionRequest{
		Type: "document",
		Metadata: map[string]string{
			"beneficiary_id": req.BeneficiaryID,
			"access_key":     req.AccessKey,
		},
		ReturnURL: req.ReturnURL,
	}
	body.Options.Document.AllowedTypes = []string{"passport", "driving_license", "id_card"}
	body.Options.Document.RequireLiveCapture = true
	body.Options.Document.RequireMatchingSelfie = true

	payload, err := json.Marshal(body)
	if err != nil {
		return Session{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/verification_sessions", bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Session{}, fmt.Errorf("verification provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Session{}, err
	}

	var decoded createSessionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Session{}, fmt.Errorf("verification provider: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decoded.Error.Message != "" {
			return Session{}, fmt.Errorf("verification provider: %s (%s)", decoded.Error.Message, resp.Status)
		}
		return Session{}, fmt.Errorf("verification provider: unexpected status %s", resp.Status)
	}
	if decoded.ID == "" {
		return Session{}, fmt.Errorf("verification provider: response missing session id")
	}

	return Session{ID: decoded.ID, ClientSecret: decoded.ClientSecret}, nil
}

// StaticProvider simulates a provider for development and tests.
type StaticProvider struct{}

// CreateSession returns a synthetic session.
func (StaticProvider) CreateSession(_ context.Context, _ SessionRequest) (Session, error) {
	return Session{
		ID:           "vs_" + uuid.NewString(),
		ClientSecret: "vcs_" + uuid.NewString(),
	}, nil
}
