package verification

import (
	"encoding/json"
	"fmt"
	"time"
)

// Webhook event types emitted by the identity provider.
const (
	EventVerified      = "verification.verified"
	EventRequiresInput = "verification.requires_input"
	EventCanceled      = "verification.canceled"
)

// Event is a decoded, authenticated webhook delivery.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	BeneficiaryID string
	AccessKey     string
}

type eventPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent authenticates and decodes a webhook delivery. The signature
// check happens before any JSON is trusted; an invalid signature must
// result in a 400 with zero state change.
func ParseEvent(payload []byte, sigHeader string, secret []byte, tolerance time.Duration) (Event, error) {
	if err := VerifySignature(payload, sigHeader, secret, tolerance); err != nil {
		return Event{}, err
	}

	var raw eventPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}

	return Event{
		ID:            raw.ID,
		Type:          raw.Type,
		SessionID:     raw.Data.Object.ID,
		BeneficiaryID: raw.Data.Object.Metadata["beneficiary_id"],
		AccessKey:     raw.Data.Object.Metadata["access_key"],
	}, nil
}
