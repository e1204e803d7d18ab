package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legacy-vault/legacy_vault/internal/asset"
	"github.com/legacy-vault/legacy_vault/internal/privacy"
)

// ErrBlocked means the input mentioned secret material and was refused
// before reaching the provider.
var ErrBlocked = errors.New("input contains sensitive content")

// Service fronts the AI provider with the sensitive-content filter.
// Nothing reaches the provider unfiltered.
type Service struct {
	client Client
	logger *slog.Logger
}

// NewService builds an assistant service.
func NewService(client Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Ask answers a free-form planning question. Questions mentioning
// secret material are refused outright; detected patterns in otherwise
// safe questions are redacted before leaving the process.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is required")
	}

	result := privacy.Sanitize(question)
	if !result.Safe {
		return "", fmt.Errorf("%w: %s", ErrBlocked, strings.Join(result.BlockedReasons, "; "))
	}
	if len(result.Warnings) > 0 {
		s.logger.Info("question redacted before provider call",
			slog.Int("redactions", len(result.Warnings)))
	}

	return s.client.Complete(ctx, []Message{
		{Role: "system", Content: askPrompt},
		{Role: "user", Content: result.Sanitized},
	})
}

// CategorizeAsset suggests an asset type for a name and description.
// Unusable answers fall back to text_note.
func (s *Service) CategorizeAsset(ctx context.Context, name, description string) (string, error) {
	input := strings.TrimSpace(name + " " + description)
	if input == "" {
		return "", errors.New("asset name is required")
	}

	result := privacy.Sanitize(input)
	if !result.Safe {
		return "", fmt.Errorf("%w: %s", ErrBlocked, strings.Join(result.BlockedReasons, "; "))
	}

	answer, err := s.client.Complete(ctx, []Message{
		{Role: "system", Content: categorizePrompt},
		{Role: "user", Content: result.Sanitized},
	})
	if err != nil {
		return "", err
	}

	category := strings.ToLower(strings.TrimSpace(answer))
	if !asset.ValidType(category) {
		s.logger.Warn("unusable category from provider", slog.String("answer", answer))
		category = asset.TypeTextNote
	}
	return category, nil
}

// GenerateMessage drafts a farewell message for a beneficiary.
func (s *Service) GenerateMessage(ctx context.Context, recipientName, relationship, notes string) (string, error) {
	if strings.TrimSpace(recipientName) == "" {
		return "", errors.New("recipient name is required")
	}

	prompt := fmt.Sprintf("Write a farewell message to %s, my %s.", recipientName, relationship)
	if notes = strings.TrimSpace(notes); notes != "" {
		result := privacy.Sanitize(notes)
		if !result.Safe {
			return "", fmt.Errorf("%w: %s", ErrBlocked, strings.Join(result.BlockedReasons, "; "))
		}
		prompt += " Things I want to mention: " + result.Sanitized
	}

	return s.client.Complete(ctx, []Message{
		{Role: "system", Content: messagePrompt},
		{Role: "user", Content: prompt},
	})
}
