package asset

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legacy-vault/legacy_vault/internal/activity"
)

// Service manages encrypted asset records for an owner.
type Service struct {
	repo     Repository
	activity *activity.Service
}

// NewService builds an asset service.
func NewService(repo Repository, activitySvc *activity.Service) *Service {
	return &Service{repo: repo, activity: activitySvc}
}

// AddInput captures the data required to store an encrypted asset.
type AddInput struct {
	UserID     string
	Name       string
	Type       string
	Platform   string
	Ciphertext string
	IV         string
}

// Add validates and stores an already-encrypted payload. Validation is
// shape-only: the server can check base64 framing but by design cannot
// inspect the contents.
func (s *Service) Add(ctx context.Context, input AddInput) (Asset, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Asset{}, errors.New("asset name is required")
	}
	if !ValidType(input.Type) {
		return Asset{}, fmt.Errorf("unknown asset type %q", input.Type)
	}
	if input.Ciphertext == "" || input.IV == "" {
		return Asset{}, errors.New("encrypted payload (ciphertext and iv) is required")
	}
	if _, err := base64.StdEncoding.DecodeString(input.Ciphertext); err != nil {
		return Asset{}, errors.New("ciphertext is not valid base64")
	}
	if _, err := base64.StdEncoding.DecodeString(input.IV); err != nil {
		return Asset{}, errors.New("iv is not valid base64")
	}

	a := Asset{
		ID:         uuid.NewString(),
		UserID:     input.UserID,
		Name:       name,
		Type:       input.Type,
		Platform:   strings.TrimSpace(input.Platform),
		Ciphertext: input.Ciphertext,
		IV:         input.IV,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Asset{}, err
	}

	s.activity.Record(ctx, input.UserID, activity.TypeAssetAdded,
		fmt.Sprintf("Added encrypted asset %q", name))

	return a, nil
}

// List returns the owner's assets.
func (s *Service) List(ctx context.Context, userID string) ([]Asset, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Remove deletes an asset owned by the user.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, userID, activity.TypeAssetDeleted, "Deleted an encrypted asset")
	return nil
}

// EncryptedForUser returns the release form of all the owner's assets.
func (s *Service) EncryptedForUser(ctx context.Context, userID string) ([]Encrypted, error) {
	assets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	encrypted := make([]Encrypted, 0, len(assets))
	for _, a := range assets {
		encrypted = append(encrypted, Encrypted{
			ID:         a.ID,
			Name:       a.Name,
			Type:       a.Type,
			Platform:   a.Platform,
			Ciphertext: a.Ciphertext,
			IV:         a.IV,
		})
	}
	return encrypted, nil
}
