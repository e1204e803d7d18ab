package beneficiary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/email"
)

// Service manages beneficiary lifecycle for an owner.
type Service struct {
	repo     Repository
	mailer   email.Mailer
	activity *activity.Service
	logger   *slog.Logger
}

// NewService builds a beneficiary service.
func NewService(repo Repository, mailer email.Mailer, activitySvc *activity.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, activity: activitySvc, logger: logger}
}

// AddInput captures the data required to designate a beneficiary.
type AddInput struct {
	UserID       string
	OwnerName    string
	Name         string
	Email        string
	Relationship string
}

// Add designates a new beneficiary. The access key is generated here,
// once, and never changes afterwards. The notification email is
// best-effort: a delivery failure does not undo the designation.
func (s *Service) Add(ctx context.Context, input AddInput) (Beneficiary, error) {
	name := strings.TrimSpace(input.Name)
	addr := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return Beneficiary{}, errors.New("beneficiary name is required")
	}
	if addr == "" || !strings.Contains(addr, "@") {
		return Beneficiary{}, errors.New("valid beneficiary email is required")
	}

	accessKey, err := NewAccessKey()
	if err != nil {
		return Beneficiary{}, err
	}

	b := Beneficiary{
		ID:                 uuid.NewString(),
		UserID:             input.UserID,
		Name:               name,
		Email:              addr,
		Relationship:       strings.TrimSpace(input.Relationship),
		AccessKey:          accessKey,
		VerificationStatus: StatusPending,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return Beneficiary{}, err
	}

	s.activity.Record(ctx, input.UserID, activity.TypeBeneficiaryAdded,
		fmt.Sprintf("Added beneficiary %s (%s)", name, b.Relationship))

	if err := s.mailer.Send(ctx, email.BeneficiaryAdded(addr, name, input.OwnerName)); err != nil && s.logger != nil {
		s.logger.Warn("beneficiary-added email failed",
			slog.String("beneficiary_id", b.ID), slog.Any("error", err))
	}

	return b, nil
}

// List returns the owner's beneficiaries.
func (s *Service) List(ctx context.Context, userID string) ([]Beneficiary, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Remove deletes a beneficiary owned by the user.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, userID, activity.TypeBeneficiaryRemoved, "Removed a beneficiary")
	return nil
}
