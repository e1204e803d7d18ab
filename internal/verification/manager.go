// Package verification drives the beneficiary identity-check state
// machine: PENDING -> VERIFIED via a signed provider webhook, PENDING ->
// FAILED on cancellation, FAILED -> PENDING on a fresh attempt.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/email"
	"github.com/legacy-vault/legacy_vault/internal/identity"
)

// ErrOwnerActive refuses verification while the owner's switch has not
// fired. No verification session may exist before TRIGGERED.
var ErrOwnerActive = errors.New("vault is not accessible: the owner is still active")

// VaultURL builds the public vault link for a verified beneficiary.
type VaultURL func(accessKey string) string

// Manager orchestrates verification sessions and consumes webhook events.
type Manager struct {
	beneficiaries beneficiary.Repository
	users         identity.Repository
	provider      Provider
	mailer        email.Mailer
	activity      *activity.Service
	vaultURL      VaultURL
	logger        *slog.Logger
}

// NewManager builds a verification manager.
func NewManager(
	beneficiaries beneficiary.Repository,
	users identity.Repository,
	provider Provider,
	mailer email.Mailer,
	activitySvc *activity.Service,
	vaultURL VaultURL,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		beneficiaries: beneficiaries,
		users:         users,
		provider:      provider,
		mailer:        mailer,
		activity:      activitySvc,
		vaultURL:      vaultURL,
		logger:        logger,
	}
}

// StartResult is the outcome of a claim attempt.
type StartResult struct {
	AlreadyVerified bool
	RedirectTo      string
	SessionID       string
	ClientSecret    string
}

// Start begins (or restarts) identity verification for the holder of an
// access key. Preconditions: the key must resolve and the owner's switch
// must be TRIGGERED. An already-VERIFIED beneficiary is short-circuited
// to the vault instead of opening a duplicate session. Provider failures
// are retried briefly and surfaced without mutating beneficiary state.
func (m *Manager) Start(ctx context.Context, accessKey string) (StartResult, error) {
	b, err := m.beneficiaries.FindByAccessKey(ctx, accessKey)
	if err != nil {
		return StartResult{}, err
	}

	owner, err := m.users.FindByID(ctx, b.UserID)
	if err != nil {
		return StartResult{}, err
	}
	if owner.DMSStatus != identity.StatusTriggered {
		return StartResult{}, ErrOwnerActive
	}

	if b.VerificationStatus == beneficiary.StatusVerified {
		return StartResult{AlreadyVerified: true, RedirectTo: m.vaultURL(accessKey)}, nil
	}

	var session Session
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var createErr error
		session, createErr = m.provider.CreateSession(ctx, SessionRequest{
			BeneficiaryID: b.ID,
			AccessKey:     accessKey,
			ReturnURL:     m.vaultURL(accessKey),
		})
		return retry.RetryableError(createErr)
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("start verification: %w", err)
	}

	if err := m.beneficiaries.StartSession(ctx, b.ID, session.ID); err != nil {
		return StartResult{}, err
	}

	return StartResult{SessionID: session.ID, ClientSecret: session.ClientSecret}, nil
}

// HandleEvent applies an authenticated webhook event. The VERIFIED
// transition is idempotent: a duplicate delivery changes nothing and
// does not re-send the access-granted email.
func (m *Manager) HandleEvent(ctx context.Context, event Event) error {
	if event.BeneficiaryID == "" {
		if m.logger != nil {
			m.logger.Warn("webhook event without beneficiary metadata", slog.String("type", event.Type))
		}
		return nil
	}

	switch event.Type {
	case EventVerified:
		newly, err := m.beneficiaries.MarkVerified(ctx, event.BeneficiaryID, event.SessionID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !newly {
			return nil
		}

		b, err := m.beneficiaries.FindByID(ctx, event.BeneficiaryID)
		if err != nil {
			return err
		}

		m.activity.Record(ctx, b.UserID, activity.TypeBeneficiaryVerified,
			fmt.Sprintf("%s completed identity verification", b.Name))

		if err := m.mailer.Send(ctx, email.AccessGranted(b.Email, b.Name, m.vaultURL(b.AccessKey))); err != nil && m.logger != nil {
			m.logger.Warn("access-granted email failed",
				slog.String("beneficiary_id", b.ID), slog.Any("error", err))
		}
		return nil

	case EventRequiresInput:
		return m.beneficiaries.StartSession(ctx, event.BeneficiaryID, event.SessionID)

	case EventCanceled:
		return m.beneficiaries.MarkFailed(ctx, event.BeneficiaryID, event.SessionID)

	default:
		if m.logger != nil {
			m.logger.Info("unhandled webhook event type", slog.String("type", event.Type))
		}
		return nil
	}
}
