package dms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/email"
	"github.com/legacy-vault/legacy_vault/internal/identity"
)

// ClaimURL renders the public claim link for an access key.
type ClaimURL func(accessKey string) string

// Engine owns the dead man's switch lifecycle: heartbeats, the
// inactivity trigger, beneficiary fan-out and explicit reactivation.
type Engine struct {
	users         identity.Repository
	beneficiaries beneficiary.Repository
	mailer        email.Mailer
	activity      *activity.Service
	claimURL      ClaimURL
	logger        *slog.Logger
}

// NewEngine builds a DMS engine.
func NewEngine(
	users identity.Repository,
	beneficiaries beneficiary.Repository,
	mailer email.Mailer,
	activitySvc *activity.Service,
	claimURL ClaimURL,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		users:         users,
		beneficiaries: beneficiaries,
		mailer:        mailer,
		activity:      activitySvc,
		claimURL:      claimURL,
		logger:        logger,
	}
}

// Heartbeat records owner activity and pushes the inactivity clock
// forward. It never changes dms_status: a TRIGGERED switch stays
// triggered until the owner reactivates explicitly.
func (e *Engine) Heartbeat(ctx context.Context, userID string) error {
	if err := e.users.Touch(ctx, userID, time.Now().UTC()); err != nil {
		return err
	}
	e.activity.Record(ctx, userID, activity.TypeHeartbeat, "activity check-in recorded")
	return nil
}

// EvaluateUser checks one user against their inactivity period and, if
// the period has lapsed, performs the trigger. The status flip is a
// single conditional update, so only one of any number of concurrent
// evaluations observes the transition and runs the fan-out.
func (e *Engine) EvaluateUser(ctx context.Context, user identity.User, now time.Time) (bool, error) {
	cutoff := now.Add(-user.Period())
	triggered, err := e.users.MarkTriggered(ctx, user.ID, cutoff)
	if err != nil {
		return false, err
	}
	if !triggered {
		return false, nil
	}

	e.logger.Info("dead man's switch triggered",
		slog.String("user_id", user.ID),
		slog.Int("period_days", user.DMSPeriodDays))

	e.activity.Record(ctx, user.ID, activity.TypeDMSTriggered,
		fmt.Sprintf("switch triggered after %d days of inactivity", user.DMSPeriodDays))

	e.notifyBeneficiaries(ctx, user)
	return true, nil
}

// EvaluateAll sweeps every ACTIVE user and returns the number of
// switches triggered by this pass. A failure on one user is logged
// and does not stop the sweep.
func (e *Engine) EvaluateAll(ctx context.Context) (int, error) {
	users, err := e.users.ListByStatus(ctx, identity.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("list active users: %w", err)
	}

	now := time.Now().UTC()
	triggered := 0
	for _, user := range users {
		fired, err := e.EvaluateUser(ctx, user, now)
		if err != nil {
			e.logger.Error("evaluate user failed",
				slog.String("user_id", user.ID), slog.Any("error", err))
			continue
		}
		if fired {
			triggered++
		}
	}
	return triggered, nil
}

// Reactivate flips a TRIGGERED switch back to ACTIVE and resets the
// inactivity clock. Returns false when the switch was not triggered.
func (e *Engine) Reactivate(ctx context.Context, userID string) (bool, error) {
	done, err := e.users.Reactivate(ctx, userID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	e.logger.Info("dead man's switch reactivated", slog.String("user_id", userID))
	e.activity.Record(ctx, userID, activity.TypeDMSReactivated, "switch reactivated by owner")
	return true, nil
}

// notifyBeneficiaries emails each beneficiary their personal claim
// link. One failing address must not starve the rest, so every send
// is retried and failures are only logged.
func (e *Engine) notifyBeneficiaries(ctx context.Context, user identity.User) {
	beneficiaries, err := e.beneficiaries.ListByUser(ctx, user.ID)
	if err != nil {
		e.logger.Error("list beneficiaries for fan-out failed",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	if len(beneficiaries) == 0 {
		e.logger.Warn("switch triggered with no beneficiaries", slog.String("user_id", user.ID))
		return
	}

	for _, b := range beneficiaries {
		msg := email.DMSTriggered(b.Email, b.Name, user.Name, b.AccessKey, e.claimURL(b.AccessKey))
		backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			return retry.RetryableError(e.mailer.Send(ctx, msg))
		})
		if err != nil {
			e.logger.Error("trigger notification failed",
				slog.String("beneficiary_id", b.ID), slog.Any("error", err))
		}
	}
}
