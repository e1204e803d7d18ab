package beneficiary

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/email"
	"github.com/legacy-vault/legacy_vault/internal/logging"
)

type recordingMailer struct {
	sent []email.Message
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newTestService(mailer email.Mailer) (*Service, activity.Repository) {
	log := logging.Discard()
	activityRepo := activity.NewMemoryRepository()
	return NewService(NewMemoryRepository(), mailer, activity.NewService(activityRepo, log), log), activityRepo
}

func TestAddGeneratesUniqueAccessKeys(t *testing.T) {
	mailer := &recordingMailer{}
	svc, _ := newTestService(mailer)
	ctx := context.Background()
	ownerID := uuid.NewString()

	first, err := svc.Add(ctx, AddInput{UserID: ownerID, OwnerName: "Owner", Name: "Alice", Email: "alice@example.com", Relationship: "spouse"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := svc.Add(ctx, AddInput{UserID: ownerID, OwnerName: "Owner", Name: "Bob", Email: "bob@example.com", Relationship: "child"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(first.AccessKey) != 64 || len(second.AccessKey) != 64 {
		t.Fatalf("expected 64-char access keys, got %d and %d", len(first.AccessKey), len(second.AccessKey))
	}
	if first.AccessKey == second.AccessKey {
		t.Fatal("access keys must be unique per beneficiary")
	}
	if first.VerificationStatus != StatusPending {
		t.Fatalf("expected initial status PENDING, got %s", first.VerificationStatus)
	}
}

func TestAddSendsNotificationEmail(t *testing.T) {
	mailer := &recordingMailer{}
	svc, activityRepo := newTestService(mailer)
	ctx := context.Background()
	ownerID := uuid.NewString()

	if _, err := svc.Add(ctx, AddInput{UserID: ownerID, OwnerName: "Owner", Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != "alice@example.com" {
		t.Fatalf("email sent to wrong address: %s", mailer.sent[0].To)
	}

	entries, err := activityRepo.ListRecent(ctx, ownerID, 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != activity.TypeBeneficiaryAdded {
		t.Fatalf("expected one beneficiary_added entry, got %+v", entries)
	}
}

func TestAddValidatesInput(t *testing.T) {
	svc, _ := newTestService(&recordingMailer{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddInput{UserID: uuid.NewString(), Name: "", Email: "a@b.co"}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.Add(ctx, AddInput{UserID: uuid.NewString(), Name: "Alice", Email: "not-an-email"}); err == nil {
		t.Fatal("expected error for invalid email")
	}
}
