package dms

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/email"
	"github.com/legacy-vault/legacy_vault/internal/identity"
	"github.com/legacy-vault/legacy_vault/internal/logging"
)

type recordingMailer struct {
	sent []email.Message
	// addresses that always fail to send
	failing map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	if m.failing[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func claimURL(accessKey string) string {
	return "http://localhost:8080/claim?key=" + accessKey
}

type fixture struct {
	engine        *Engine
	users         identity.Repository
	beneficiaries beneficiary.Repository
	activities    activity.Repository
	mailer        *recordingMailer
	owner         identity.User
}

// newFixture creates an ACTIVE owner with a 30-day period whose last
// activity was the given duration ago.
func newFixture(t *testing.T, inactiveFor time.Duration) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logging.Discard()

	users := identity.NewMemoryRepository()
	beneficiaries := beneficiary.NewMemoryRepository()
	activities := activity.NewMemoryRepository()
	mailer := &recordingMailer{failing: map[string]bool{}}

	owner := identity.User{
		ID:            uuid.NewString(),
		Email:         "owner@example.com",
		Name:          "Owner",
		DMSStatus:     identity.StatusActive,
		DMSPeriodDays: 30,
		LastActiveAt:  time.Now().UTC().Add(-inactiveFor),
		CreatedAt:     time.Now().UTC(),
	}
	if err := users.Create(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	engine := NewEngine(users, beneficiaries, mailer,
		activity.NewService(activities, log), claimURL, log)

	return &fixture{
		engine:        engine,
		users:         users,
		beneficiaries: beneficiaries,
		activities:    activities,
		mailer:        mailer,
		owner:         owner,
	}
}

func (f *fixture) addBeneficiary(t *testing.T, name, addr string) beneficiary.Beneficiary {
	t.Helper()
	key, err := beneficiary.NewAccessKey()
	if err != nil {
		t.Fatalf("access key: %v", err)
	}
	b := beneficiary.Beneficiary{
		ID:                 uuid.NewString(),
		UserID:             f.owner.ID,
		Name:               name,
		Email:              addr,
		AccessKey:          key,
		VerificationStatus: beneficiary.StatusPending,
		CreatedAt:          time.Now().UTC(),
	}
	if err := f.beneficiaries.Create(context.Background(), b); err != nil {
		t.Fatalf("create beneficiary: %v", err)
	}
	return b
}

func (f *fixture) entriesOfType(t *testing.T, entryType string) []activity.Entry {
	t.Helper()
	entries, err := f.activities.ListRecent(context.Background(), f.owner.ID, 100)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	var matched []activity.Entry
	for _, e := range entries {
		if e.Type == entryType {
			matched = append(matched, e)
		}
	}
	return matched
}

func TestTriggerAfterInactivityPeriod(t *testing.T) {
	f := newFixture(t, 31*24*time.Hour)
	ctx := context.Background()
	alice := f.addBeneficiary(t, "Alice", "alice@example.com")
	bob := f.addBeneficiary(t, "Bob", "bob@example.com")

	triggered, err := f.engine.EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if triggered != 1 {
		t.Fatalf("expected 1 trigger, got %d", triggered)
	}

	user, _ := f.users.FindByID(ctx, f.owner.ID)
	if user.DMSStatus != identity.StatusTriggered {
		t.Fatalf("expected TRIGGERED, got %s", user.DMSStatus)
	}

	if got := f.entriesOfType(t, activity.TypeDMSTriggered); len(got) != 1 {
		t.Fatalf("expected exactly 1 trigger entry, got %d", len(got))
	}

	// Each beneficiary gets exactly one email carrying their own key.
	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(f.mailer.sent))
	}
	keys := map[string]string{alice.Email: alice.AccessKey, bob.Email: bob.AccessKey}
	for _, msg := range f.mailer.sent {
		key, ok := keys[msg.To]
		if !ok {
			t.Fatalf("email to unexpected recipient %s", msg.To)
		}
		if !strings.Contains(msg.HTML, key) || !strings.Contains(msg.HTML, claimURL(key)) {
			t.Fatalf("email to %s does not carry their key and claim link", msg.To)
		}
		delete(keys, msg.To)
	}
}

func TestTriggerIsAtMostOnce(t *testing.T) {
	f := newFixture(t, 31*24*time.Hour)
	ctx := context.Background()
	f.addBeneficiary(t, "Alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		if _, err := f.engine.EvaluateAll(ctx); err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
	}

	if got := f.entriesOfType(t, activity.TypeDMSTriggered); len(got) != 1 {
		t.Fatalf("expected 1 trigger entry after re-evaluation, got %d", len(got))
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 email after re-evaluation, got %d", len(f.mailer.sent))
	}
}

func TestHeartbeatPreventsTrigger(t *testing.T) {
	// Clock already past the period; the heartbeat rescues it.
	f := newFixture(t, 31*24*time.Hour)
	ctx := context.Background()

	if err := f.engine.Heartbeat(ctx, f.owner.ID); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	triggered, err := f.engine.EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if triggered != 0 {
		t.Fatalf("expected no triggers, got %d", triggered)
	}

	user, _ := f.users.FindByID(ctx, f.owner.ID)
	if user.DMSStatus != identity.StatusActive {
		t.Fatalf("expected ACTIVE, got %s", user.DMSStatus)
	}
	if got := f.entriesOfType(t, activity.TypeHeartbeat); len(got) != 1 {
		t.Fatalf("expected heartbeat entry, got %d", len(got))
	}
}

func TestNotWithinPeriodNotTriggered(t *testing.T) {
	f := newFixture(t, 15*24*time.Hour)

	triggered, err := f.engine.EvaluateAll(context.Background())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if triggered != 0 {
		t.Fatalf("expected no triggers, got %d", triggered)
	}
}

func TestFailingMailboxDoesNotStarveOthers(t *testing.T) {
	f := newFixture(t, 31*24*time.Hour)
	ctx := context.Background()
	f.addBeneficiary(t, "Alice", "alice@example.com")
	f.addBeneficiary(t, "Bob", "bob@example.com")
	f.mailer.failing["alice@example.com"] = true

	if _, err := f.engine.EvaluateAll(ctx); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if len(f.mailer.sent) != 1 || f.mailer.sent[0].To != "bob@example.com" {
		t.Fatalf("expected bob to still be notified, sent: %+v", f.mailer.sent)
	}
	user, _ := f.users.FindByID(ctx, f.owner.ID)
	if user.DMSStatus != identity.StatusTriggered {
		t.Fatalf("trigger must survive notification failures, got %s", user.DMSStatus)
	}
}

func TestReactivate(t *testing.T) {
	f := newFixture(t, 31*24*time.Hour)
	ctx := context.Background()

	if _, err := f.engine.EvaluateAll(ctx); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	done, err := f.engine.Reactivate(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !done {
		t.Fatal("expected reactivation to apply")
	}

	user, _ := f.users.FindByID(ctx, f.owner.ID)
	if user.DMSStatus != identity.StatusActive {
		t.Fatalf("expected ACTIVE, got %s", user.DMSStatus)
	}
	if time.Since(user.LastActiveAt) > time.Minute {
		t.Fatal("reactivation must reset the inactivity clock")
	}
	if got := f.entriesOfType(t, activity.TypeDMSReactivated); len(got) != 1 {
		t.Fatalf("expected reactivation entry, got %d", len(got))
	}

	// Reactivating an already-ACTIVE switch is a no-op.
	done, err = f.engine.Reactivate(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("second reactivate: %v", err)
	}
	if done {
		t.Fatal("expected no-op for an already-active switch")
	}

	// The clock was reset, so the next sweep must not re-trigger.
	triggered, err := f.engine.EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("evaluate after reactivation: %v", err)
	}
	if triggered != 0 {
		t.Fatalf("expected no re-trigger, got %d", triggered)
	}
}
