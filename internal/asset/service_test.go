package asset

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/cryptox"
	"github.com/legacy-vault/legacy_vault/internal/logging"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func newService(t *testing.T) (*Service, activity.Repository) {
	t.Helper()
	activities := activity.NewMemoryRepository()
	svc := NewService(NewMemoryRepository(), activity.NewService(activities, logging.Discard()))
	return svc, activities
}

// Mirrors the owner's client: encrypt locally, upload only ciphertext
// and IV, and verify the server-side copy decrypts with the same key.
func TestStoreAndRecoverEncryptedAsset(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	key, err := cryptox.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	secret := credentials{Username: "owner", Password: "hunter2"}
	ciphertext, iv, err := cryptox.Encrypt(secret, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	stored, err := svc.Add(ctx, AddInput{
		UserID:     userID,
		Name:       "Streaming login",
		Type:       TypeSubscription,
		Platform:   "netflix",
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	release, err := svc.EncryptedForUser(ctx, userID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(release) != 1 || release[0].ID != stored.ID {
		t.Fatalf("unexpected release: %+v", release)
	}

	gotCiphertext, err := base64.StdEncoding.DecodeString(release[0].Ciphertext)
	if err != nil {
		t.Fatalf("decode ciphertext: %v", err)
	}
	gotIV, err := base64.StdEncoding.DecodeString(release[0].IV)
	if err != nil {
		t.Fatalf("decode iv: %v", err)
	}

	var recovered credentials
	if err := cryptox.Decrypt(gotCiphertext, gotIV, key, &recovered); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if recovered != secret {
		t.Fatalf("round trip mismatch: %+v", recovered)
	}

	// The wrong key recovers nothing.
	otherKey, _ := cryptox.GenerateKey()
	if err := cryptox.Decrypt(gotCiphertext, gotIV, otherKey, &recovered); err == nil {
		t.Fatal("decryption with the wrong key must fail")
	}
}

func TestAddValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	valid := base64.StdEncoding.EncodeToString([]byte("payload"))

	tests := []struct {
		name  string
		input AddInput
	}{
		{"missing name", AddInput{Type: TypeCrypto, Ciphertext: valid, IV: valid}},
		{"unknown type", AddInput{Name: "x", Type: "realestate", Ciphertext: valid, IV: valid}},
		{"missing payload", AddInput{Name: "x", Type: TypeCrypto}},
		{"bad ciphertext", AddInput{Name: "x", Type: TypeCrypto, Ciphertext: "not base64!!", IV: valid}},
		{"bad iv", AddInput{Name: "x", Type: TypeCrypto, Ciphertext: valid, IV: "not base64!!"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.input.UserID = uuid.NewString()
			if _, err := svc.Add(ctx, tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRemoveRecordsActivity(t *testing.T) {
	svc, activities := newService(t)
	ctx := context.Background()
	userID := uuid.NewString()
	valid := base64.StdEncoding.EncodeToString([]byte("payload"))

	a, err := svc.Add(ctx, AddInput{
		UserID: userID, Name: "Note", Type: TypeTextNote, Ciphertext: valid, IV: valid,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, userID, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	list, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	entries, err := activities.ListRecent(ctx, userID, 10)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	var added, deleted bool
	for _, e := range entries {
		switch e.Type {
		case activity.TypeAssetAdded:
			added = true
		case activity.TypeAssetDeleted:
			deleted = true
		}
	}
	if !added || !deleted {
		t.Fatalf("expected add and delete entries, got %+v", entries)
	}
}

func TestRemoveOtherOwnersAsset(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	valid := base64.StdEncoding.EncodeToString([]byte("payload"))

	a, err := svc.Add(ctx, AddInput{
		UserID: uuid.NewString(), Name: "Note", Type: TypeTextNote, Ciphertext: valid, IV: valid,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Remove(ctx, uuid.NewString(), a.ID); err == nil {
		t.Fatal("expected error removing another owner's asset")
	}
}
