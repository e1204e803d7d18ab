package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legacy-vault/legacy_vault/internal/asset"
	"github.com/legacy-vault/legacy_vault/internal/logging"
)

type fakeClient struct {
	calls  int
	answer string
	err    error
	// last transcript seen by the provider
	messages []Message
}

func (c *fakeClient) Complete(_ context.Context, messages []Message) (string, error) {
	c.calls++
	c.messages = messages
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

func TestAskBlockedNeverReachesProvider(t *testing.T) {
	client := &fakeClient{answer: "ok"}
	svc := NewService(client, logging.Discard())

	_, err := svc.Ask(context.Background(), "what should I do with my seed phrase?")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("provider was called %d times for blocked input", client.calls)
	}
}

func TestAskRedactsBeforeProvider(t *testing.T) {
	client := &fakeClient{answer: "ok"}
	svc := NewService(client, logging.Discard())

	answer, err := svc.Ask(context.Background(), "should I list my account alice@example.com as an asset?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer != "ok" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", client.calls)
	}
	user := client.messages[len(client.messages)-1].Content
	if strings.Contains(user, "alice@example.com") {
		t.Fatal("email address leaked to provider")
	}
	if !strings.Contains(user, "[EMAIL_REDACTED]") {
		t.Fatalf("expected redaction placeholder, got %q", user)
	}
}

func TestAskUnavailableProvider(t *testing.T) {
	svc := NewService(Unavailable{}, logging.Discard())

	_, err := svc.Ask(context.Background(), "how do I plan my digital estate?")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCategorizeAsset(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"clean category", "subscription", asset.TypeSubscription},
		{"padded category", "  Crypto\n", asset.TypeCrypto},
		{"chatty provider falls back", "I think it is a subscription!", asset.TypeTextNote},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{answer: tc.answer}
			svc := NewService(client, logging.Discard())

			got, err := svc.CategorizeAsset(context.Background(), "Netflix", "monthly streaming plan")
			if err != nil {
				t.Fatalf("categorize: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCategorizeBlockedInput(t *testing.T) {
	client := &fakeClient{answer: "crypto"}
	svc := NewService(client, logging.Discard())

	_, err := svc.CategorizeAsset(context.Background(), "wallet", "holds my private key")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if client.calls != 0 {
		t.Fatal("provider called for blocked input")
	}
}

func TestGenerateMessage(t *testing.T) {
	client := &fakeClient{answer: "Dear Alice, ..."}
	svc := NewService(client, logging.Discard())

	msg, err := svc.GenerateMessage(context.Background(), "Alice", "daughter", "mention the summer house")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if msg == "" {
		t.Fatal("empty message")
	}
	user := client.messages[len(client.messages)-1].Content
	if !strings.Contains(user, "Alice") || !strings.Contains(user, "daughter") {
		t.Fatalf("prompt missing recipient context: %q", user)
	}

	if _, err := svc.GenerateMessage(context.Background(), "", "", ""); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}
