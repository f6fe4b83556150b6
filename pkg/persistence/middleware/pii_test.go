package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/cancelflow/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	mw, err := middleware.NewPIIMiddleware([]string{"^comment$", "email"})
	if err != nil {
		t.Fatal(err)
	}
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	record := []byte(`{"currentStepId":"canceled","feedback":{"reason":"Other","comment":"call me at 555-0100","contact_email":"a@b.c"}}`)

	if err := secureStore.Save(ctx, "pii-session", record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlyingStore.Load(ctx, "pii-session")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	var doc struct {
		CurrentStepID string            `json:"currentStepId"`
		Feedback      map[string]string `json:"feedback"`
	}
	if err := json.Unmarshal(stored, &doc); err != nil {
		t.Fatalf("stored record is not JSON: %v", err)
	}

	if doc.CurrentStepID != "canceled" {
		t.Errorf("Step id shouldn't be touched, got %q", doc.CurrentStepID)
	}
	if doc.Feedback["reason"] != "Other" {
		t.Error("Reason shouldn't be masked")
	}
	if doc.Feedback["comment"] != middleware.Mask {
		t.Errorf("Comment should be masked, got: %v", doc.Feedback["comment"])
	}
	if doc.Feedback["contact_email"] != middleware.Mask {
		t.Errorf("Nested email should be masked, got: %v", doc.Feedback["contact_email"])
	}
}

func TestPIIMiddleware_PassThrough(t *testing.T) {
	underlyingStore := NewMockStore()
	mw, _ := middleware.NewPIIMiddleware([]string{"comment"})
	secureStore := mw(underlyingStore)
	ctx := context.Background()

	for _, record := range []string{"{not json", `{"currentStepId":"reason","feedback":{}}`} {
		if err := secureStore.Save(ctx, "k", []byte(record)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		stored, _ := underlyingStore.Load(ctx, "k")
		if string(stored) != record {
			t.Errorf("Expected record untouched, got %s", stored)
		}
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	pii, _ := middleware.NewPIIMiddleware([]string{"^comment$"})
	enc := mustEncrypt(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	// Masking runs before encryption, otherwise it would only see ciphertext.
	store := middleware.Chain(underlyingStore, pii, enc)
	ctx := context.Background()

	if err := store.Save(ctx, "k", []byte(`{"feedback":{"comment":"secret"}}`)); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(loaded) != `{"feedback":{"comment":"***"}}` {
		t.Errorf("unexpected record: %s", loaded)
	}
}
