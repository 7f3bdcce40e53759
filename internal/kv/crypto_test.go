package kv

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, _ := GenerateSalt()
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptedStoreContract(t *testing.T) {
	enc, err := NewEncrypted(context.Background(), NewMemory(), "test-passphrase")
	if err != nil {
		t.Fatalf("new encrypted: %v", err)
	}
	exerciseStore(t, enc)
}

func TestEncryptedValuesAreOpaque(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	enc, err := NewEncrypted(ctx, inner, "pw")
	if err != nil {
		t.Fatalf("new encrypted: %v", err)
	}

	if err := enc.SetRaw(ctx, "petcare:pets", `[{"name":"Max"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, _, _ := inner.GetRaw(ctx, "petcare:pets")
	if strings.Contains(raw, "Max") {
		t.Error("inner store should not contain plaintext")
	}

	got, ok, err := enc.GetRaw(ctx, "petcare:pets")
	if err != nil || !ok || got != `[{"name":"Max"}]` {
		t.Errorf("round trip: got=%q ok=%v err=%v", got, ok, err)
	}
}

func TestEncryptedReopenWithSamePassphrase(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()

	enc1, _ := NewEncrypted(ctx, inner, "correct")
	if err := enc1.SetRaw(ctx, "k", "secret"); err != nil {
		t.Fatalf("set: %v", err)
	}

	enc2, err := NewEncrypted(ctx, inner, "correct")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, _, err := enc2.GetRaw(ctx, "k"); err != nil || v != "secret" {
		t.Errorf("reopened read: v=%q err=%v", v, err)
	}
}

func TestEncryptedWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()

	enc, _ := NewEncrypted(ctx, inner, "correct")
	enc.SetRaw(ctx, "k", "secret")

	wrong, err := NewEncrypted(ctx, inner, "wrong")
	if err != nil {
		t.Fatalf("new encrypted: %v", err)
	}
	_, _, err = wrong.GetRaw(ctx, "k")
	if !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt, got %v", err)
	}
}

func TestEncryptedSwappedKeyFails(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	enc, _ := NewEncrypted(ctx, inner, "pw")

	enc.SetRaw(ctx, "a", "value-a")
	raw, _, _ := inner.GetRaw(ctx, "a")
	inner.SetRaw(ctx, "b", raw)

	if _, _, err := enc.GetRaw(ctx, "b"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for swapped value, got %v", err)
	}
}

func TestEncryptedHidesSaltKey(t *testing.T) {
	ctx := context.Background()
	enc, _ := NewEncrypted(ctx, NewMemory(), "pw")
	enc.SetRaw(ctx, "petcare:pets", "[]")

	keys, err := enc.Keys(ctx, "petcare:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "petcare:pets" {
		t.Errorf("keys = %v, want [petcare:pets]", keys)
	}
}
