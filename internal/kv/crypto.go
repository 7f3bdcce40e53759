package kv

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
	argonTime = 3
	argonMem  = 64 * 1024
	argonPar  = 4
)

// saltKey holds the per-store Argon2id salt in the clear.
const saltKey = "petcare:meta:salt"

// ErrDecrypt is returned when a stored value fails authentication.
var ErrDecrypt = errors.New("decrypt value")

// GenerateSalt returns 16 cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 32-byte AES-256 key from a passphrase and salt using Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMem, argonPar, keySize)
}

// Encrypted wraps a Store and seals every value with AES-256-GCM.
// Values are stored as base64([12-byte nonce][ciphertext]); the key name is
// bound as additional data so values cannot be swapped between keys.
type Encrypted struct {
	inner Store
	gcm   cipher.AEAD
}

// NewEncrypted derives the key from passphrase, creating and persisting a
// salt in inner on first use.
func NewEncrypted(ctx context.Context, inner Store, passphrase string) (*Encrypted, error) {
	salt, err := loadSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &Encrypted{inner: inner, gcm: gcm}, nil
}

func loadSalt(ctx context.Context, inner Store) ([]byte, error) {
	raw, ok, err := inner.GetRaw(ctx, saltKey)
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	if ok {
		salt, err := base64.StdEncoding.DecodeString(raw)
		if err != nil || len(salt) != saltSize {
			return nil, fmt.Errorf("stored salt is malformed")
		}
		return salt, nil
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := inner.SetRaw(ctx, saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("write salt: %w", err)
	}
	return salt, nil
}

func (e *Encrypted) GetRaw(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := e.inner.GetRaw(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) < nonceSize {
		return "", false, fmt.Errorf("%w %q: malformed envelope", ErrDecrypt, key)
	}

	plaintext, err := e.gcm.Open(nil, data[:nonceSize], data[nonceSize:], []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("%w %q: %v", ErrDecrypt, key, err)
	}
	return string(plaintext), true, nil
}

func (e *Encrypted) SetRaw(ctx context.Context, key, value string) error {
	sealed, err := e.seal(key, value)
	if err != nil {
		return err
	}
	return e.inner.SetRaw(ctx, key, sealed)
}

// SetMany seals every value and forwards the batch when the inner store
// supports atomic batches, falling back to sequential writes otherwise.
func (e *Encrypted) SetMany(ctx context.Context, values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for k, v := range values {
		s, err := e.seal(k, v)
		if err != nil {
			return err
		}
		sealed[k] = s
	}
	if b, ok := e.inner.(Batcher); ok {
		return b.SetMany(ctx, sealed)
	}
	for k, v := range sealed {
		if err := e.inner.SetRaw(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encrypted) seal(key, value string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.gcm.Seal(nonce, nonce, []byte(value), []byte(key))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}

func (e *Encrypted) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := e.inner.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if k != saltKey {
			out = append(out, k)
		}
	}
	return out, nil
}
