// Package cryptox implements the symmetric encryption used for vault
// asset payloads. Keys are generated per asset and never persisted
// server-side; the exported form is shown to the owner exactly once.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// KeySize selects AES-256.
	KeySize = 32

	nonceSize = 12
)

// ErrDecryption indicates the key is wrong, the IV is malformed, or the
// ciphertext failed authentication. No plaintext is ever returned alongside it.
var ErrDecryption = errors.New("decryption failed")

// GenerateKey returns a fresh 256-bit key from the OS entropy source.
// Every asset gets its own key; keys are never reused across assets or users.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// Encrypt serializes v to JSON and seals it with AES-256-GCM under a fresh
// random 12-byte nonce. The nonce is returned separately as the IV; reusing
// a nonce with the same key is a correctness violation, hence one per call.
func Encrypt(v any, key []byte) (ciphertext, iv []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal plaintext: %w", err)
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	iv = make([]byte, nonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}

	return aead.Seal(nil, iv, plaintext, nil), iv, nil
}

// Decrypt opens an AES-256-GCM sealed payload and unmarshals the JSON
// plaintext into v. Any authentication or key failure yields ErrDecryption;
// partial or garbage plaintext is never surfaced.
func Decrypt(ciphertext, iv, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}
	if len(iv) != aead.NonceSize() {
		return ErrDecryption
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return ErrDecryption
	}

	return json.Unmarshal(plaintext, v)
}

// ExportKey renders a key in the portable form shown to the owner. The
// server keeps no copy.
func ExportKey(key []byte) string {
	return base64.RawURLEncoding.EncodeToString(key)
}

// ImportKey parses a key previously produced by ExportKey.
func ImportKey(s string) ([]byte, error) {
	key, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("malformed key: expected %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aead, nil
}
