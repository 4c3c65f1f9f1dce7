package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/sluice/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.BlobStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts payloads at rest
// using AES-GCM. It sits below the content-addressed layer: identifiers stay
// derived from the plaintext, only ciphertext reaches the backend, and the
// verifying read above sees the original payload again.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.BlobStore) ports.BlobStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Put(ctx context.Context, id string, data []byte) error {
	ciphertext, err := encrypt(data, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt payload: %w", err)
	}
	// The nonce is random, so rewriting the same plaintext stores different
	// bytes. The write stays logically idempotent: Get returns the same
	// payload either way.
	return m.next.Put(ctx, id, ciphertext)
}

func (m *encryptionMiddleware) Get(ctx context.Context, id string) ([]byte, error) {
	ciphertext, err := m.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Try the active key, then the fallbacks.
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload %s: %w", id, err)
	}
	return plain, nil
}

func (m *encryptionMiddleware) Has(ctx context.Context, id string) (bool, error) {
	return m.next.Has(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
