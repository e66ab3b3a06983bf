// Package middleware provides StateStore decorators, such as at-rest
// encryption of session snapshots.
package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// ErrDecryptionFailed is returned when no configured key can open a stored
// envelope.
var ErrDecryptionFailed = errors.New("failed to decrypt session state")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionStore struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryption creates a middleware that stores session snapshots encrypted
// with AES-GCM. The wrapped store only ever sees opaque envelopes.
func NewEncryption(config EncryptionConfig) ports.StoreMiddleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionStore{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionStore) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	// The carrier snapshot hides the real position; only UpdatedAt leaks for
	// monitoring.
	carrier := &domain.SessionState{
		CurrentNode: encodeEnvelope(ciphertext),
		UpdatedAt:   state.UpdatedAt,
	}

	return m.next.Save(ctx, sessionID, carrier)
}

func (m *encryptionStore) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	carrier, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ciphertext, err := decodeEnvelope(carrier.CurrentNode)
	if err != nil {
		return nil, fmt.Errorf("corrupt session envelope: %w", err)
	}

	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	for _, key := range keys {
		plain, err := decrypt(ciphertext, key)
		if err != nil {
			continue
		}
		var state domain.SessionState
		if err := json.Unmarshal(plain, &state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
		}
		return &state, nil
	}

	return nil, ErrDecryptionFailed
}

func (m *encryptionStore) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionStore) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

const envelopePrefix = "enc:"

func encodeEnvelope(ciphertext []byte) string {
	return envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
}

func decodeEnvelope(s string) ([]byte, error) {
	if !strings.HasPrefix(s, envelopePrefix) {
		return nil, errors.New("missing envelope prefix")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(s, envelopePrefix))
}

func encrypt(plain, key []byte) ([]byte, error) {
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
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
