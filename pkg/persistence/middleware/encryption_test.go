package middleware

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryptionStoreContract(t *testing.T) {
	mw := NewEncryption(EncryptionConfig{ActiveKey: testKey(0x01)})
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionHidesNodeAtRest(t *testing.T) {
	inner := memory.NewStore()
	store := NewEncryption(EncryptionConfig{ActiveKey: testKey(0x01)})(inner)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSessionState("greeting")))

	carrier, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(carrier.CurrentNode, "enc:"))
	assert.NotContains(t, carrier.CurrentNode, "greeting")
	assert.False(t, carrier.Initialized, "the carrier leaks no position data")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "greeting", loaded.CurrentNode)
	assert.True(t, loaded.Initialized)
}

func TestEncryptionWrongKeyFails(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()

	writer := NewEncryption(EncryptionConfig{ActiveKey: testKey(0x01)})(inner)
	require.NoError(t, writer.Save(ctx, "s1", domain.NewSessionState("greeting")))

	reader := NewEncryption(EncryptionConfig{ActiveKey: testKey(0x02)})(inner)
	_, err := reader.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

// Key rotation: data written under the old key stays readable while the old
// key is kept as a fallback.
func TestEncryptionFallbackKeys(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()

	oldKey := testKey(0x01)
	newKey := testKey(0x02)

	writer := NewEncryption(EncryptionConfig{ActiveKey: oldKey})(inner)
	require.NoError(t, writer.Save(ctx, "s1", domain.NewSessionState("greeting")))

	rotated := NewEncryption(EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(inner)

	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "greeting", loaded.CurrentNode)
}

func TestEncryptionRejectsCorruptEnvelope(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()

	// A plaintext snapshot written behind the middleware's back.
	require.NoError(t, inner.Save(ctx, "s1", domain.NewSessionState("greeting")))

	store := NewEncryption(EncryptionConfig{ActiveKey: testKey(0x01)})(inner)
	_, err := store.Load(ctx, "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt session envelope")
}

func TestEncryptionPanicsOnShortKey(t *testing.T) {
	assert.Panics(t, func() {
		NewEncryption(EncryptionConfig{ActiveKey: []byte("too short")})
	})
}
