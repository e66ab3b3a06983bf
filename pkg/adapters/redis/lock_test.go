package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLocker(client, "parley:")
}

func TestLockerAcquireAndRelease(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "session-1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	// While held, a second acquisition times out.
	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "session-1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	// Released, the lock can be re-acquired.
	unlock2, err := locker.Lock(ctx, "session-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLockerIndependentKeys(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "a", time.Minute)
	require.NoError(t, err)
	defer unlockA(ctx)

	unlockB, err := locker.Lock(ctx, "b", time.Minute)
	require.NoError(t, err)
	defer unlockB(ctx)
}
