package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLocker(client)
	l.retryWait = 5 * time.Millisecond
	return l, mr
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := l.Acquire(ctx, "comp-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("aerotrace:scan-lock:comp-1"))

	unlock()
	assert.False(t, mr.Exists("aerotrace:scan-lock:comp-1"))
}

func TestRedisLockerBlocksSecondHolder(t *testing.T) {
	l, _ := newRedisLocker(t)

	unlock, err := l.Acquire(context.Background(), "comp-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "comp-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	unlock2, err := l.Acquire(context.Background(), "comp-1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerStaleHolderCannotRelease(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	staleUnlock, err := l.Acquire(ctx, "comp-1")
	require.NoError(t, err)

	// Simulate TTL expiry and re-acquisition by another holder.
	mr.FastForward(defaultLockTTL + time.Second)
	unlock, err := l.Acquire(ctx, "comp-1")
	require.NoError(t, err)

	// The stale holder's release must not delete the new holder's lock.
	staleUnlock()
	assert.True(t, mr.Exists("aerotrace:scan-lock:comp-1"))

	unlock()
	assert.False(t, mr.Exists("aerotrace:scan-lock:comp-1"))
}
