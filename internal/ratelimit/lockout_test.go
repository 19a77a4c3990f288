package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

func TestLockoutThreshold(t *testing.T) {
	lockout := NewAuthLockout(NewInMemoryCounterStore(), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := lockout.Allow(ctx, wallet)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
		require.NoError(t, lockout.RecordFailure(ctx, wallet))
	}

	allowed, err := lockout.Allow(ctx, wallet)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other wallets are unaffected.
	allowed, err = lockout.Allow(ctx, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLockoutResetClearsCounter(t *testing.T) {
	lockout := NewAuthLockout(NewInMemoryCounterStore(), 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, lockout.RecordFailure(ctx, wallet))
	allowed, err := lockout.Allow(ctx, wallet)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, lockout.Reset(ctx, wallet))
	allowed, err = lockout.Allow(ctx, wallet)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLockoutWindowExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryCounterStore().WithClock(func() time.Time { return now })
	lockout := NewAuthLockout(store, 1, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, lockout.RecordFailure(ctx, wallet))
	allowed, err := lockout.Allow(ctx, wallet)
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(11 * time.Minute)
	allowed, err = lockout.Allow(ctx, wallet)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowStartsAtFirstFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryCounterStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := store.Increment(ctx, wallet, 10*time.Minute)
	require.NoError(t, err)

	// Later failures do not extend the window.
	now = now.Add(9 * time.Minute)
	_, err = store.Increment(ctx, wallet, 10*time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	count, err := store.Count(ctx, wallet)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
