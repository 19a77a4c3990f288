// Package ratelimit throttles failed wallet authentications. A nonce is only
// rotated on success, so without a lockout an attacker could grind signatures
// against one challenge window; the counter closes that gap.
package ratelimit

import (
	"context"
	"time"
)

// CounterStore tracks failure counts per wallet with expiry.
type CounterStore interface {
	// Increment adds one failure and returns the new count. The window TTL
	// starts with the first failure.
	Increment(ctx context.Context, wallet string, window time.Duration) (int64, error)
	Count(ctx context.Context, wallet string) (int64, error)
	Delete(ctx context.Context, wallet string) error
}

// AuthLockout rejects further authentication attempts for a wallet once its
// failure count within the window reaches the threshold.
type AuthLockout struct {
	store     CounterStore
	threshold int64
	window    time.Duration
}

func NewAuthLockout(store CounterStore, threshold int, window time.Duration) *AuthLockout {
	return &AuthLockout{
		store:     store,
		threshold: int64(threshold),
		window:    window,
	}
}

// Allow reports whether the wallet may attempt authentication.
func (l *AuthLockout) Allow(ctx context.Context, wallet string) (bool, error) {
	count, err := l.store.Count(ctx, wallet)
	if err != nil {
		return false, err
	}
	return count < l.threshold, nil
}

// RecordFailure counts one failed attempt.
func (l *AuthLockout) RecordFailure(ctx context.Context, wallet string) error {
	_, err := l.store.Increment(ctx, wallet, l.window)
	return err
}

// Reset clears the counter after a successful authentication.
func (l *AuthLockout) Reset(ctx context.Context, wallet string) error {
	return l.store.Delete(ctx, wallet)
}
