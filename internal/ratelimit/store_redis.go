package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockoutKeyPrefix = "docproof:lockout:"

// RedisCounterStore shares failure counters across instances. Keys expire
// with the lockout window so recovery needs no sweeper.
type RedisCounterStore struct {
	client redis.Cmdable
}

func NewRedisCounterStore(client redis.Cmdable) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Increment(ctx context.Context, wallet string, window time.Duration) (int64, error) {
	key := lockoutKeyPrefix + wallet
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment lockout counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("set lockout window: %w", err)
		}
	}
	return count, nil
}

func (s *RedisCounterStore) Count(ctx context.Context, wallet string) (int64, error) {
	count, err := s.client.Get(ctx, lockoutKeyPrefix+wallet).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("read lockout counter: %w", err)
	}
	return count, nil
}

func (s *RedisCounterStore) Delete(ctx context.Context, wallet string) error {
	if err := s.client.Del(ctx, lockoutKeyPrefix+wallet).Err(); err != nil {
		return fmt.Errorf("clear lockout counter: %w", err)
	}
	return nil
}
