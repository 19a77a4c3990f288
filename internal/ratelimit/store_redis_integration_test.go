//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"docproof/internal/ratelimit"
	"docproof/pkg/testutil/containers"
)

type RedisCounterSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisCounterStore
}

func TestRedisCounterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCounterSuite))
}

func (s *RedisCounterSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = ratelimit.NewRedisCounterStore(s.redis.Client)
}

func (s *RedisCounterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

const wallet = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

func (s *RedisCounterSuite) TestIncrementAndCount() {
	ctx := context.Background()

	count, err := s.store.Count(ctx, wallet)
	s.Require().NoError(err)
	s.EqualValues(0, count)

	for i := int64(1); i <= 3; i++ {
		count, err = s.store.Increment(ctx, wallet, time.Minute)
		s.Require().NoError(err)
		s.Equal(i, count)
	}

	count, err = s.store.Count(ctx, wallet)
	s.Require().NoError(err)
	s.EqualValues(3, count)
}

func (s *RedisCounterSuite) TestDelete() {
	ctx := context.Background()

	_, err := s.store.Increment(ctx, wallet, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Delete(ctx, wallet))

	count, err := s.store.Count(ctx, wallet)
	s.Require().NoError(err)
	s.EqualValues(0, count)
}

func (s *RedisCounterSuite) TestWindowExpiry() {
	ctx := context.Background()

	_, err := s.store.Increment(ctx, wallet, time.Second)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		count, err := s.store.Count(ctx, wallet)
		return err == nil && count == 0
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisCounterSuite) TestLockoutEndToEnd() {
	ctx := context.Background()
	lockout := ratelimit.NewAuthLockout(s.store, 2, time.Minute)

	allowed, err := lockout.Allow(ctx, wallet)
	s.Require().NoError(err)
	s.True(allowed)

	s.Require().NoError(lockout.RecordFailure(ctx, wallet))
	s.Require().NoError(lockout.RecordFailure(ctx, wallet))

	allowed, err = lockout.Allow(ctx, wallet)
	s.Require().NoError(err)
	s.False(allowed)

	s.Require().NoError(lockout.Reset(ctx, wallet))
	allowed, err = lockout.Allow(ctx, wallet)
	s.Require().NoError(err)
	s.True(allowed)
}
