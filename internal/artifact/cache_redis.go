package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const linkKeyPrefix = "docproof:artifact-link:"

// LinkCache memoizes minted access links so repeated views of the same file
// within the link's lifetime do not hit the gateway again.
type LinkCache interface {
	Get(ctx context.Context, cid string) (string, bool, error)
	Set(ctx context.Context, cid, url string, ttl time.Duration) error
}

// RedisLinkCache shares the link cache across instances.
type RedisLinkCache struct {
	client redis.Cmdable
}

func NewRedisLinkCache(client redis.Cmdable) *RedisLinkCache {
	return &RedisLinkCache{client: client}
}

func (c *RedisLinkCache) Get(ctx context.Context, cid string) (string, bool, error) {
	url, err := c.client.Get(ctx, linkKeyPrefix+cid).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read link cache: %w", err)
	}
	return url, true, nil
}

func (c *RedisLinkCache) Set(ctx context.Context, cid, url string, ttl time.Duration) error {
	if err := c.client.Set(ctx, linkKeyPrefix+cid, url, ttl).Err(); err != nil {
		return fmt.Errorf("write link cache: %w", err)
	}
	return nil
}
