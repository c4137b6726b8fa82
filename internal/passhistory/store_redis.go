package passhistory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps password history as a Redis list. LPUSH/LTRIM/EXPIRE run in
// one pipeline so the bounded-list invariant holds under concurrent changes.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) PushTrim(ctx context.Context, key, hash string, depth int, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, hash)
	pipe.LTrim(ctx, key, 0, int64(depth-1))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push password history: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, key string, depth int) ([]string, error) {
	hashes, err := s.client.LRange(ctx, key, 0, int64(depth-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read password history: %w", err)
	}
	return hashes, nil
}
