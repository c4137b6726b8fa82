package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps request timestamps in a sorted set scored by unix nanos.
// Add, purge, count, and expiry refresh run in one pipeline per check.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) AddAndCount(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	nowNanos := now.UnixNano()
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	// Member must be unique per request, or two requests in the same
	// nanosecond would collapse into one set entry and undercount.
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(nowNanos),
		Member: fmt.Sprintf("%d-%s", nowNanos, uuid.NewString()),
	})
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit window update: %w", err)
	}

	return card.Val(), nil
}
