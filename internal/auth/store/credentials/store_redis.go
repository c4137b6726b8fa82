package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskhive/internal/sentinel"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	resetTokenKeyPrefix   = "password_reset_token:"
	blacklistKey          = "token_blacklist"
)

// RedisStore persists server-side credential state: the refresh token issued
// to each account (kept purely so it can be invalidated server-side even
// though it is self-verifying), password-reset tokens, and the token
// blacklist set.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveRefreshToken(ctx context.Context, accountID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshTokenKeyPrefix+accountID, token, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) RefreshToken(ctx context.Context, accountID string) (string, error) {
	token, err := s.client.Get(ctx, refreshTokenKeyPrefix+accountID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) DeleteRefreshToken(ctx context.Context, accountID string) error {
	if err := s.client.Del(ctx, refreshTokenKeyPrefix+accountID).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveResetToken(ctx context.Context, accountID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetTokenKeyPrefix+accountID, token, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

func (s *RedisStore) ResetToken(ctx context.Context, accountID string) (string, error) {
	token, err := s.client.Get(ctx, resetTokenKeyPrefix+accountID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("read reset token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) DeleteResetToken(ctx context.Context, accountID string) error {
	if err := s.client.Del(ctx, resetTokenKeyPrefix+accountID).Err(); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

func (s *RedisStore) BlacklistToken(ctx context.Context, token string) error {
	if err := s.client.SAdd(ctx, blacklistKey, token).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (s *RedisStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	member, err := s.client.SIsMember(ctx, blacklistKey, token).Result()
	if err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}
	return member, nil
}
