package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"taskhive/internal/auth/models"
	"taskhive/internal/sentinel"
)

const (
	accountKeyPrefix = "user:"
	emailKeyPrefix   = "user_email:"
)

// RedisStore keeps accounts as JSON values under user:{id}, with a
// user_email:{email} index for login lookups. Accounts have no TTL.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, account *models.Account) error {
	payload, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accountKeyPrefix+account.ID.String(), payload, 0)
	pipe.Set(ctx, emailKeyPrefix+normalizeEmail(account.Email), account.ID.String(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	payload, err := s.client.Get(ctx, accountKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(payload, &account); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &account, nil
}

func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	idStr, err := s.client.Get(ctx, emailKeyPrefix+normalizeEmail(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read email index: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt email index for %q: %w", email, err)
	}
	return s.FindByID(ctx, id)
}

func (s *RedisStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return s.update(ctx, id, func(account *models.Account) {
		account.PasswordHash = hash
	})
}

func (s *RedisStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(ctx, id, func(account *models.Account) {
		account.LastLoginAt = &at
	})
}

// update is read-modify-write without a watch. Concurrent updates to the
// same account resolve last-writer-wins, matching the memory store.
func (s *RedisStore) update(ctx context.Context, id uuid.UUID, mutate func(*models.Account)) error {
	account, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	mutate(account)

	payload, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	if err := s.client.Set(ctx, accountKeyPrefix+id.String(), payload, 0).Err(); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}
