package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sess:"

// RedisStore is the production session store. Each value lives under
// sess:<session-id>:<key> with the configured TTL, so abandoned sessions
// clean themselves up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID, key string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, sessionID, key)
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session get: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	if err := s.client.Set(ctx, s.key(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Pop returns the value and removes it atomically (GETDEL), so two
// overlapping requests cannot both consume the same state.
func (s *RedisStore) Pop(ctx context.Context, sessionID, key string) (string, error) {
	val, err := s.client.GetDel(ctx, s.key(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session pop: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.Del(ctx, s.key(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
