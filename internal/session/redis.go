package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an abandoned session keeps its cart id.
const DefaultTTL = 30 * 24 * time.Hour

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    DefaultTTL,
	}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	cartID, err := r.client.Get(ctx, storeKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return cartID, nil
}

func (r RedisStore) Set(ctx context.Context, sessionID, cartID string) error {
	if err := r.client.Set(ctx, storeKey(sessionID), cartID, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, storeKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storeKey(sessionID string) string {
	return fmt.Sprintf("storefront:cart:%s", sessionID)
}
