package session

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

const (
	KindMemory = "memory"
	KindRedis  = "redis"
	KindSQLite = "sqlite"
)

type Options struct {
	Kind          string
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store named by opts.Kind. Redis is pinged and SQLite migrated before
// returning; the closer releases the underlying connection.
func Open(ctx context.Context, opts Options) (Store, io.Closer, error) {
	switch opts.Kind {
	case "", KindMemory:
		return NewMemoryStore(), nopCloser{}, nil

	case KindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisStore(client), client, nil

	case KindSQLite:
		store, err := NewSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := store.RunMigrations(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", opts.Kind)
	}
}
