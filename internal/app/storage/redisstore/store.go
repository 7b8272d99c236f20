// Package redisstore keeps the todo list in a Redis list.
package redisstore

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/R3E-Network/fatesheet/internal/app/storage"
)

// Store appends todos to a single Redis list. Like the in-memory store it
// hands out identifiers without persisting them.
type Store struct {
	client redis.UniversalClient
	key    string
}

var _ storage.TodoStore = (*Store)(nil)

// Options configures a connection created by Open.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return New(client, opts.Key), nil
}

// New wraps an existing client. key defaults to "fatesheet:todos".
func New(client redis.UniversalClient, key string) *Store {
	if key == "" {
		key = "fatesheet:todos"
	}
	return &Store{client: client, key: key}
}

func (s *Store) Append(ctx context.Context, item string) (uuid.UUID, error) {
	if err := s.client.RPush(ctx, s.key, item).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("append todo: %w", err)
	}
	return uuid.New(), nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
