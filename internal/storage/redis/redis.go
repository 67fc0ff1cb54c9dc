// Package redis implements storage.Store on top of a Redis server, for
// deployments where several front-ends share one device profile.
package redis

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/swift-grocers/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps values as plain strings under prefix+key. Values never
// expire: the slot is the source of truth, not a cache.
type Store struct {
	client *redis.Client
	prefix string
}

// New returns a Store using client. prefix may be empty.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Unavailable(err, "redis get "+key)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return storage.Unavailable(err, "redis set "+key)
	}
	return nil
}

// Ping reports whether the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storage.Unavailable(err, "redis ping")
	}
	return nil
}
