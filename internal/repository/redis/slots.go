// Package redis implements repository.SlotRepository on a Redis server.
//
// Each slot is a plain string key under a configurable prefix, so several
// workshops can share one Redis database.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/workshop/internal/repository"
)

// DefaultPrefix is prepended to every slot key.
const DefaultPrefix = "workshop:"

// Store keeps slots in Redis.
type Store struct {
	client *redis.Client
	prefix string
}

var _ repository.SlotRepository = (*Store)(nil)

// NewStore wraps a connected client. An empty prefix selects DefaultPrefix.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Key returns the Redis key for a slot.
func (s *Store) Key(slot string) string {
	return s.prefix + slot
}

// Get returns the value stored under slot.
func (s *Store) Get(ctx context.Context, slot string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.Key(slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis: getting slot %s: %w", slot, err)
	}
	return value, true, nil
}

// Put writes every slot in a single MULTI/EXEC transaction.
func (s *Store) Put(ctx context.Context, slots map[string]string) error {
	if len(slots) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for slot, value := range slots {
			pipe.Set(ctx, s.Key(slot), value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: writing slots: %w", err)
	}
	return nil
}

// Delete removes the named slots.
func (s *Store) Delete(ctx context.Context, slots ...string) error {
	if len(slots) == 0 {
		return nil
	}
	keys := make([]string, len(slots))
	for i, slot := range slots {
		keys[i] = s.Key(slot)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: deleting slots: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
