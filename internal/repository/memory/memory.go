// Package memory implements repository.SlotRepository in process memory.
// Nothing survives a restart; it backs WORKSHOP_STORAGE=memory and tests
// that need a working service without a database.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/sakif/workshop/internal/repository"
)

// Store is a map guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	slots map[string]string
}

var _ repository.SlotRepository = (*Store)(nil)

func New() *Store {
	return &Store{slots: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *Store) Put(ctx context.Context, slots map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.slots, slots)
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.slots, k)
	}
	return nil
}

// Len returns the number of stored slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
