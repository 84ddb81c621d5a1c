// Package store implements the in-memory entity store: the single owner of
// the tool, theme and vault collections.
//
// The store enforces the referential rules between themes and tools:
// deleting a tool removes it from every theme sequence, while other
// dangling ids are tolerated. Every public method is atomic with respect to
// the store, but the store is not safe for concurrent use; the owning
// service serializes access and persists after each successful mutation.
//
// WHY SLICES AND NOT MAPS?
// Collections are kept as slices because insertion order is part of the
// state: it is what a merge preserves and what a backup round-trips. Lookup
// by id is a linear scan, which is fine for a personal library of a few
// hundred cards and keeps Snapshot a plain copy.
//
// CLOCK AND IDS:
// Both are injected (WithClock, WithIDGenerator) so tests can assert exact
// timestamps and ids. In production ids are random UUIDv4 strings and
// timestamps come from time.Now, clamped so updatedAt is never earlier than
// createdAt even when the system clock steps back.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/sakif/workshop/internal/model"
)

// Store holds the collections in insertion order.
type Store struct {
	tools  []model.Tool
	themes []model.Theme
	vault  []model.VaultEntry
	ui     model.UIState

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now. Tests use it for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Replace(model.NewSnapshot())
	return s
}

// FromSnapshot creates a store holding a copy of snap.
func FromSnapshot(snap model.Snapshot, opts ...Option) *Store {
	s := New(opts...)
	s.Replace(snap)
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	return model.Snapshot{
		Tools:  s.tools,
		Themes: s.themes,
		Vault:  s.vault,
		UI:     s.ui,
	}.Clone()
}

// Replace swaps the whole state for a copy of snap.
func (s *Store) Replace(snap model.Snapshot) {
	c := snap.Clone()
	s.tools, s.themes, s.vault, s.ui = c.Tools, c.Themes, c.Vault, c.UI
}

// Reset empties every collection and the UI state.
func (s *Store) Reset() {
	s.Replace(model.NewSnapshot())
}

// Counts returns the collection sizes.
func (s *Store) Counts() (tools, themes, vault int) {
	return len(s.tools), len(s.themes), len(s.vault)
}

// touch returns the timestamp for an update of an entity created at
// created, never earlier than created.
func (s *Store) touch(created time.Time) time.Time {
	now := s.now()
	if now.Before(created) {
		return created
	}
	return now
}

func indexByID[T model.Entity](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
