// Package repository defines the durable storage contract the persistence
// layer is written against.
//
// The workshop state is stored as a handful of named slots, each holding a
// JSON document. Backends only move opaque strings; decoding and fallback
// policy live in internal/persistence.
package repository

import "context"

// SlotRepository stores named string slots.
type SlotRepository interface {
	// Get returns the slot value and whether the slot exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put writes every slot in slots atomically: either all are stored or
	// none are.
	Put(ctx context.Context, slots map[string]string) error

	// Delete removes the named slots. Missing slots are not an error.
	Delete(ctx context.Context, keys ...string) error
}
