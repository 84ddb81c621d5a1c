package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/sakif/workshop/internal/repository"
)

var _ repository.SlotRepository = (*DB)(nil)

// Get returns the value stored under key.
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE key = ?`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: getting slot %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts every slot inside one transaction.
//
// Keys are written in sorted order so two concurrent writers always take
// row locks in the same sequence.
func (db *DB) Put(ctx context.Context, slots map[string]string) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback after Commit is a no-op, so this is safe on every path.
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return fmt.Errorf("sqlite: preparing slot upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, key := range slices.Sorted(maps.Keys(slots)) {
		if _, err := stmt.ExecContext(ctx, key, slots[key], now); err != nil {
			return fmt.Errorf("sqlite: writing slot %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing slots: %w", err)
	}
	return nil
}

// Delete removes the named slots in one transaction.
func (db *DB) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
			return fmt.Errorf("sqlite: deleting slot %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete: %w", err)
	}
	return nil
}
