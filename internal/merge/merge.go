// Package merge reconciles two independently edited snapshots, typically
// the local store and an imported backup.
//
// Two modes are offered. Overwrite takes the incoming snapshot as is. ByID
// unions the collections by entity id; when both sides hold the same id the
// entity with the newer timestamp wins and ties go to the incoming side.
// This is last-writer-wins by wall clock: enough for a single user moving
// between devices, and it never drops an entity that exists on either side.
package merge

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/sakif/workshop/internal/model"
)

// Mode selects how an import is reconciled with the current state.
type Mode string

const (
	ModeMerge     Mode = "merge"
	ModeOverwrite Mode = "overwrite"
)

// ParseMode reads a user-supplied mode. The empty string selects merge.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("unknown import mode %q (want %q or %q)", s, ModeMerge, ModeOverwrite)
}

// Stats counts what a reconciliation did to one collection.
type Stats struct {
	Inserted int `json:"inserted"` // ids only present in incoming
	Updated  int `json:"updated"`  // shared ids where incoming won
	Kept     int `json:"kept"`     // shared ids where current won
}

// Result is the reconciled snapshot plus per-collection statistics.
type Result struct {
	Snapshot model.Snapshot `json:"-"`
	Tools    Stats          `json:"tools"`
	Themes   Stats          `json:"themes"`
	Vault    Stats          `json:"vault"`
}

// Apply dispatches to Overwrite or ByID. present describes which fields
// each incoming element carried; nil treats every element as complete.
func Apply(mode Mode, current, incoming model.Snapshot, present model.Presence) Result {
	if mode == ModeOverwrite {
		return Overwrite(incoming)
	}
	return ByID(current, incoming, present)
}

// Overwrite replaces everything with incoming.
func Overwrite(incoming model.Snapshot) Result {
	snap := incoming.Clone()
	return Result{
		Snapshot: snap,
		Tools:    Stats{Inserted: len(snap.Tools)},
		Themes:   Stats{Inserted: len(snap.Themes)},
		Vault:    Stats{Inserted: len(snap.Vault)},
	}
}

// ByID merges incoming into current collection by collection. UI state is
// merged by flat key override, incoming winning.
func ByID(current, incoming model.Snapshot, present model.Presence) Result {
	cur, in := current.Clone(), incoming.Clone()

	var res Result
	res.Snapshot.Tools, res.Tools = Collection(cur.Tools, in.Tools, present[model.KeyTools], fillTool)
	res.Snapshot.Themes, res.Themes = Collection(cur.Themes, in.Themes, present[model.KeyThemes], fillTheme)
	res.Snapshot.Vault, res.Vault = Collection(cur.Vault, in.Vault, present[model.KeyVault], fillVault)

	res.Snapshot.UI = maps.Clone(cur.UI)
	if res.Snapshot.UI == nil {
		res.Snapshot.UI = model.UIState{}
	}
	maps.Copy(res.Snapshot.UI, in.UI)
	return res
}

// Collection merges two collections by id. The result keeps current's order
// and appends ids first seen in incoming, in incoming order.
//
// TIE-BREAK:
// For a shared id the entity with the greater-or-equal Stamp wins, so an
// exact tie goes to incoming. Importing the backup you just exported is then
// a no-op on content but still counts as "updated", which is what a user
// re-importing on purpose expects to see. Clocks on two devices are not
// synchronised; a skewed clock can make an older edit win. No conflict is
// ever reported.
//
// SHALLOW MERGE:
// When incoming wins it is laid over the loser field by field: fill copies
// the loser's value for every field the incoming element did not carry
// (present holds those field sets by id). A field carried with an empty
// value is an explicit edit and stays empty. When current wins nothing is
// filled, since store entities are always complete.
func Collection[T model.Entity](current, incoming []T, present map[string]model.FieldSet, fill func(winner *T, loser T, carried model.FieldSet)) ([]T, Stats) {
	var stats Stats
	out := make([]T, 0, len(current)+len(incoming))
	index := make(map[string]int, len(current)+len(incoming))

	for _, item := range current {
		index[item.EntityID()] = len(out)
		out = append(out, item)
	}

	for _, item := range incoming {
		i, ok := index[item.EntityID()]
		if !ok {
			index[item.EntityID()] = len(out)
			out = append(out, item)
			stats.Inserted++
			continue
		}

		old := out[i]
		if item.Stamp().Before(old.Stamp()) {
			stats.Kept++
			continue
		}
		if fill != nil {
			fill(&item, old, present[item.EntityID()])
		}
		out[i] = item
		stats.Updated++
	}
	return out, stats
}

// The fill functions list every JSON field of their entity. A field added to
// a model type must be added here too, or older backups will clear it.

func fillTool(w *model.Tool, l model.Tool, carried model.FieldSet) {
	if !carried.Has("name") {
		w.Name = l.Name
	}
	if !carried.Has("oneLiner") {
		w.OneLiner = l.OneLiner
	}
	if !carried.Has("body") {
		w.Body = l.Body
	}
	if !carried.Has("link") {
		w.Link = l.Link
	}
	if !carried.Has("tags") {
		w.Tags = slices.Clone(l.Tags)
	}
	if !carried.Has("status") {
		w.Status = l.Status
	}
	w.CreatedAt, w.UpdatedAt = fillTimes(w.CreatedAt, w.UpdatedAt, l.CreatedAt, carried)
}

func fillTheme(w *model.Theme, l model.Theme, carried model.FieldSet) {
	if !carried.Has("title") {
		w.Title = l.Title
	}
	if !carried.Has("desc") {
		w.Desc = l.Desc
	}
	if !carried.Has("tags") {
		w.Tags = slices.Clone(l.Tags)
	}
	if !carried.Has("sequence") {
		w.Sequence = slices.Clone(l.Sequence)
	}
	w.CreatedAt, w.UpdatedAt = fillTimes(w.CreatedAt, w.UpdatedAt, l.CreatedAt, carried)
}

func fillVault(w *model.VaultEntry, l model.VaultEntry, carried model.FieldSet) {
	if !carried.Has("title") {
		w.Title = l.Title
	}
	if !carried.Has("url") {
		w.URL = l.URL
	}
	if !carried.Has("note") {
		w.Note = l.Note
	}
	if !carried.Has("themeId") {
		w.ThemeID = l.ThemeID
	}
	if !carried.Has("themeName") {
		w.ThemeName = l.ThemeName
	}
	w.CreatedAt, w.UpdatedAt = fillTimes(w.CreatedAt, w.UpdatedAt, l.CreatedAt, carried)
}

// fillTimes inherits the loser's creation time when the winner has none and
// keeps updatedAt >= createdAt.
func fillTimes(created, updated, loserCreated time.Time, carried model.FieldSet) (time.Time, time.Time) {
	if !carried.Has("createdAt") || created.IsZero() {
		created = loserCreated
	}
	if updated.Before(created) {
		updated = created
	}
	return created, updated
}
