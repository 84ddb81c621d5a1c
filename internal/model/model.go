// Package model defines the entities of the workshop: tool cards, themes that
// sequence them, vault entries for published artifacts, and the Snapshot that
// bundles them for persistence and backup.
//
// The `json:"..."` tags define both the storage encoding and the backup file
// format, so renaming a tag is a schema change. Fields are never omitempty:
// a merge treats a missing field as "keep the local value", so an empty
// field must still be written out to be imported as empty.
package model

import (
	"maps"
	"slices"
	"time"
)

// Status is the lifecycle state of a tool card.
type Status string

const (
	StatusDraft Status = "draft"
	StatusReady Status = "ready"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusReady
}

// Tool is a reusable text card.
type Tool struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OneLiner  string    `json:"oneLiner"`
	Body      string    `json:"body"`
	Link      string    `json:"link"` // optional http(s) reference
	Tags      []string  `json:"tags"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Theme is an ordered composition of tools. Sequence holds tool ids; it may
// contain duplicates and ids that no longer resolve to a tool.
type Theme struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Desc      string    `json:"desc"`
	Tags      []string  `json:"tags"`
	Sequence  []string  `json:"sequence"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VaultEntry records an externally hosted artifact. ThemeID and ThemeName are
// captured when the entry is created and never follow later theme changes.
type VaultEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Note      string    `json:"note"`
	ThemeID   string    `json:"themeId"`
	ThemeName string    `json:"themeName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UIState holds flat session preferences (search boxes, active tab, notes).
type UIState map[string]any

// NotesKey is the UI key holding the free-text workshop notes.
const NotesKey = "notes"

// Snapshot is a complete serialisable copy of the store.
type Snapshot struct {
	Tools  []Tool       `json:"tools"`
	Themes []Theme      `json:"themes"`
	Vault  []VaultEntry `json:"vault"`
	UI     UIState      `json:"ui"`
}

// NewSnapshot returns an empty snapshot with non-nil collections, so it
// encodes as arrays rather than null.
func NewSnapshot() Snapshot {
	return Snapshot{
		Tools:  []Tool{},
		Themes: []Theme{},
		Vault:  []VaultEntry{},
		UI:     UIState{},
	}
}

// Entity is implemented by every collection element. The merge engine uses
// it to reconcile collections generically.
type Entity interface {
	EntityID() string
	// Stamp is the last-modified time: UpdatedAt, or CreatedAt when
	// UpdatedAt was never set.
	Stamp() time.Time
}

func (t Tool) EntityID() string       { return t.ID }
func (t Tool) Stamp() time.Time       { return stamp(t.CreatedAt, t.UpdatedAt) }
func (t Theme) EntityID() string      { return t.ID }
func (t Theme) Stamp() time.Time      { return stamp(t.CreatedAt, t.UpdatedAt) }
func (v VaultEntry) EntityID() string { return v.ID }
func (v VaultEntry) Stamp() time.Time { return stamp(v.CreatedAt, v.UpdatedAt) }

func stamp(created, updated time.Time) time.Time {
	if updated.IsZero() {
		return created
	}
	return updated
}

// Clone returns a copy that shares no slices with t.
func (t Tool) Clone() Tool {
	t.Tags = slices.Clone(t.Tags)
	return t
}

// Clone returns a copy that shares no slices with t.
func (t Theme) Clone() Theme {
	t.Tags = slices.Clone(t.Tags)
	t.Sequence = slices.Clone(t.Sequence)
	return t
}

// Clone returns a deep copy of the snapshot. Collections are never nil in
// the result.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tools:  make([]Tool, 0, len(s.Tools)),
		Themes: make([]Theme, 0, len(s.Themes)),
		Vault:  slices.Clone(s.Vault),
		UI:     maps.Clone(s.UI),
	}
	for _, t := range s.Tools {
		out.Tools = append(out.Tools, t.Clone())
	}
	for _, th := range s.Themes {
		out.Themes = append(out.Themes, th.Clone())
	}
	if out.Vault == nil {
		out.Vault = []VaultEntry{}
	}
	if out.UI == nil {
		out.UI = UIState{}
	}
	return out
}
