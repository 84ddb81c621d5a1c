package store

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/sakif/workshop/internal/model"
)

// Tools returns the tools matching q, most recently updated first.
func (s *Store) Tools(q model.Query) []model.Tool {
	out := make([]model.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Tag != "" && !model.HasTag(t.Tags, q.Tag) {
			continue
		}
		if !matches(q.Text, t.Name, t.OneLiner, t.Body, t.Link, strings.Join(t.Tags, " ")) {
			continue
		}
		out = append(out, t.Clone())
	}
	sortByRecent(out)
	return out
}

// Themes returns the themes matching q, most recently updated first.
func (s *Store) Themes(q model.Query) []model.Theme {
	out := make([]model.Theme, 0, len(s.themes))
	for _, th := range s.themes {
		if q.Tag != "" && !model.HasTag(th.Tags, q.Tag) {
			continue
		}
		if !matches(q.Text, th.Title, th.Desc, strings.Join(th.Tags, " ")) {
			continue
		}
		out = append(out, th.Clone())
	}
	sortByRecent(out)
	return out
}

// Vault returns the vault entries matching q, most recently updated first.
func (s *Store) Vault(q model.Query) []model.VaultEntry {
	out := make([]model.VaultEntry, 0, len(s.vault))
	for _, v := range s.vault {
		if !matches(q.Text, v.Title, v.URL, v.Note, v.ThemeName) {
			continue
		}
		out = append(out, v)
	}
	sortByRecent(out)
	return out
}

// UI returns a copy of the UI state.
func (s *Store) UI() model.UIState {
	return maps.Clone(s.ui)
}

// SetUI merges values over the UI state, key by key.
func (s *Store) SetUI(values model.UIState) {
	maps.Copy(s.ui, values)
}

// Notes returns the free-text workshop notes.
func (s *Store) Notes() string {
	notes, _ := s.ui[model.NotesKey].(string)
	return notes
}

// SetNotes replaces the workshop notes.
func (s *Store) SetNotes(text string) {
	s.ui[model.NotesKey] = text
}

func matches(text string, fields ...string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), text) {
			return true
		}
	}
	return false
}

func sortByRecent[T model.Entity](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := b.Stamp().Compare(a.Stamp()); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityID(), b.EntityID())
	})
}
