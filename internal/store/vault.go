package store

import (
	"regexp"
	"slices"
	"strings"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

var httpURL = regexp.MustCompile(`(?i)^https?://`)

// ValidURL reports whether url is an http(s) URL, as required of vault
// entries and tool links.
func ValidURL(url string) bool {
	return httpURL.MatchString(url)
}

// CreateVaultEntry records a published artifact. If ThemeID resolves, the
// theme's current title is captured as ThemeName.
func (s *Store) CreateVaultEntry(in model.VaultInput) (model.VaultEntry, error) {
	url := strings.TrimSpace(in.URL)
	if !ValidURL(url) {
		return model.VaultEntry{}, apperror.InvalidURL(url)
	}

	now := s.now()
	entry := model.VaultEntry{
		ID:        s.newID(),
		Title:     strings.TrimSpace(in.Title),
		URL:       url,
		Note:      strings.TrimSpace(in.Note),
		ThemeID:   strings.TrimSpace(in.ThemeID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if entry.ThemeID != "" {
		if theme, ok := s.Theme(entry.ThemeID); ok {
			entry.ThemeName = theme.Title
		}
	}

	s.vault = append(s.vault, entry)
	return entry, nil
}

// VaultEntry returns the entry with the given id.
func (s *Store) VaultEntry(id string) (model.VaultEntry, bool) {
	i := indexByID(s.vault, id)
	if i < 0 {
		return model.VaultEntry{}, false
	}
	return s.vault[i], true
}

// UpdateVaultEntry applies patch. A patched URL is validated like on create.
func (s *Store) UpdateVaultEntry(id string, patch model.VaultPatch) (model.VaultEntry, error) {
	i := indexByID(s.vault, id)
	if i < 0 {
		return model.VaultEntry{}, apperror.NotFound("vault entry", id)
	}

	entry := s.vault[i]
	if patch.URL != nil {
		url := strings.TrimSpace(*patch.URL)
		if !ValidURL(url) {
			return model.VaultEntry{}, apperror.InvalidURL(url)
		}
		entry.URL = url
	}
	if patch.Title != nil {
		entry.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Note != nil {
		entry.Note = strings.TrimSpace(*patch.Note)
	}
	entry.UpdatedAt = s.touch(entry.CreatedAt)

	s.vault[i] = entry
	return entry, nil
}

// DeleteVaultEntry removes an entry; an absent id is a no-op.
func (s *Store) DeleteVaultEntry(id string) bool {
	i := indexByID(s.vault, id)
	if i < 0 {
		return false
	}
	s.vault = slices.Delete(s.vault, i, i+1)
	return true
}
