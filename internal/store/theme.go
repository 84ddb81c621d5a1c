package store

import (
	"slices"
	"strings"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

// CreateTheme inserts a new theme. The initial sequence is taken as given:
// ids are not checked against the tool collection.
func (s *Store) CreateTheme(in model.ThemeInput) (model.Theme, error) {
	seq := make([]string, 0, len(in.Sequence))
	for _, id := range in.Sequence {
		if id = strings.TrimSpace(id); id != "" {
			seq = append(seq, id)
		}
	}

	now := s.now()
	theme := model.Theme{
		ID:        s.newID(),
		Title:     strings.TrimSpace(in.Title),
		Desc:      strings.TrimSpace(in.Desc),
		Tags:      model.NormalizeTags(in.Tags),
		Sequence:  seq,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.themes = append(s.themes, theme)
	return theme.Clone(), nil
}

// Theme returns the theme with the given id.
func (s *Store) Theme(id string) (model.Theme, bool) {
	i := indexByID(s.themes, id)
	if i < 0 {
		return model.Theme{}, false
	}
	return s.themes[i].Clone(), true
}

// UpdateTheme applies patch to an existing theme and refreshes UpdatedAt.
func (s *Store) UpdateTheme(id string, patch model.ThemePatch) (model.Theme, error) {
	i := indexByID(s.themes, id)
	if i < 0 {
		return model.Theme{}, apperror.NotFound("theme", id)
	}

	theme := s.themes[i].Clone()
	if patch.Title != nil {
		theme.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Desc != nil {
		theme.Desc = strings.TrimSpace(*patch.Desc)
	}
	if patch.Tags != nil {
		theme.Tags = model.NormalizeTags(*patch.Tags)
	}
	theme.UpdatedAt = s.touch(theme.CreatedAt)

	s.themes[i] = theme
	return theme.Clone(), nil
}

// DeleteTheme removes only the theme; tools are unaffected.
func (s *Store) DeleteTheme(id string) bool {
	i := indexByID(s.themes, id)
	if i < 0 {
		return false
	}
	s.themes = slices.Delete(s.themes, i, i+1)
	return true
}

// ReorderThemeSequence applies op to a theme's sequence. Operations that
// leave the sequence unchanged (a boundary MoveAdjacent, MoveTo(i, i)) do
// not bump UpdatedAt.
func (s *Store) ReorderThemeSequence(themeID string, op SequenceOp) (model.Theme, error) {
	i := indexByID(s.themes, themeID)
	if i < 0 {
		return model.Theme{}, apperror.NotFound("theme", themeID)
	}
	if op.Kind == OpInsertAtEnd && indexByID(s.tools, op.ToolID) < 0 {
		return model.Theme{}, apperror.NotFound("tool", op.ToolID)
	}

	theme := s.themes[i].Clone()
	seq, err := op.Apply(theme.Sequence)
	if err != nil {
		return model.Theme{}, err
	}
	if slices.Equal(seq, theme.Sequence) && op.Kind != OpInsertAtEnd {
		return theme, nil
	}

	theme.Sequence = seq
	theme.UpdatedAt = s.touch(theme.CreatedAt)
	s.themes[i] = theme
	return theme.Clone(), nil
}

// ThemeTools resolves a theme's sequence position by position. A nil entry
// marks a dangling reference.
func (s *Store) ThemeTools(theme model.Theme) []*model.Tool {
	out := make([]*model.Tool, len(theme.Sequence))
	for pos, id := range theme.Sequence {
		if tool, ok := s.Tool(id); ok {
			out[pos] = &tool
		}
	}
	return out
}
