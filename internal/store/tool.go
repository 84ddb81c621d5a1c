package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

const (
	// DefaultToolName replaces an empty name on create.
	DefaultToolName = "New Tool"
	copySuffix      = " (copy)"
)

// CreateTool inserts a new tool. Status defaults to draft; tags are
// normalized. Duplicate names are allowed.
func (s *Store) CreateTool(in model.ToolInput) (model.Tool, error) {
	status := in.Status
	if status == "" {
		status = model.StatusDraft
	}
	if !status.Valid() {
		return model.Tool{}, invalidStatus(status)
	}

	link, err := toolLink(in.Link)
	if err != nil {
		return model.Tool{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultToolName
	}

	now := s.now()
	tool := model.Tool{
		ID:        s.newID(),
		Name:      name,
		OneLiner:  strings.TrimSpace(in.OneLiner),
		Body:      in.Body,
		Link:      link,
		Tags:      model.NormalizeTags(in.Tags),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tools = append(s.tools, tool)
	return tool.Clone(), nil
}

// Tool returns the tool with the given id.
func (s *Store) Tool(id string) (model.Tool, bool) {
	i := indexByID(s.tools, id)
	if i < 0 {
		return model.Tool{}, false
	}
	return s.tools[i].Clone(), true
}

// UpdateTool applies patch to an existing tool and refreshes UpdatedAt.
func (s *Store) UpdateTool(id string, patch model.ToolPatch) (model.Tool, error) {
	i := indexByID(s.tools, id)
	if i < 0 {
		return model.Tool{}, apperror.NotFound("tool", id)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return model.Tool{}, invalidStatus(*patch.Status)
	}
	var link string
	if patch.Link != nil {
		var err error
		if link, err = toolLink(*patch.Link); err != nil {
			return model.Tool{}, err
		}
	}

	tool := s.tools[i].Clone()
	if patch.Name != nil {
		tool.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.OneLiner != nil {
		tool.OneLiner = strings.TrimSpace(*patch.OneLiner)
	}
	if patch.Body != nil {
		tool.Body = *patch.Body
	}
	if patch.Link != nil {
		tool.Link = link
	}
	if patch.Tags != nil {
		tool.Tags = model.NormalizeTags(*patch.Tags)
	}
	if patch.Status != nil {
		tool.Status = *patch.Status
	}
	tool.UpdatedAt = s.touch(tool.CreatedAt)

	s.tools[i] = tool
	return tool.Clone(), nil
}

// DeleteTool removes a tool and every occurrence of its id from every theme
// sequence, bumping UpdatedAt on the themes that changed. Deleting an absent
// id is a no-op; the result reports whether anything was removed.
func (s *Store) DeleteTool(id string) bool {
	i := indexByID(s.tools, id)
	if i < 0 {
		return false
	}
	s.tools = slices.Delete(s.tools, i, i+1)

	for j := range s.themes {
		th := &s.themes[j]
		if !slices.Contains(th.Sequence, id) {
			continue
		}
		th.Sequence = slices.DeleteFunc(slices.Clone(th.Sequence), func(ref string) bool {
			return ref == id
		})
		th.UpdatedAt = s.touch(th.CreatedAt)
	}
	return true
}

// DuplicateTool copies a tool under a new id with " (copy)" appended to its
// name. A missing source is a silent no-op.
func (s *Store) DuplicateTool(id string) (model.Tool, bool) {
	i := indexByID(s.tools, id)
	if i < 0 {
		return model.Tool{}, false
	}

	now := s.now()
	dup := s.tools[i].Clone()
	dup.ID = s.newID()
	dup.Name += copySuffix
	dup.CreatedAt = now
	dup.UpdatedAt = now

	s.tools = append(s.tools, dup)
	return dup.Clone(), true
}

// toolLink trims link and checks it. Unlike a vault URL, a tool link is
// optional, so the empty string is accepted.
func toolLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link != "" && !ValidURL(link) {
		err := apperror.InvalidURL(link)
		err.Field = "link"
		return "", err
	}
	return link, nil
}

func invalidStatus(status model.Status) *apperror.AppError {
	return apperror.ValidationFailed("status",
		fmt.Sprintf("status %q must be %q or %q", status, model.StatusDraft, model.StatusReady))
}
