package model

// ToolInput holds the user-supplied fields for a new tool.
type ToolInput struct {
	Name     string   `json:"name"`
	OneLiner string   `json:"oneLiner"`
	Body     string   `json:"body"`
	Link     string   `json:"link"` // empty or an http(s) URL
	Tags     []string `json:"tags"`
	Status   Status   `json:"status"` // empty means draft
}

// ToolPatch is a partial update. Nil fields are left unchanged.
type ToolPatch struct {
	Name     *string   `json:"name,omitempty"`
	OneLiner *string   `json:"oneLiner,omitempty"`
	Body     *string   `json:"body,omitempty"`
	Link     *string   `json:"link,omitempty"` // "" clears the link
	Tags     *[]string `json:"tags,omitempty"`
	Status   *Status   `json:"status,omitempty"`
}

type ThemeInput struct {
	Title    string   `json:"title"`
	Desc     string   `json:"desc"`
	Tags     []string `json:"tags"`
	Sequence []string `json:"sequence"`
}

// ThemePatch is a partial update. The sequence is edited through
// sequence operations, not patches.
type ThemePatch struct {
	Title *string   `json:"title,omitempty"`
	Desc  *string   `json:"desc,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

type VaultInput struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Note    string `json:"note"`
	ThemeID string `json:"themeId"`
}

type VaultPatch struct {
	Title *string `json:"title,omitempty"`
	URL   *string `json:"url,omitempty"`
	Note  *string `json:"note,omitempty"`
}

// Query filters and orders a collection for display.
type Query struct {
	Text   string // case-insensitive substring across the searchable fields
	Tag    string // exact tag match, case-insensitive
	Status Status // tools only; empty means any
}

// Ptr returns a pointer to v. It keeps patch literals short:
//
//	model.ToolPatch{Name: model.Ptr("Breathe")}
func Ptr[T any](v T) *T {
	return &v
}
