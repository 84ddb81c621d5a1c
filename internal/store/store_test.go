package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

// fakeClock advances one second on every call, so every mutation gets a
// distinct, ordered timestamp.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	n := 0
	s := New(
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return s, clock
}

func mustTool(t *testing.T, s *Store, name string) model.Tool {
	t.Helper()
	tool, err := s.CreateTool(model.ToolInput{Name: name})
	require.NoError(t, err)
	return tool
}

func mustTheme(t *testing.T, s *Store, title string, seq ...string) model.Theme {
	t.Helper()
	theme, err := s.CreateTheme(model.ThemeInput{Title: title, Sequence: seq})
	require.NoError(t, err)
	return theme
}

// =========================================================================
// TOOL TESTS
// =========================================================================

func TestCreateTool_Defaults(t *testing.T) {
	s, _ := newTestStore(t)

	tool, err := s.CreateTool(model.ToolInput{
		Name: "  Breathe ",
		Tags: []string{"calm", "Calm", " body "},
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", tool.ID)
	assert.Equal(t, "Breathe", tool.Name)
	assert.Equal(t, model.StatusDraft, tool.Status)
	assert.Equal(t, []string{"calm", "body"}, tool.Tags)
	assert.True(t, tool.CreatedAt.Equal(tool.UpdatedAt))
}

func TestCreateTool_EmptyNameGetsDefault(t *testing.T) {
	s, _ := newTestStore(t)

	tool, err := s.CreateTool(model.ToolInput{Name: "   "})
	require.NoError(t, err)
	assert.Equal(t, DefaultToolName, tool.Name)
}

func TestCreateTool_DuplicateNamesAllowed(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "Same")
	b := mustTool(t, s, "Same")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateTool_InvalidStatus(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.CreateTool(model.ToolInput{Name: "x", Status: "published"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestUpdateTool(t *testing.T) {
	s, _ := newTestStore(t)
	tool := mustTool(t, s, "Breathe")

	updated, err := s.UpdateTool(tool.ID, model.ToolPatch{
		OneLiner: model.Ptr("slow exhale"),
		Status:   model.Ptr(model.StatusReady),
	})
	require.NoError(t, err)

	assert.Equal(t, "Breathe", updated.Name, "unpatched fields are kept")
	assert.Equal(t, "slow exhale", updated.OneLiner)
	assert.Equal(t, model.StatusReady, updated.Status)
	assert.True(t, updated.CreatedAt.Equal(tool.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(tool.UpdatedAt))
}

func TestToolLink(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.CreateTool(model.ToolInput{Name: "Breathe", Link: "ftp://x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidURL))
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "link", appErr.Field)

	tool, err := s.CreateTool(model.ToolInput{Name: "Breathe", Link: " https://example.com/b "})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b", tool.Link)

	_, err = s.UpdateTool(tool.ID, model.ToolPatch{Link: model.Ptr("not a url")})
	assert.True(t, errors.Is(err, apperror.ErrInvalidURL))
	got, _ := s.Tool(tool.ID)
	assert.Equal(t, "https://example.com/b", got.Link, "rejected patch leaves the tool alone")

	cleared, err := s.UpdateTool(tool.ID, model.ToolPatch{Link: model.Ptr("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.Link)

	noLink, err := s.CreateTool(model.ToolInput{Name: "Ground"})
	require.NoError(t, err)
	assert.Empty(t, noLink.Link, "a link is optional")
}

func TestUpdateTool_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.UpdateTool("missing", model.ToolPatch{Name: model.Ptr("x")})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdateTool_ClockGoingBackwards(t *testing.T) {
	s, clock := newTestStore(t)
	tool := mustTool(t, s, "Breathe")

	clock.t = tool.CreatedAt.Add(-time.Hour)
	updated, err := s.UpdateTool(tool.ID, model.ToolPatch{Body: model.Ptr("text")})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestDuplicateTool(t *testing.T) {
	s, _ := newTestStore(t)
	src, err := s.CreateTool(model.ToolInput{Name: "Breathe", Body: "in, out", Tags: []string{"calm"}})
	require.NoError(t, err)

	dup, ok := s.DuplicateTool(src.ID)
	require.True(t, ok)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Breathe (copy)", dup.Name)
	assert.Equal(t, src.Body, dup.Body)
	assert.Equal(t, src.Tags, dup.Tags)
	assert.True(t, dup.CreatedAt.After(src.CreatedAt))

	_, ok = s.DuplicateTool("missing")
	assert.False(t, ok)
	tools, _, _ := s.Counts()
	assert.Equal(t, 2, tools)
}

// =========================================================================
// REFERENTIAL CLEANUP
// =========================================================================

func TestDeleteTool_CascadesIntoSequences(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	b := mustTool(t, s, "B")
	c := mustTool(t, s, "C")
	th1 := mustTheme(t, s, "one", a.ID, b.ID, a.ID, c.ID)
	th2 := mustTheme(t, s, "two", c.ID, b.ID)
	th3 := mustTheme(t, s, "three", c.ID)

	assert.True(t, s.DeleteTool(a.ID))

	got1, _ := s.Theme(th1.ID)
	got2, _ := s.Theme(th2.ID)
	got3, _ := s.Theme(th3.ID)
	assert.Equal(t, []string{b.ID, c.ID}, got1.Sequence, "all occurrences removed, order kept")
	assert.True(t, got1.UpdatedAt.After(th1.UpdatedAt))
	assert.Equal(t, []string{c.ID, b.ID}, got2.Sequence)
	assert.True(t, got2.UpdatedAt.Equal(th2.UpdatedAt), "untouched theme keeps its timestamp")
	assert.True(t, got3.UpdatedAt.Equal(th3.UpdatedAt))

	_, ok := s.Tool(a.ID)
	assert.False(t, ok)
}

func TestDeleteTool_AbsentIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	mustTool(t, s, "A")

	assert.False(t, s.DeleteTool("missing"))
	tools, _, _ := s.Counts()
	assert.Equal(t, 1, tools)
}

func TestScenario_DeleteFirstToolOfTheme(t *testing.T) {
	s, _ := newTestStore(t)
	t1 := mustTool(t, s, "Breathe")
	t2 := mustTool(t, s, "Ground")
	th := mustTheme(t, s, "Calm", t1.ID, t2.ID)

	s.DeleteTool(t1.ID)

	got, ok := s.Theme(th.ID)
	require.True(t, ok)
	assert.Equal(t, []string{t2.ID}, got.Sequence)
}

func TestDeleteTheme_DoesNotTouchTools(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	th := mustTheme(t, s, "one", a.ID)

	assert.True(t, s.DeleteTheme(th.ID))
	assert.False(t, s.DeleteTheme(th.ID))
	_, ok := s.Tool(a.ID)
	assert.True(t, ok)
}

// =========================================================================
// THEME TESTS
// =========================================================================

func TestCreateTheme_EmptySequence(t *testing.T) {
	s, _ := newTestStore(t)
	th := mustTheme(t, s, "  Morning  ")

	assert.Equal(t, "Morning", th.Title)
	assert.Equal(t, []string{}, th.Sequence)
}

func TestUpdateTheme(t *testing.T) {
	s, _ := newTestStore(t)
	th := mustTheme(t, s, "Morning")

	got, err := s.UpdateTheme(th.ID, model.ThemePatch{Desc: model.Ptr("start slow")})
	require.NoError(t, err)
	assert.Equal(t, "Morning", got.Title)
	assert.Equal(t, "start slow", got.Desc)
	assert.True(t, got.UpdatedAt.After(th.UpdatedAt))

	_, err = s.UpdateTheme("missing", model.ThemePatch{})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestReorderThemeSequence(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	b := mustTool(t, s, "B")
	c := mustTool(t, s, "C")

	tests := []struct {
		name    string
		op      SequenceOp
		want    []string
		wantErr error
	}{
		{name: "insert at end", op: InsertAtEnd(a.ID), want: []string{a.ID, b.ID, c.ID, a.ID}},
		{name: "insert unknown tool", op: InsertAtEnd("ghost"), wantErr: apperror.ErrNotFound},
		{name: "remove middle", op: RemoveAt(1), want: []string{a.ID, c.ID}},
		{name: "remove out of range", op: RemoveAt(3), wantErr: apperror.ErrIndexOutOfRange},
		{name: "remove negative", op: RemoveAt(-1), wantErr: apperror.ErrIndexOutOfRange},
		{name: "move up", op: MoveAdjacent(1, Up), want: []string{b.ID, a.ID, c.ID}},
		{name: "move down", op: MoveAdjacent(1, Down), want: []string{a.ID, c.ID, b.ID}},
		{name: "first up is no-op", op: MoveAdjacent(0, Up), want: []string{a.ID, b.ID, c.ID}},
		{name: "last down is no-op", op: MoveAdjacent(2, Down), want: []string{a.ID, b.ID, c.ID}},
		{name: "move adjacent out of range", op: MoveAdjacent(5, Up), wantErr: apperror.ErrIndexOutOfRange},
		{name: "bad direction", op: MoveAdjacent(0, "sideways"), wantErr: apperror.ErrValidation},
		{name: "move first to last", op: MoveTo(0, 2), want: []string{b.ID, c.ID, a.ID}},
		{name: "move last to first", op: MoveTo(2, 0), want: []string{c.ID, a.ID, b.ID}},
		{name: "move to self", op: MoveTo(1, 1), want: []string{a.ID, b.ID, c.ID}},
		{name: "move to out of range", op: MoveTo(0, 3), wantErr: apperror.ErrIndexOutOfRange},
		{name: "unknown kind", op: SequenceOp{Kind: "shuffle"}, wantErr: apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := mustTheme(t, s, tt.name, a.ID, b.ID, c.ID)

			got, err := s.ReorderThemeSequence(th.ID, tt.op)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				unchanged, _ := s.Theme(th.ID)
				assert.Equal(t, []string{a.ID, b.ID, c.ID}, unchanged.Sequence)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Sequence)
		})
	}
}

func TestReorderThemeSequence_NoOpKeepsTimestamp(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	b := mustTool(t, s, "B")
	th := mustTheme(t, s, "t", a.ID, b.ID)

	got, err := s.ReorderThemeSequence(th.ID, MoveTo(1, 1))
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(th.UpdatedAt))

	got, err = s.ReorderThemeSequence(th.ID, MoveTo(0, 1))
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(th.UpdatedAt))
}

func TestReorderThemeSequence_MissingTheme(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.ReorderThemeSequence("missing", RemoveAt(0))
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestReorderThemeSequence_DuplicatesPermitted(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	th := mustTheme(t, s, "t", a.ID)

	got, err := s.ReorderThemeSequence(th.ID, InsertAtEnd(a.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, a.ID}, got.Sequence)
}

func TestThemeTools_MarksDanglingReferences(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	th := mustTheme(t, s, "t", a.ID, "ghost", a.ID)

	resolved := s.ThemeTools(th)
	require.Len(t, resolved, 3)
	assert.Equal(t, "A", resolved[0].Name)
	assert.Nil(t, resolved[1])
	assert.Equal(t, "A", resolved[2].Name)
}

// =========================================================================
// VAULT TESTS
// =========================================================================

func TestCreateVaultEntry_URLRule(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.CreateVaultEntry(model.VaultInput{URL: "ftp://x"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidURL))

	entry, err := s.CreateVaultEntry(model.VaultInput{URL: "https://x.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://x.com", entry.URL)

	_, err = s.CreateVaultEntry(model.VaultInput{URL: "HTTP://loud.example"})
	assert.NoError(t, err)
}

func TestCreateVaultEntry_CapturesThemeName(t *testing.T) {
	s, _ := newTestStore(t)
	th := mustTheme(t, s, "Morning")

	entry, err := s.CreateVaultEntry(model.VaultInput{URL: "https://x.com", ThemeID: th.ID})
	require.NoError(t, err)
	assert.Equal(t, "Morning", entry.ThemeName)

	_, err = s.UpdateTheme(th.ID, model.ThemePatch{Title: model.Ptr("Evening")})
	require.NoError(t, err)
	s.DeleteTheme(th.ID)

	got, ok := s.VaultEntry(entry.ID)
	require.True(t, ok)
	assert.Equal(t, "Morning", got.ThemeName, "snapshot is not a live reference")
	assert.Equal(t, th.ID, got.ThemeID)
}

func TestUpdateVaultEntry(t *testing.T) {
	s, _ := newTestStore(t)
	entry, err := s.CreateVaultEntry(model.VaultInput{Title: "Post", URL: "https://x.com"})
	require.NoError(t, err)

	_, err = s.UpdateVaultEntry(entry.ID, model.VaultPatch{URL: model.Ptr("mailto:x")})
	assert.True(t, errors.Is(err, apperror.ErrInvalidURL))

	got, err := s.UpdateVaultEntry(entry.ID, model.VaultPatch{Note: model.Ptr("v2")})
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Note)
	assert.Equal(t, "https://x.com", got.URL)

	_, err = s.UpdateVaultEntry("missing", model.VaultPatch{})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	assert.True(t, s.DeleteVaultEntry(entry.ID))
	assert.False(t, s.DeleteVaultEntry(entry.ID))
}

// =========================================================================
// QUERY / SNAPSHOT TESTS
// =========================================================================

func TestTools_SearchAndSort(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateTool(model.ToolInput{Name: "Breathe", Tags: []string{"calm"}})
	require.NoError(t, err)
	ground, err := s.CreateTool(model.ToolInput{Name: "Ground", Body: "feel your feet", Status: model.StatusReady})
	require.NoError(t, err)
	_, err = s.CreateTool(model.ToolInput{Name: "Journal", OneLiner: "Write it down"})
	require.NoError(t, err)

	all := s.Tools(model.Query{})
	require.Len(t, all, 3)
	assert.Equal(t, "Journal", all[0].Name, "newest first")

	assert.Len(t, s.Tools(model.Query{Text: "FEET"}), 1)
	assert.Len(t, s.Tools(model.Query{Text: "calm"}), 1, "tags are searchable")
	assert.Len(t, s.Tools(model.Query{Tag: "Calm"}), 1)
	ready := s.Tools(model.Query{Status: model.StatusReady})
	require.Len(t, ready, 1)
	assert.Equal(t, ground.ID, ready[0].ID)

	_, err = s.UpdateTool(ground.ID, model.ToolPatch{Body: model.Ptr("edited")})
	require.NoError(t, err)
	assert.Equal(t, ground.ID, s.Tools(model.Query{})[0].ID, "edit moves a tool to the top")
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustTool(t, s, "A")
	mustTheme(t, s, "t", a.ID)

	snap := s.Snapshot()
	snap.Themes[0].Sequence[0] = "tampered"
	snap.Tools[0].Name = "tampered"

	got, _ := s.Tool(a.ID)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, a.ID, s.Snapshot().Themes[0].Sequence[0])
}

func TestReplaceAndReset(t *testing.T) {
	s, _ := newTestStore(t)
	mustTool(t, s, "A")
	s.SetNotes("remember")

	snap := s.Snapshot()
	other := New()
	other.Replace(snap)
	assert.Equal(t, "remember", other.Notes())
	tools, _, _ := other.Counts()
	assert.Equal(t, 1, tools)

	other.Reset()
	tools, themes, vault := other.Counts()
	assert.Zero(t, tools+themes+vault)
	assert.Empty(t, other.Notes())
}

func TestSetUI_MergesKeys(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetUI(model.UIState{"tab": "tools", "q": "x"})
	s.SetUI(model.UIState{"q": "y"})

	ui := s.UI()
	assert.Equal(t, "tools", ui["tab"])
	assert.Equal(t, "y", ui["q"])
}
