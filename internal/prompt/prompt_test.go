package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
)

func resolverOf(tools ...model.Tool) Resolver {
	byID := make(map[string]model.Tool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
	}
	return func(id string) (model.Tool, bool) {
		t, ok := byID[id]
		return t, ok
	}
}

func TestBuildToolsBlock_Order(t *testing.T) {
	t1 := model.Tool{ID: "t1", Name: "Breathe"}
	t2 := model.Tool{ID: "t2", Name: "Ground"}
	theme := model.Theme{Sequence: []string{t1.ID, t2.ID}}

	block := BuildToolsBlock(theme, resolverOf(t1, t2))

	entries := strings.Split(block, "\n\n")
	require.Len(t, entries, 2)
	assert.Equal(t, "1) Breathe", entries[0])
	assert.Equal(t, "2) Ground", entries[1])
}

func TestBuildToolsBlock_Fields(t *testing.T) {
	tool := model.Tool{
		ID:       "t1",
		Name:     "Breathe",
		OneLiner: "slow down",
		Tags:     []string{"calm", "body"},
		Body:     "In for four.\nOut for six.\n",
	}
	theme := model.Theme{Sequence: []string{"t1"}}

	want := "1) Breathe\nPurpose: slow down\nTags: calm, body\nIn for four.\nOut for six."
	assert.Equal(t, want, BuildToolsBlock(theme, resolverOf(tool)))
}

func TestToolLinkIsRendered(t *testing.T) {
	tool := model.Tool{ID: "t1", Name: "Breathe", Link: "https://example.com/b", Status: model.StatusDraft}
	theme := model.Theme{Sequence: []string{"t1"}}

	assert.Equal(t, "1) Breathe\nLink: https://example.com/b", BuildToolsBlock(theme, resolverOf(tool)))
	assert.Equal(t, "Tool: Breathe\nLink: https://example.com/b\nStatus: draft\n", ToolCardText(tool))
}

func TestBuildToolsBlock_DanglingReference(t *testing.T) {
	t1 := model.Tool{ID: "t1", Name: "Breathe"}
	theme := model.Theme{Sequence: []string{"gone", t1.ID, "gone"}}

	block := BuildToolsBlock(theme, resolverOf(t1))

	entries := strings.Split(block, "\n\n")
	require.Len(t, entries, 3, "one entry per sequence position")
	assert.Equal(t, "1) [missing tool: gone]", entries[0])
	assert.Equal(t, "2) Breathe", entries[1])
	assert.Equal(t, "3) [missing tool: gone]", entries[2])
}

func TestBuildToolsBlock_Empty(t *testing.T) {
	assert.Equal(t, "", BuildToolsBlock(model.Theme{}, resolverOf()))
}

func TestBuildPrompt(t *testing.T) {
	t1 := model.Tool{ID: "t1", Name: "Breathe"}
	theme := model.Theme{Title: "Calm", Desc: "settle in", Sequence: []string{"t1", "missing"}}

	tmpl := "{{THEME_TITLE}} / {{THEME_TITLE}}\n{{THEME_DESC}}\n{{TOOLS_BLOCK}}\n{{UNKNOWN}}"
	got := BuildPrompt(theme, tmpl, resolverOf(t1))

	want := "Calm / Calm\nsettle in\n1) Breathe\n\n2) [missing tool: missing]\n{{UNKNOWN}}"
	assert.Equal(t, want, got)
}

func TestBuildPrompt_DoesNotReexpandInsertedText(t *testing.T) {
	t1 := model.Tool{ID: "t1", Name: "Echo", Body: "literal {{THEME_TITLE}}"}
	theme := model.Theme{Title: "Calm", Sequence: []string{"t1"}}

	got := BuildPrompt(theme, "{{TOOLS_BLOCK}}", resolverOf(t1))
	assert.Contains(t, got, "literal {{THEME_TITLE}}")
}

func TestCardTexts(t *testing.T) {
	tool := model.Tool{ID: "t1", Name: "Breathe", OneLiner: "slow", Status: model.StatusReady, Body: "in/out"}
	assert.Equal(t, "Tool: Breathe\nPurpose: slow\nStatus: ready\n\nin/out\n", ToolCardText(tool))

	theme := model.Theme{Title: "", Desc: "d", Sequence: []string{"t1"}}
	card := ThemeCardText(theme, resolverOf(tool))
	assert.True(t, strings.HasPrefix(card, "Theme: Untitled\nDescription: d\nTools (1):\n"))
	assert.Contains(t, card, "1) Breathe")
	assert.Equal(t, card, ThemeCardText(theme, resolverOf(tool)), "deterministic")
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary()
	got, err := lib.Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, got)

	_, err = lib.Get("nope")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestLoadLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := "templates:\n  coach: |\n    Coach: {{THEME_TITLE}}\n  blank: \"  \"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lib, err := LoadLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"coach", "default"}, lib.Names())

	coach, err := lib.Get("coach")
	require.NoError(t, err)
	assert.Equal(t, "Coach: {{THEME_TITLE}}\n", coach)

	_, err = LoadLibrary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
