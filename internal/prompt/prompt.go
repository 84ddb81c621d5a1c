// Package prompt turns themes and tools into plain text: the numbered tools
// block, the substituted prompt, and the card texts a UI copies to the
// clipboard. Every builder is deterministic for a given state and never
// fails; unresolved tool ids render as placeholders.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sakif/workshop/internal/model"
)

// Placeholders recognised in templates. Anything else in double braces is
// left as written.
const (
	PlaceholderThemeTitle = "{{THEME_TITLE}}"
	PlaceholderThemeDesc  = "{{THEME_DESC}}"
	PlaceholderToolsBlock = "{{TOOLS_BLOCK}}"
)

// Resolver looks up a tool by id. *store.Store's Tool method satisfies it.
type Resolver func(id string) (model.Tool, bool)

// BuildToolsBlock renders one numbered entry per sequence position, in
// order, separated by a blank line. A dangling id keeps its number and
// renders as a placeholder line.
func BuildToolsBlock(theme model.Theme, resolve Resolver) string {
	entries := make([]string, 0, len(theme.Sequence))
	for i, id := range theme.Sequence {
		n := i + 1
		tool, ok := resolve(id)
		if !ok {
			entries = append(entries, fmt.Sprintf("%d) [missing tool: %s]", n, id))
			continue
		}
		entries = append(entries, toolEntry(n, tool))
	}
	return strings.Join(entries, "\n\n")
}

func toolEntry(n int, tool model.Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d) %s", n, displayName(tool.Name))
	if tool.OneLiner != "" {
		fmt.Fprintf(&b, "\nPurpose: %s", tool.OneLiner)
	}
	if len(tool.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(tool.Tags, ", "))
	}
	if tool.Link != "" {
		fmt.Fprintf(&b, "\nLink: %s", tool.Link)
	}
	if body := strings.TrimSpace(tool.Body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return b.String()
}

// BuildPrompt substitutes every occurrence of the theme placeholders in
// template.
func BuildPrompt(theme model.Theme, template string, resolve Resolver) string {
	values := map[string]string{
		PlaceholderThemeTitle: theme.Title,
		PlaceholderThemeDesc:  theme.Desc,
	}
	if strings.Contains(template, PlaceholderToolsBlock) {
		values[PlaceholderToolsBlock] = BuildToolsBlock(theme, resolve)
	}
	return Substitute(template, values)
}

// Substitute replaces every occurrence of each key in values with its
// value. Replacements are applied to the template only, never to text
// inserted by an earlier replacement.
//
// WHY NOT text/template?
// Templates are written by users who know nothing about Go templates.
// text/template would reject an unknown {{NAME}} at parse time, and a tool
// body containing "{{" would break the whole prompt. strings.Replacer does
// a single left-to-right pass with no parsing, so anything that is not one
// of our placeholders passes through as typed.
func Substitute(template string, values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// ToolCardText is the clipboard text for a single tool.
func ToolCardText(tool model.Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", displayName(tool.Name))
	if tool.OneLiner != "" {
		fmt.Fprintf(&b, "Purpose: %s\n", tool.OneLiner)
	}
	if len(tool.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(tool.Tags, ", "))
	}
	if tool.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", tool.Link)
	}
	fmt.Fprintf(&b, "Status: %s\n", tool.Status)
	if body := strings.TrimSpace(tool.Body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

// ThemeCardText is the clipboard text for a theme: its header fields and the
// tools block.
func ThemeCardText(theme model.Theme, resolve Resolver) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Theme: %s\n", displayName(theme.Title))
	if theme.Desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", theme.Desc)
	}
	if len(theme.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(theme.Tags, ", "))
	}
	fmt.Fprintf(&b, "Tools (%d):\n", len(theme.Sequence))
	if block := BuildToolsBlock(theme, resolve); block != "" {
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n")
	}
	return b.String()
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Untitled"
	}
	return name
}
