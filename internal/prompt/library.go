package prompt

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sakif/workshop/internal/apperror"
)

// DefaultName is the name of the built-in template.
const DefaultName = "default"

// DefaultTemplate is used when no template file overrides "default".
const DefaultTemplate = `You are guiding a short workshop session.

Theme: {{THEME_TITLE}}
About: {{THEME_DESC}}

Walk the participant through the following tools, in order. Keep each step
brief and wait for a reply before moving on.

{{TOOLS_BLOCK}}
`

// Library is a set of named prompt templates.
type Library struct {
	templates map[string]string
}

// libraryFile is the YAML layout:
//
//	templates:
//	  default: |
//	    Theme: {{THEME_TITLE}}
//	    {{TOOLS_BLOCK}}
//	  coach: |
//	    ...
type libraryFile struct {
	Templates map[string]string `yaml:"templates"`
}

// NewLibrary returns a library holding only the built-in default.
func NewLibrary() *Library {
	return &Library{templates: map[string]string{DefaultName: DefaultTemplate}}
}

// LoadLibrary reads templates from a YAML file on top of the built-in
// default. An empty path returns the default library.
func LoadLibrary(path string) (*Library, error) {
	lib := NewLibrary()
	if path == "" {
		return lib, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: reading templates %s: %w", path, err)
	}
	if err := lib.parse(data); err != nil {
		return nil, fmt.Errorf("prompt: parsing templates %s: %w", path, err)
	}
	return lib, nil
}

func (l *Library) parse(data []byte) error {
	var f libraryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for name, text := range f.Templates {
		name = strings.TrimSpace(name)
		if name == "" || strings.TrimSpace(text) == "" {
			continue
		}
		l.templates[name] = text
	}
	return nil
}

// Get returns the named template. An empty name selects the default.
func (l *Library) Get(name string) (string, error) {
	if name == "" {
		name = DefaultName
	}
	text, ok := l.templates[name]
	if !ok {
		return "", apperror.NotFound("template", name)
	}
	return text, nil
}

// Names lists the available templates, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
