package model

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yml
var defaultCatalogYAML []byte

type rawCatalog struct {
	Name     string       `yaml:"name"`
	Sections []rawSection `yaml:"sections"`
	Fields   []rawField   `yaml:"fields"`
}

type rawSection struct {
	Name      string `yaml:"name"`
	Title     string `yaml:"title"`
	Style     string `yaml:"style"`
	HideEmpty bool   `yaml:"hide_empty"`
}

type rawField struct {
	Name     string `yaml:"name"`
	Prompt   string `yaml:"prompt"`
	Label    string `yaml:"label"`
	Section  string `yaml:"section"`
	Group    string `yaml:"group"`
	Key      string `yaml:"key"`
	Required bool   `yaml:"required"`
	List     bool   `yaml:"list"`
}

// DefaultCatalogYAML returns the bundled resume catalog definition.
func DefaultCatalogYAML() []byte {
	return defaultCatalogYAML
}

// DefaultCatalog returns the bundled resume catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog YAML file. An empty path loads the default.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from its YAML definition.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	sections := make([]Section, 0, len(raw.Sections))
	for _, s := range raw.Sections {
		sections = append(sections, Section{
			Name:      s.Name,
			Title:     s.Title,
			Style:     s.Style,
			HideEmpty: s.HideEmpty,
		})
	}

	fields := make([]FieldSpec, 0, len(raw.Fields))
	for _, f := range raw.Fields {
		fields = append(fields, FieldSpec{
			Name:      f.Name,
			Prompt:    f.Prompt,
			Label:     f.Label,
			Section:   f.Section,
			Group:     f.Group,
			Key:       f.Key,
			Skippable: !f.Required,
			List:      f.List,
		})
	}

	c, err := NewCatalog(fields, sections)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}
