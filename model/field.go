package model

import (
	"fmt"
	"regexp"
)

// Section layouts used by the summary preview.
const (
	StyleLines     = "lines"     // "Label: value" per field, no heading
	StyleParagraph = "paragraph" // heading, then the value on its own line
	StyleList      = "list"      // heading, then "- Label: value" per field
)

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// FieldSpec is one question of the form.
type FieldSpec struct {
	Name      string
	Prompt    string
	Label     string
	Section   string
	Group     string // nests the value under Group in render data
	Key       string // key inside Group, defaults to Name
	Skippable bool
	List      bool // comma-separated value, split for rendering
	Order     int
}

// Section is a block of the summary preview.
type Section struct {
	Name      string
	Title     string
	Style     string
	HideEmpty bool
}

// Catalog is the ordered, immutable list of form fields.
type Catalog struct {
	fields   []FieldSpec
	byName   map[string]int
	sections []Section
}

// NewCatalog validates fields and sections and builds a catalog. Field order is
// the slice order; Order values are assigned from it.
func NewCatalog(fields []FieldSpec, sections []Section) (*Catalog, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("catalog has no fields")
	}

	c := &Catalog{
		fields: make([]FieldSpec, len(fields)),
		byName: make(map[string]int, len(fields)),
	}

	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		if s.Name == "" {
			return nil, fmt.Errorf("section without a name")
		}
		if known[s.Name] {
			return nil, fmt.Errorf("duplicate section %q", s.Name)
		}
		switch s.Style {
		case "":
			s.Style = StyleLines
		case StyleLines, StyleParagraph, StyleList:
		default:
			return nil, fmt.Errorf("section %q: unknown style %q", s.Name, s.Style)
		}
		known[s.Name] = true
		c.sections = append(c.sections, s)
	}

	for i, f := range fields {
		if !fieldNamePattern.MatchString(f.Name) {
			return nil, fmt.Errorf("field %d: invalid name %q", i, f.Name)
		}
		if _, dup := c.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		if f.Prompt == "" {
			return nil, fmt.Errorf("field %q has no prompt", f.Name)
		}
		if f.Label == "" {
			f.Label = f.Name
		}
		if f.Key == "" {
			f.Key = f.Name
		}
		if f.Section == "" {
			// fields without a section each get an implicit lines block
			f.Section = f.Name
			if !known[f.Name] {
				known[f.Name] = true
				c.sections = append(c.sections, Section{Name: f.Name, Title: f.Label, Style: StyleLines})
			}
		} else if !known[f.Section] {
			return nil, fmt.Errorf("field %q: unknown section %q", f.Name, f.Section)
		}
		f.Order = i
		c.fields[i] = f
		c.byName[f.Name] = i
	}

	return c, nil
}

// MustCatalog is NewCatalog that panics on error.
func MustCatalog(fields []FieldSpec, sections []Section) *Catalog {
	c, err := NewCatalog(fields, sections)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int { return len(c.fields) }

// Fields returns a copy of the fields in navigation order.
func (c *Catalog) Fields() []FieldSpec {
	out := make([]FieldSpec, len(c.fields))
	copy(out, c.fields)
	return out
}

// Sections returns the preview sections in display order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Names returns the closed set of field names in order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

func (c *Catalog) First() FieldSpec { return c.fields[0] }

func (c *Catalog) Last() FieldSpec { return c.fields[len(c.fields)-1] }

// Next returns the field after current. ok is false at the end of the form.
func (c *Catalog) Next(current FieldSpec) (next FieldSpec, ok bool) {
	i := c.mustIndex(current)
	if i == len(c.fields)-1 {
		return FieldSpec{}, false
	}
	return c.fields[i+1], true
}

// Previous returns the field before current. ok is false at the first field.
func (c *Catalog) Previous(current FieldSpec) (prev FieldSpec, ok bool) {
	i := c.mustIndex(current)
	if i == 0 {
		return FieldSpec{}, false
	}
	return c.fields[i-1], true
}

// Lookup finds a field by name.
func (c *Catalog) Lookup(name string) (FieldSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return c.fields[i], true
}

// Validate reports whether name belongs to the catalog.
func (c *Catalog) Validate(name string) error {
	if _, ok := c.byName[name]; !ok {
		return &InvalidFieldError{Field: name}
	}
	return nil
}

func (c *Catalog) mustIndex(f FieldSpec) int {
	i, ok := c.byName[f.Name]
	if !ok || i != f.Order {
		panic(fmt.Sprintf("field %q (order %d) is not part of the catalog", f.Name, f.Order))
	}
	return i
}
