package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFieldCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]FieldSpec{
		{Name: "full_name", Prompt: "Enter your full name:", Skippable: true},
		{Name: "email", Prompt: "Enter your email address:", Skippable: true},
	}, nil)
	require.NoError(t, err)
	return c
}

func TestCatalogNavigation(t *testing.T) {
	c := twoFieldCatalog(t)

	first := c.First()
	assert.Equal(t, "full_name", first.Name)
	assert.Equal(t, 0, first.Order)

	next, ok := c.Next(first)
	require.True(t, ok)
	assert.Equal(t, "email", next.Name)
	assert.Equal(t, 1, next.Order)

	_, ok = c.Next(next)
	assert.False(t, ok, "last field has no next")

	prev, ok := c.Previous(next)
	require.True(t, ok)
	assert.Equal(t, first, prev)

	_, ok = c.Previous(first)
	assert.False(t, ok, "first field has no previous")

	assert.Equal(t, next, c.Last())
}

func TestCatalogOrderIsContiguous(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	for i, f := range c.Fields() {
		assert.Equal(t, i, f.Order, f.Name)
	}
}

func TestCatalogRejectsBadDefinitions(t *testing.T) {
	cases := map[string][]FieldSpec{
		"empty":     nil,
		"duplicate": {{Name: "a", Prompt: "a?"}, {Name: "a", Prompt: "again?"}},
		"bad name":  {{Name: "drop table", Prompt: "x"}},
		"no prompt": {{Name: "a"}},
		"section":   {{Name: "a", Prompt: "a?", Section: "missing"}},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(fields, nil)
			assert.Error(t, err)
		})
	}
}

func TestCatalogUnknownFieldPanics(t *testing.T) {
	c := twoFieldCatalog(t)
	assert.Panics(t, func() {
		c.Next(FieldSpec{Name: "phone"})
	})
}

func TestCatalogValidate(t *testing.T) {
	c := twoFieldCatalog(t)

	assert.NoError(t, c.Validate("email"))

	err := c.Validate("password")
	require.Error(t, err)
	assert.True(t, IsInvalidField(err))
	assert.Contains(t, err.Error(), "password")
}

func TestCatalogImplicitSections(t *testing.T) {
	c := twoFieldCatalog(t)

	sections := c.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, "full_name", sections[0].Name)
	assert.Equal(t, StyleLines, sections[0].Style)
}
