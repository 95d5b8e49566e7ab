package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRecordGet(t *testing.T) {
	r := NewAnswerRecord(7)
	r.Values["full_name"] = "Jane Doe"

	assert.Equal(t, "Jane Doe", r.Get("full_name"))
	assert.Equal(t, "", r.Get("email"))
	assert.True(t, r.Has("full_name"))
	assert.False(t, r.Has("email"))

	clone := r.Clone()
	clone.Values["full_name"] = "changed"
	assert.Equal(t, "Jane Doe", r.Get("full_name"))
}

func TestTemplateDataNestsGroups(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	r := NewAnswerRecord(1)
	r.Values["full_name"] = "Jane Doe"
	r.Values["education_degree"] = "BSc"
	r.Values["experience_company"] = "Acme"
	r.Values["skills"] = "Go, SQL, , Redis "

	data := r.TemplateData(c)

	assert.Equal(t, "Jane Doe", data["full_name"])
	assert.Equal(t, "", data["email"])

	education, ok := data["education"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "BSc", education["degree"])
	assert.Equal(t, "", education["institution"])

	experience, ok := data["experience"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", experience["company"])

	assert.Equal(t, []string{"Go", "SQL", "Redis"}, data["skills"])
	assert.Equal(t, []string{}, data["languages"])
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"English - B2", "Spanish - C1"}, SplitList("English - B2, Spanish - C1"))
	assert.Empty(t, SplitList(""))
}
