package model

import "strings"

// NotSpecified is the value stored for an explicitly skipped field.
const NotSpecified = "Not specified"

// AnswerRecord is a user's collected answers, keyed by field name.
type AnswerRecord struct {
	UserID int64
	Values map[string]string
}

// NewAnswerRecord returns an empty record for userID.
func NewAnswerRecord(userID int64) AnswerRecord {
	return AnswerRecord{UserID: userID, Values: map[string]string{}}
}

// Get returns the value for name, or "" when it was never written.
func (r AnswerRecord) Get(name string) string {
	return r.Values[name]
}

// Has reports whether name was written.
func (r AnswerRecord) Has(name string) bool {
	_, ok := r.Values[name]
	return ok
}

// Clone returns a deep copy.
func (r AnswerRecord) Clone() AnswerRecord {
	out := NewAnswerRecord(r.UserID)
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// TemplateData builds the render view of the record: every catalog field is
// present (absent ones as ""), grouped fields are nested under their group,
// and list fields are split on commas.
func (r AnswerRecord) TemplateData(c *Catalog) map[string]any {
	data := make(map[string]any, c.Len())
	for _, f := range c.fields {
		var value any = r.Get(f.Name)
		if f.List {
			value = SplitList(r.Get(f.Name))
		}
		if f.Group == "" {
			data[f.Key] = value
			continue
		}
		group, ok := data[f.Group].(map[string]any)
		if !ok {
			group = map[string]any{}
			data[f.Group] = group
		}
		group[f.Key] = value
	}
	return data
}

// SplitList splits a comma-separated answer into trimmed, non-empty items.
func SplitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
