package wizard

import (
	"strings"

	"CVForgeBot/model"
)

const summaryHeader = "📋 Please review your data:"

// Summary renders the preview of a completed record, section by section in
// catalog order.
type Summary struct {
	catalog *model.Catalog
}

func NewSummary(catalog *model.Catalog) *Summary {
	return &Summary{catalog: catalog}
}

// Build returns the preview text. Absent fields render as empty strings.
func (s *Summary) Build(record model.AnswerRecord) string {
	bySection := make(map[string][]model.FieldSpec)
	for _, f := range s.catalog.Fields() {
		bySection[f.Section] = append(bySection[f.Section], f)
	}

	blocks := []string{summaryHeader}
	for _, section := range s.catalog.Sections() {
		fields := bySection[section.Name]
		if len(fields) == 0 {
			continue
		}
		if section.HideEmpty && allEmpty(record, fields) {
			continue
		}
		blocks = append(blocks, renderSection(section, fields, record))
	}
	return strings.Join(blocks, "\n\n")
}

func renderSection(section model.Section, fields []model.FieldSpec, record model.AnswerRecord) string {
	var b strings.Builder

	title := section.Title
	if title == "" {
		title = fields[0].Label
	}

	switch section.Style {
	case model.StyleParagraph:
		b.WriteString(title + ":")
		for _, f := range fields {
			b.WriteString("\n" + record.Get(f.Name))
		}
	case model.StyleList:
		b.WriteString(title + ":")
		for _, f := range fields {
			b.WriteString("\n- " + f.Label + ": " + record.Get(f.Name))
		}
	default:
		for i, f := range fields {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(f.Label + ": " + record.Get(f.Name))
		}
	}
	return b.String()
}

func allEmpty(record model.AnswerRecord, fields []model.FieldSpec) bool {
	for _, f := range fields {
		if strings.TrimSpace(record.Get(f.Name)) != "" {
			return false
		}
	}
	return true
}
