package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CVForgeBot/model"
)

func TestSummaryDefaultCatalog(t *testing.T) {
	c, err := model.DefaultCatalog()
	require.NoError(t, err)

	record := model.NewAnswerRecord(1)
	record.Values = map[string]string{
		"full_name":              "Jane Doe",
		"email":                  "jane@x.com",
		"phone":                  "+1 555",
		"location":               "Berlin, Germany",
		"professional_summary":   "Backend engineer.",
		"education_degree":       "MSc",
		"education_institution":  "TU Berlin",
		"education_year":         "2018",
		"education_location":     "Berlin",
		"experience_company":     "Acme",
		"experience_position":    "Engineer",
		"experience_period":      "2019-2024",
		"experience_location":    "Remote",
		"experience_description": "Built things.",
		"skills":                 "Go, SQL",
		"languages":              "English - C1",
		"additional_info":        "AWS certified",
	}

	want := "📋 Please review your data:\n\n" +
		"👤 Full Name: Jane Doe\n" +
		"📧 Email: jane@x.com\n" +
		"📱 Phone: +1 555\n" +
		"📍 Location: Berlin, Germany\n\n" +
		"💼 Professional Summary:\n" +
		"Backend engineer.\n\n" +
		"📚 Education:\n" +
		"- Degree: MSc\n" +
		"- Institution: TU Berlin\n" +
		"- Year: 2018\n" +
		"- Location: Berlin\n\n" +
		"💡 Work Experience:\n" +
		"- Company: Acme\n" +
		"- Position: Engineer\n" +
		"- Period: 2019-2024\n" +
		"- Location: Remote\n" +
		"- Description: Built things.\n\n" +
		"🛠 Skills: Go, SQL\n" +
		"🌐 Languages: English - C1\n\n" +
		"ℹ️ Additional Information:\n" +
		"AWS certified"

	assert.Equal(t, want, NewSummary(c).Build(record))
}

func TestSummaryDefaultCatalogHidesEmptyAdditionalInfo(t *testing.T) {
	c, err := model.DefaultCatalog()
	require.NoError(t, err)

	record := model.NewAnswerRecord(1)
	record.Values = map[string]string{"full_name": "Jane Doe", "additional_info": ""}

	out := NewSummary(c).Build(record)
	assert.Contains(t, out, "👤 Full Name: Jane Doe")
	assert.NotContains(t, out, "Additional Information")
}

func TestSummarySectionStyles(t *testing.T) {
	c := model.MustCatalog([]model.FieldSpec{
		{Name: "full_name", Prompt: "?", Label: "Full Name", Section: "personal"},
		{Name: "email", Prompt: "?", Label: "Email", Section: "personal"},
		{Name: "summary", Prompt: "?", Label: "Summary", Section: "about"},
		{Name: "job", Prompt: "?", Label: "Position", Section: "work"},
		{Name: "company", Prompt: "?", Label: "Company", Section: "work"},
		{Name: "notes", Prompt: "?", Label: "Notes", Section: "extra"},
	}, []model.Section{
		{Name: "personal", Style: model.StyleLines},
		{Name: "about", Title: "About", Style: model.StyleParagraph},
		{Name: "work", Title: "Work", Style: model.StyleList},
		{Name: "extra", Title: "Extra", Style: model.StyleParagraph, HideEmpty: true},
	})

	record := model.NewAnswerRecord(1)
	record.Values = map[string]string{
		"full_name": "Jane",
		"summary":   "Hello",
		"job":       "Dev",
		"company":   model.NotSpecified,
		"notes":     "  ",
	}

	want := summaryHeader + "\n\n" +
		"Full Name: Jane\nEmail: " + "\n\n" +
		"About:\nHello" + "\n\n" +
		"Work:\n- Position: Dev\n- Company: Not specified"

	assert.Equal(t, want, NewSummary(c).Build(record))
}

func TestSummaryImplicitSections(t *testing.T) {
	c := model.MustCatalog([]model.FieldSpec{
		{Name: "a", Prompt: "?", Label: "A"},
		{Name: "b", Prompt: "?", Label: "B"},
	}, nil)

	record := model.NewAnswerRecord(1)
	record.Values = map[string]string{"a": "1"}

	assert.Equal(t, summaryHeader+"\n\nA: 1\n\nB: ", NewSummary(c).Build(record))
}
