package render

import "testing"

func TestEscapeTeX(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"R&D":            `R\&D`,
		"100%":           `100\%`,
		"$5 #1":          `\$5 \#1`,
		"snake_case":     `snake\_case`,
		"{x}":            `\{x\}`,
		"~^":             `\textasciitilde{}\^{}`,
		`C:\path`:        `C:\textbackslash{}path`,
		"a<b>c":          `a\textless{}b\textgreater{}c`,
		`\{`:             `\textbackslash{}\{`,
		"Jane Doe, M.Sc": "Jane Doe, M.Sc",
	}
	for in, want := range cases {
		if got := EscapeTeX(in); got != want {
			t.Errorf("EscapeTeX(%q) = %q, want %q", in, got, want)
		}
	}
}
