package render

import "strings"

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\^{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// EscapeTeX escapes LaTeX special characters in user-supplied text.
func EscapeTeX(s string) string {
	return texReplacer.Replace(s)
}
