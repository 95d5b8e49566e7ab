package render

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"CVForgeBot/model"
)

//go:embed templates/cv_template.tex
var defaultTemplate string

const (
	texName = "resume.tex"
	pdfName = "resume.pdf"
	logName = "resume.log"

	// maxLogTail bounds how much of the LaTeX log is put into an error message
	maxLogTail = 2000
)

// LaTeXOptions configures a LaTeX renderer.
type LaTeXOptions struct {
	TemplatePath string // empty uses the embedded template
	OutputDir    string
	Binary       string // pdflatex by default
	Passes       int
	Timeout      time.Duration
}

// LaTeX renders records through a text/template LaTeX source and pdflatex.
type LaTeX struct {
	opts     LaTeXOptions
	catalog  *model.Catalog
	template *template.Template
	log      zerolog.Logger
}

// NewLaTeX parses the template and prepares the output directory.
func NewLaTeX(opts LaTeXOptions, catalog *model.Catalog, logger zerolog.Logger) (*LaTeX, error) {
	if opts.Binary == "" {
		opts.Binary = "pdflatex"
	}
	if opts.Passes <= 0 {
		opts.Passes = 2
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}

	source := defaultTemplate
	if opts.TemplatePath != "" {
		data, err := os.ReadFile(opts.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		source = string(data)
	}

	tmpl, err := ParseTemplate(source)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	return &LaTeX{
		opts:     opts,
		catalog:  catalog,
		template: tmpl,
		log:      logger.With().Str("component", "latex").Logger(),
	}, nil
}

// ParseTemplate parses a LaTeX template. Actions use << >> so LaTeX braces
// need no escaping; sprig functions and tex are available.
func ParseTemplate(source string) (*template.Template, error) {
	tmpl, err := template.New("cv").
		Delims("<<", ">>").
		Option("missingkey=zero").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"tex": texValue}).
		Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

func texValue(v any) string {
	if v == nil {
		return ""
	}
	return EscapeTeX(fmt.Sprint(v))
}

// Source renders the LaTeX source for record without compiling it.
func (l *LaTeX) Source(record model.AnswerRecord) (string, error) {
	var buf bytes.Buffer
	if err := l.template.Execute(&buf, record.TemplateData(l.catalog)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Render writes <output>/<userID>/resume.tex, compiles it and returns the PDF.
func (l *LaTeX) Render(ctx context.Context, record model.AnswerRecord, userID int64) (model.DocumentHandle, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	dir, err := filepath.Abs(filepath.Join(l.opts.OutputDir, strconv.FormatInt(userID, 10)))
	if err != nil {
		return model.DocumentHandle{}, Failed("could not prepare output directory", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.DocumentHandle{}, Failed("could not prepare output directory", err)
	}

	source, err := l.Source(record)
	if err != nil {
		return model.DocumentHandle{}, Failed("could not fill the resume template", err)
	}

	texPath := filepath.Join(dir, texName)
	pdfPath := filepath.Join(dir, pdfName)
	if err := os.WriteFile(texPath, []byte(source), 0o644); err != nil {
		return model.DocumentHandle{}, Failed("could not write LaTeX source", err)
	}
	// a stale PDF from an earlier run must not be mistaken for this one
	_ = os.Remove(pdfPath)

	l.log.Debug().Int64("user_id", userID).Str("path", texPath).Msg("generated LaTeX source")

	for pass := 1; pass <= l.opts.Passes; pass++ {
		if err := l.compile(ctx, dir, texPath); err != nil {
			l.log.Error().Err(err).Int64("user_id", userID).Int("pass", pass).Msg("LaTeX compilation failed")
			return model.DocumentHandle{}, err
		}
	}

	if _, err := os.Stat(pdfPath); err != nil {
		return model.DocumentHandle{}, Failed("PDF file was not created", err)
	}

	l.cleanup(dir)

	handle := model.DocumentHandle{
		ID:       uuid.NewString(),
		Path:     pdfPath,
		Filename: fmt.Sprintf("resume_%d.pdf", userID),
	}
	l.log.Info().Int64("user_id", userID).Str("document_id", handle.ID).Str("path", pdfPath).Msg("generated PDF")
	return handle, nil
}

func (l *LaTeX) compile(ctx context.Context, dir, texPath string) error {
	cmd := exec.CommandContext(ctx, l.opts.Binary, "-interaction=nonstopmode", "-output-directory", dir, texPath)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failed("LaTeX compilation timed out", ctxErr)
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return Failed(fmt.Sprintf("LaTeX compiler %q is not available", l.opts.Binary), err)
	}

	msg := "LaTeX compilation failed"
	if s := strings.TrimSpace(strings.ToValidUTF8(stderr.String(), "")); s != "" {
		msg += ": " + s
	}
	if logData, readErr := os.ReadFile(filepath.Join(dir, logName)); readErr == nil {
		msg += "\nLOG: " + tail(string(logData), maxLogTail)
	}
	return Failed(msg, err)
}

// cleanup removes everything but the PDF from dir.
func (l *LaTeX) cleanup(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.log.Warn().Err(err).Str("dir", dir).Msg("could not list output directory")
		return
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".pdf") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			l.log.Warn().Err(err).Str("file", e.Name()).Msg("could not remove temporary file")
		}
	}
}

// tail returns at most the last n bytes of s, cut on a rune boundary and with
// invalid sequences dropped, so the result is always valid UTF-8.
func tail(s string, n int) string {
	if len(s) <= n {
		return strings.ToValidUTF8(s, "")
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return "..." + strings.ToValidUTF8(s[start:], "")
}
