// Package wizard drives a user through the field catalog one question at a
// time and hands the finished record to the renderer.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"CVForgeBot/model"
	"CVForgeBot/render"
	"CVForgeBot/repo"
)

// User-facing texts.
const (
	textWelcome = "👋 Welcome to the Resume Generator Bot!\n\n" +
		"I will help you create a professional resume in PDF format.\n" +
		"Click the button below to start filling out the form."
	textCancelled       = "Form filling cancelled. To start over, use the /start command"
	textRestart         = "🔄 Let's start over."
	textFirstStep       = "You are at the first step of the form."
	textNoSession       = "There is no form in progress. Press \"📝 Start Filling\" to begin."
	textRequired        = "This field is required and cannot be skipped."
	textFinishFirst     = "Please finish the form first."
	textAwaitingConfirm = "Your form is complete. Use the buttons under the preview to generate the PDF or start over."
	textGenerating      = "⏳ Generating PDF resume..."
	textDocumentReady   = "✅ Your resume is ready!"
	textRecordNotFound  = "❌ Form data not found. Please fill out the form again."
	textRenderFailed    = "❌ An error occurred while generating PDF: %s\nPlease try again or contact administrator."
	textInternalError   = "⚠️ Something went wrong on our side. Please try again."
)

// Metric outcomes.
const (
	outcomeOK           = "ok"
	outcomeIgnored      = "ignored"
	outcomeSoftError    = "soft_error"
	outcomeError        = "error"
	outcomeRenderFailed = "render_failed"
)

// Sink receives the responses of one event, in order.
type Sink func(model.Response)

// Machine is the form wizard state machine. It is safe for concurrent use;
// events of the same user are serialized, different users run in parallel.
type Machine struct {
	catalog  *model.Catalog
	answers  repo.AnswerStore
	sessions repo.SessionStore
	renderer render.Gateway
	summary  *Summary
	metrics  *Metrics
	locks    *keyedMutex
	log      zerolog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the machine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Machine) { m.log = l.With().Str("component", "wizard").Logger() }
}

// WithMetrics sets the metrics the machine records to.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Machine) { m.metrics = metrics }
}

func NewMachine(catalog *model.Catalog, answers repo.AnswerStore, sessions repo.SessionStore, renderer render.Gateway, opts ...Option) *Machine {
	m := &Machine{
		catalog:  catalog,
		answers:  answers,
		sessions: sessions,
		renderer: renderer,
		summary:  NewSummary(catalog),
		locks:    newKeyedMutex(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	return m
}

// Handle processes ev and returns every response it produced.
func (m *Machine) Handle(ctx context.Context, ev model.Event) []model.Response {
	var out []model.Response
	m.Process(ctx, ev, func(r model.Response) { out = append(out, r) })
	return out
}

// Process processes ev and passes each response to sink as soon as it is
// known, so progress messages reach the user before a slow render finishes.
func (m *Machine) Process(ctx context.Context, ev model.Event, sink Sink) {
	unlock := m.locks.Lock(ev.UserID)
	defer unlock()

	log := m.log.With().Int64("user_id", ev.UserID).Str("event", ev.Kind.String()).Logger()

	session, err := m.sessions.Get(ctx, ev.UserID)
	if err != nil {
		log.Error().Err(err).Msg("error loading session")
		m.fail(ev, sink)
		return
	}
	log.Debug().Str("phase", string(session.Phase)).Msg("handling event")

	var outcome string
	switch ev.Kind {
	case model.EventWelcome:
		outcome, err = m.welcome(ctx, ev, sink)
	case model.EventStart:
		outcome, err = m.start(ctx, ev, sink)
	case model.EventRestart:
		sink(model.Response{Kind: model.ResponseInfo, Text: textRestart})
		outcome, err = m.start(ctx, ev, sink)
	case model.EventCancel:
		outcome, err = m.cancel(ctx, ev, sink)
	case model.EventAnswer:
		outcome, err = m.answer(ctx, session, ev.Text, sink)
	case model.EventSkip:
		outcome, err = m.skip(ctx, session, sink)
	case model.EventBack:
		outcome, err = m.back(ctx, session, sink)
	case model.EventConfirm:
		outcome, err = m.confirm(ctx, session, sink)
	default:
		log.Warn().Msg("unknown event kind")
		outcome = outcomeIgnored
	}

	if err != nil {
		if model.IsInvalidField(err) {
			log.Error().Err(err).Msg("write to a field outside the catalog")
		} else {
			log.Error().Err(err).Msg("error handling event")
		}
		m.fail(ev, sink)
		return
	}
	m.metrics.observeEvent(ev.Kind.String(), outcome)
}

func (m *Machine) fail(ev model.Event, sink Sink) {
	m.metrics.observeEvent(ev.Kind.String(), outcomeError)
	sink(model.Response{Kind: model.ResponseError, Text: textInternalError})
}

// welcome greets the user and drops the cursor. Stored answers are kept until
// the next start.
func (m *Machine) welcome(ctx context.Context, ev model.Event, sink Sink) (string, error) {
	if err := m.sessions.Delete(ctx, ev.UserID); err != nil {
		return "", err
	}
	sink(model.Response{Kind: model.ResponseWelcome, Text: textWelcome})
	return outcomeOK, nil
}

// start discards any previous answers and opens the first field.
func (m *Machine) start(ctx context.Context, ev model.Event, sink Sink) (string, error) {
	if err := m.reset(ctx, ev.UserID); err != nil {
		return "", err
	}
	first := m.catalog.First()
	if err := m.sessions.Save(ctx, model.ActiveSession(ev.UserID, first)); err != nil {
		return "", err
	}
	sink(prompt(first))
	return outcomeOK, nil
}

func (m *Machine) cancel(ctx context.Context, ev model.Event, sink Sink) (string, error) {
	if err := m.reset(ctx, ev.UserID); err != nil {
		return "", err
	}
	sink(model.Response{Kind: model.ResponseCancelled, Text: textCancelled})
	return outcomeOK, nil
}

func (m *Machine) answer(ctx context.Context, session model.UserSession, text string, sink Sink) (string, error) {
	switch session.Phase {
	case model.PhaseActive:
		return m.store(ctx, session, text, sink)
	case model.PhaseAwaitingConfirmation:
		return m.repeatPreview(ctx, session.UserID, sink)
	default:
		// nothing is waiting for an answer
		return outcomeIgnored, nil
	}
}

func (m *Machine) skip(ctx context.Context, session model.UserSession, sink Sink) (string, error) {
	switch session.Phase {
	case model.PhaseActive:
		if !session.Cursor.Skippable {
			sink(model.Response{Kind: model.ResponseInfo, Text: textRequired})
			sink(prompt(*session.Cursor))
			return outcomeSoftError, nil
		}
		return m.store(ctx, session, model.NotSpecified, sink)
	case model.PhaseAwaitingConfirmation:
		return m.repeatPreview(ctx, session.UserID, sink)
	default:
		return m.soft(session.UserID, model.ErrNoActiveSession, textNoSession, sink)
	}
}

func (m *Machine) back(ctx context.Context, session model.UserSession, sink Sink) (string, error) {
	switch session.Phase {
	case model.PhaseActive:
		prev, ok := m.catalog.Previous(*session.Cursor)
		if !ok {
			return m.soft(session.UserID, model.ErrNoPreviousField, textFirstStep, sink)
		}
		if err := m.sessions.Save(ctx, model.ActiveSession(session.UserID, prev)); err != nil {
			return "", err
		}
		sink(prompt(prev))
		return outcomeOK, nil
	case model.PhaseAwaitingConfirmation:
		// reopen the last field for editing
		last := m.catalog.Last()
		if err := m.sessions.Save(ctx, model.ActiveSession(session.UserID, last)); err != nil {
			return "", err
		}
		sink(prompt(last))
		return outcomeOK, nil
	default:
		return m.soft(session.UserID, model.ErrNoActiveSession, textNoSession, sink)
	}
}

// store writes value at the cursor and moves to the next field, or to the
// preview after the last one.
func (m *Machine) store(ctx context.Context, session model.UserSession, value string, sink Sink) (string, error) {
	field := *session.Cursor
	if err := m.answers.Upsert(ctx, session.UserID, field.Name, value); err != nil {
		return "", err
	}

	next, ok := m.catalog.Next(field)
	if ok {
		if err := m.sessions.Save(ctx, model.ActiveSession(session.UserID, next)); err != nil {
			return "", err
		}
		sink(prompt(next))
		return outcomeOK, nil
	}

	if err := m.sessions.Save(ctx, model.AwaitingConfirmation(session.UserID)); err != nil {
		return "", err
	}
	record, err := m.answers.Read(ctx, session.UserID)
	if err != nil {
		return "", fmt.Errorf("error reading completed form: %w", err)
	}
	m.metrics.completed.Inc()
	sink(model.Response{Kind: model.ResponsePreview, Text: m.summary.Build(record)})
	return outcomeOK, nil
}

func (m *Machine) repeatPreview(ctx context.Context, userID int64, sink Sink) (string, error) {
	record, err := m.answers.Read(ctx, userID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return m.recordNotFound(ctx, userID, sink)
	}
	if err != nil {
		return "", err
	}
	sink(model.Response{Kind: model.ResponseInfo, Text: textAwaitingConfirm})
	sink(model.Response{Kind: model.ResponsePreview, Text: m.summary.Build(record)})
	return outcomeIgnored, nil
}

// confirm renders the stored record. A confirm without a live session still
// works while a complete record exists, so an old preview's button stays usable.
func (m *Machine) confirm(ctx context.Context, session model.UserSession, sink Sink) (string, error) {
	if session.Phase == model.PhaseActive {
		sink(model.Response{Kind: model.ResponseInfo, Text: textFinishFirst})
		sink(prompt(*session.Cursor))
		return outcomeSoftError, nil
	}

	record, err := m.answers.Read(ctx, session.UserID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return m.recordNotFound(ctx, session.UserID, sink)
	}
	if err != nil {
		return "", err
	}
	if session.Phase == model.PhaseIdle && !m.complete(record) {
		// a stale preview button must not render a form refilled only in part
		return m.soft(session.UserID, model.ErrNoActiveSession, textNoSession, sink)
	}

	sink(model.Response{Kind: model.ResponseInfo, Text: textGenerating})

	started := time.Now()
	doc, err := m.renderer.Render(ctx, record, session.UserID)
	m.metrics.observeRender(time.Since(started), err)
	if err != nil {
		msg := err.Error()
		if rerr, ok := render.AsError(err); ok {
			msg = rerr.Message
		}
		m.log.Warn().Err(err).Int64("user_id", session.UserID).Msg("render failed, keeping form for retry")
		sink(model.Response{Kind: model.ResponseError, Text: fmt.Sprintf(textRenderFailed, msg)})
		return outcomeRenderFailed, nil
	}

	if err := m.reset(ctx, session.UserID); err != nil {
		// the document exists; deliver it even though cleanup failed
		m.log.Error().Err(err).Int64("user_id", session.UserID).Msg("error clearing completed form")
	}
	sink(model.Response{Kind: model.ResponseDocumentReady, Text: textDocumentReady, Document: &doc})
	return outcomeOK, nil
}

// complete reports whether every catalog field has been answered or skipped.
func (m *Machine) complete(record model.AnswerRecord) bool {
	for _, name := range m.catalog.Names() {
		if !record.Has(name) {
			return false
		}
	}
	return true
}

func (m *Machine) recordNotFound(ctx context.Context, userID int64, sink Sink) (string, error) {
	if err := m.sessions.Delete(ctx, userID); err != nil {
		return "", err
	}
	sink(model.Response{Kind: model.ResponseError, Text: textRecordNotFound})
	return outcomeSoftError, nil
}

// soft reports a recoverable navigation error to the user.
func (m *Machine) soft(userID int64, err error, text string, sink Sink) (string, error) {
	m.log.Debug().Err(err).Int64("user_id", userID).Msg("navigation refused")
	sink(model.Response{Kind: model.ResponseInfo, Text: text})
	return outcomeSoftError, nil
}

// reset clears both the answers and the session of userID.
func (m *Machine) reset(ctx context.Context, userID int64) error {
	if err := m.answers.Clear(ctx, userID); err != nil {
		return err
	}
	return m.sessions.Delete(ctx, userID)
}

func prompt(f model.FieldSpec) model.Response {
	return model.Response{Kind: model.ResponsePrompt, Text: f.Prompt, Field: &f}
}
