package handler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"CVForgeBot/model"
)

const textUploadFailed = "❌ Could not send your resume. Please fill out the form again."

// maxMessageLength is the Telegram limit on message text, in UTF-16 code units.
const maxMessageLength = 4096

// Messenger is the part of *bot.Bot the form bot talks to.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Submitter queues wizard events. *wizard.Dispatcher implements it.
type Submitter interface {
	Submit(ev model.Event) error
}

// FormBotHandler turns Telegram updates into wizard events.
type FormBotHandler struct {
	dispatcher Submitter
	log        zerolog.Logger
}

func NewFormBotHandler(dispatcher Submitter, logger zerolog.Logger) *FormBotHandler {
	return &FormBotHandler{
		dispatcher: dispatcher,
		log:        logger.With().Str("component", "form_bot").Logger(),
	}
}

// Handler is registered with bot.WithDefaultHandler.
func (h *FormBotHandler) Handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h *FormBotHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	if cq := update.CallbackQuery; cq != nil {
		// always acknowledge so the client stops its spinner
		if _, err := m.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
			h.log.Warn().Err(err).Int64("user_id", cq.From.ID).Msg("error answering callback query")
		}
	}

	ev, ok := EventFromUpdate(update)
	if !ok {
		return
	}

	h.log.Debug().Int64("user_id", ev.UserID).Str("event", ev.Kind.String()).Msg("received update")

	if err := h.dispatcher.Submit(ev); err != nil {
		h.log.Error().Err(err).Int64("user_id", ev.UserID).Msg("error queueing event")
	}
}

// EventFromUpdate translates an update into a wizard event. Updates the form
// does not care about, like photos or unknown callbacks, report false.
func EventFromUpdate(update *models.Update) (model.Event, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Text == "" {
			return model.Event{}, false
		}
		ev := model.Event{UserID: msg.From.ID, ChatID: msg.Chat.ID, Text: msg.Text}
		ev.Kind = commandKind(msg.Text)
		return ev, true

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		ev := model.Event{UserID: cq.From.ID, ChatID: cq.From.ID}
		if cq.Message.Message != nil {
			ev.ChatID = cq.Message.Message.Chat.ID
		}
		switch cq.Data {
		case CallbackConfirm:
			ev.Kind = model.EventConfirm
		case CallbackRestart:
			ev.Kind = model.EventRestart
		default:
			return model.Event{}, false
		}
		return ev, true
	}
	return model.Event{}, false
}

func commandKind(text string) model.EventKind {
	// "/cancel@CVForgeBot" in group chats
	command := text
	if strings.HasPrefix(command, "/") {
		command, _, _ = strings.Cut(command, "@")
	}

	switch command {
	case "/start":
		return model.EventWelcome
	case ButtonStart, "/fill":
		return model.EventStart
	case ButtonBack, "/back":
		return model.EventBack
	case ButtonSkip, "/skip":
		return model.EventSkip
	case ButtonCancel, "/cancel":
		return model.EventCancel
	default:
		return model.EventAnswer
	}
}

// Sink delivers wizard responses to Telegram.
type Sink struct {
	messenger Messenger
	log       zerolog.Logger
}

func NewSink(messenger Messenger, logger zerolog.Logger) *Sink {
	return &Sink{
		messenger: messenger,
		log:       logger.With().Str("component", "telegram_sink").Logger(),
	}
}

// Deliver matches wizard.ResponseSink. Send failures are logged only.
func (s *Sink) Deliver(ctx context.Context, ev model.Event, resp model.Response) {
	log := s.log.With().Int64("user_id", ev.UserID).Str("response", resp.Kind.String()).Logger()

	if resp.Kind == model.ResponseDocumentReady && resp.Document != nil {
		if err := s.sendDocument(ctx, ev.ChatID, resp); err != nil {
			log.Error().Err(err).Str("document_id", resp.Document.ID).Msg("error sending document")
			s.send(ctx, ev.ChatID, textUploadFailed, nil, log)
		}
		return
	}

	var markup models.ReplyMarkup
	switch resp.Kind {
	case model.ResponsePrompt:
		markup = formKeyboard()
	case model.ResponsePreview:
		markup = confirmKeyboard()
	case model.ResponseWelcome:
		markup = mainKeyboard()
	case model.ResponseCancelled:
		markup = removeKeyboard()
	}
	s.send(ctx, ev.ChatID, resp.Text, markup, log)
}

func (s *Sink) send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup, log zerolog.Logger) {
	_, err := s.messenger.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        limitText(text, maxMessageLength),
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Error().Err(err).Msg("error sending message")
	}
}

// limitText cuts text to at most max UTF-16 code units, ending it with an
// ellipsis when anything was dropped.
func limitText(text string, max int) string {
	const ellipsis = "…"
	units := 0
	cut := -1
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if cut < 0 && units+n > max-1 {
			cut = i
		}
		units += n
		if units > max {
			return strings.TrimRight(text[:cut], " \n") + ellipsis
		}
	}
	return text
}

func (s *Sink) sendDocument(ctx context.Context, chatID int64, resp model.Response) error {
	doc := resp.Document
	f, err := os.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("error opening document: %w", err)
	}
	defer f.Close()

	_, err = s.messenger.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:      chatID,
		Document:    &models.InputFileUpload{Filename: doc.Filename, Data: f},
		Caption:     resp.Text,
		ReplyMarkup: mainKeyboard(),
	})
	if err != nil {
		return err
	}

	// delivered documents are not kept
	if err := os.Remove(doc.Path); err != nil {
		s.log.Warn().Err(err).Str("path", doc.Path).Msg("error removing delivered document")
	}
	return nil
}
