package model

// EventKind identifies an inbound user action.
type EventKind int

const (
	EventWelcome EventKind = iota
	EventStart
	EventCancel
	EventBack
	EventSkip
	EventAnswer
	EventConfirm
	EventRestart
)

var eventKindNames = map[EventKind]string{
	EventWelcome: "welcome",
	EventStart:   "start",
	EventCancel:  "cancel",
	EventBack:    "back",
	EventSkip:    "skip",
	EventAnswer:  "answer",
	EventConfirm: "confirm",
	EventRestart: "restart",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one inbound user action. Text is the answer for EventAnswer.
type Event struct {
	UserID int64
	ChatID int64
	Kind   EventKind
	Text   string
}

// ResponseKind identifies an outbound message.
type ResponseKind int

const (
	ResponsePrompt ResponseKind = iota
	ResponseInfo
	ResponsePreview
	ResponseError
	ResponseDocumentReady
	ResponseCancelled
	ResponseWelcome
)

var responseKindNames = map[ResponseKind]string{
	ResponsePrompt:        "prompt",
	ResponseInfo:          "info",
	ResponsePreview:       "preview",
	ResponseError:         "error",
	ResponseDocumentReady: "document_ready",
	ResponseCancelled:     "cancelled",
	ResponseWelcome:       "welcome",
}

func (k ResponseKind) String() string {
	if name, ok := responseKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Response is one outbound message produced by the wizard.
type Response struct {
	Kind     ResponseKind
	Text     string
	Field    *FieldSpec      // set for prompts
	Document *DocumentHandle // set for ResponseDocumentReady
}

// DocumentHandle points at a rendered document.
type DocumentHandle struct {
	ID       string
	Path     string
	Filename string
}
