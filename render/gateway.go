// Package render turns a completed answer record into a document.
package render

import (
	"context"
	"errors"

	"CVForgeBot/model"
)

// Gateway renders a record for a user.
type Gateway interface {
	Render(ctx context.Context, record model.AnswerRecord, userID int64) (model.DocumentHandle, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, record model.AnswerRecord, userID int64) (model.DocumentHandle, error)

func (f GatewayFunc) Render(ctx context.Context, record model.AnswerRecord, userID int64) (model.DocumentHandle, error) {
	return f(ctx, record, userID)
}

// Error is a render failure. It is safe to show Message to the user, and the
// same record can be rendered again.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Failed wraps err as a render Error with message.
func Failed(message string, err error) error {
	return &Error{Message: message, Err: err}
}

// AsError extracts the render Error from err.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
