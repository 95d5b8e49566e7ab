package model

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound  = errors.New("answer record does not exist")
	ErrNoActiveSession = errors.New("no active form session")
	ErrNoPreviousField = errors.New("already at the first field")
)

// InvalidFieldError is returned when a write targets a name outside the catalog.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field name: %s", e.Field)
}

// IsInvalidField reports whether err is or wraps an InvalidFieldError.
func IsInvalidField(err error) bool {
	var target *InvalidFieldError
	return errors.As(err, &target)
}
