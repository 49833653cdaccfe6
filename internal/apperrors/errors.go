package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. Primary-path errors carry
// exactly one of these; reverse-side correction failures are never
// surfaced through this package.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindPersistence Kind = "persistence"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewPersistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

func kindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

func IsConflict(err error) bool {
	return kindOf(err) == KindConflict
}

func IsPersistence(err error) bool {
	return kindOf(err) == KindPersistence
}

// MessageOf returns the short human-readable cause carried by a
// classified error, or the raw error text for anything else.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
