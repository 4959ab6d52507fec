package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvariant    Kind = "INVARIANT_VIOLATION"
	KindPrecondition Kind = "PRECONDITION_FAILED"
	KindConflict     Kind = "CONFLICT"
	KindCollaborator Kind = "COLLABORATOR_ERROR"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// AppError is the service-layer error contract. Message is safe to show to
// the caller; Err keeps the underlying cause for logs only.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError   { return New(KindValidation, message) }
func NotFound(message string) *AppError     { return New(KindNotFound, message) }
func Invariant(message string) *AppError    { return New(KindInvariant, message) }
func Precondition(message string) *AppError { return New(KindPrecondition, message) }
func Conflict(message string) *AppError     { return New(KindConflict, message) }

// Collaborator wraps an upstream AI failure. The upstream error body is
// never exposed to the caller, only logged.
func Collaborator(err error) *AppError {
	return Wrap(KindCollaborator, "The AI assistant is temporarily unavailable. Please try again.", err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
