package billing

import (
	"errors"
)

// Error codes, mapped to HTTP statuses by the handler layer.
const (
	CodeValidation  = "VALIDATION"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodePersistence = "PERSISTENCE"
)

// Error is a coded engine error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func NewPersistenceError(message string) *Error {
	return &Error{Code: CodePersistence, Message: message}
}

// CodeOf returns the engine error code, or PERSISTENCE for anything that is
// not a coded error (driver failures, context cancellation and the like).
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodePersistence
}
