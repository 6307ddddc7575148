package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeExpired      ErrorType = "EXPIRED"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_SERVER_ERROR"
)

// HTTPStatus maps an error class onto the status code the API answers with.
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrorTypeValidation, ErrorTypeConflict, ErrorTypeExpired:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type TypedError interface {
	error
	ErrorType() ErrorType
}

// Error is the concrete TypedError returned by services. Two errors are
// considered equal by errors.Is when type and message match, so a sentinel
// decorated with details still matches its origin.
type Error struct {
	Type    ErrorType
	Message string
	Details any
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) ErrorType() ErrorType { return e.Type }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message
}

// WithDetails returns a copy of e carrying extra payload for the response body.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e that records cause for logging.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.err = cause
	return &cp
}

func NewTypedError(message string, code ErrorType) *Error {
	return &Error{Type: code, Message: message}
}

func Validation(format string, args ...any) *Error {
	return &Error{Type: ErrorTypeValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Type: ErrorTypeForbidden, Message: fmt.Sprintf(format, args...)}
}

// InternalServerError keeps cause for the logs; clients only ever see the
// generic message.
func InternalServerError(cause error, format string, args ...any) *Error {
	return &Error{Type: ErrorTypeInternal, Message: fmt.Sprintf(format, args...), err: cause}
}
