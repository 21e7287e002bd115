// Package apperror defines the error taxonomy surfaced by the service layer
// and its mapping onto HTTP and gRPC status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Type string

const (
	TypeValidation   Type = "validation"
	TypeConflict     Type = "conflict"
	TypeNotFound     Type = "not_found"
	TypeUnauthorized Type = "unauthorized"
	TypeInternal     Type = "internal"
)

// Error carries a client-safe message. Cause is kept for logging only and
// never rendered.
type Error struct {
	Type    Type
	Message string
	Details []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeConflict:
		return http.StatusConflict
	case TypeNotFound:
		return http.StatusNotFound
	case TypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (e *Error) GRPCCode() codes.Code {
	switch e.Type {
	case TypeValidation:
		return codes.InvalidArgument
	case TypeConflict:
		return codes.AlreadyExists
	case TypeNotFound:
		return codes.NotFound
	case TypeUnauthorized:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}

func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

func Validation(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Type: TypeConflict, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Type: TypeUnauthorized, Message: message}
}

func Internal(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause}
}

// From converts any error into an *Error. Untyped errors become Internal with
// a generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	return Internal("internal server error", err)
}

func IsType(err error, t Type) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}
