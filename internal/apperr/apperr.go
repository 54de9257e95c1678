// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error that knows how it should be rendered to an API caller.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on Code so that copies made by WithMessage or Wrap still compare
// equal to the package-level sentinels.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Message: message, Status: e.Status, Details: e.Details, cause: e.cause}
}

func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, Details: details, cause: e.cause}
}

func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, Details: e.Details, cause: cause}
}

var (
	ErrUnauthorized = &Error{
		Code:    "unauthorized",
		Message: "Authentication required",
		Status:  http.StatusUnauthorized,
	}

	ErrNotFound = &Error{
		Code:    "not_found",
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrValidation = &Error{
		Code:    "validation_error",
		Message: "Invalid request",
		Status:  http.StatusBadRequest,
	}

	ErrSessionClosed = &Error{
		Code:    "session_closed",
		Message: "Cannot add messages to a completed session",
		Status:  http.StatusConflict,
	}

	ErrAlreadyClosed = &Error{
		Code:    "already_closed",
		Message: "Session is already completed",
		Status:  http.StatusConflict,
	}

	ErrConflict = &Error{
		Code:    "conflict",
		Message: "Resource already exists",
		Status:  http.StatusConflict,
	}

	ErrPayloadTooLarge = &Error{
		Code:    "payload_too_large",
		Message: "Request body exceeds the upload limit",
		Status:  http.StatusRequestEntityTooLarge,
	}

	ErrRateLimited = &Error{
		Code:    "rate_limited",
		Message: "Too many requests. Please try again later.",
		Status:  http.StatusTooManyRequests,
	}

	ErrUpstream = &Error{
		Code:    "upstream_failure",
		Message: "A dependent service failed",
		Status:  http.StatusBadGateway,
	}

	ErrInternal = &Error{
		Code:    "internal_error",
		Message: "An internal error occurred",
		Status:  http.StatusInternalServerError,
	}
)

func NotFound(resource string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s not found", resource))
}

func Validation(field, message string) *Error {
	return ErrValidation.
		WithMessage(fmt.Sprintf("Validation failed: %s", message)).
		WithDetails(map[string]string{"field": field, "error": message})
}

func Upstream(operation string, cause error) *Error {
	return ErrUpstream.WithMessage(fmt.Sprintf("%s failed", operation)).Wrap(cause)
}

// From returns the *Error in err's chain, or ErrInternal wrapping err.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.Wrap(err)
}
