package output

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured error with code, message, and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Retryable  bool
	Cause      error

	// Set only for CodeRoleMismatch.
	ExpectedRole string
	ActualRole   string
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for common cases.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		HTTPStatus: 404,
	}
}

func ErrAuth(msg string) *Error {
	return &Error{
		Code:       CodeAuth,
		Message:    msg,
		Hint:       "Run: gbk auth login",
		HTTPStatus: 401,
	}
}

func ErrForbidden(msg string) *Error {
	return &Error{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: 403,
	}
}

func ErrConflict(msg string) *Error {
	if msg == "" {
		msg = "This resource is no longer available"
	}
	return &Error{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: 409,
	}
}

func ErrValidation(msg string) *Error {
	if msg == "" {
		msg = "Invalid data provided"
	}
	return &Error{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: 422,
	}
}

func ErrRateLimit(retryAfter int) *Error {
	hint := "Try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("Try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "Rate limited",
		Hint:       hint,
		HTTPStatus: 429,
		Retryable:  true,
	}
}

func ErrServer(status int, msg string) *Error {
	if msg == "" {
		msg = fmt.Sprintf("Server error (%d)", status)
	}
	return &Error{
		Code:       CodeServer,
		Message:    msg,
		HTTPStatus: status,
	}
}

func ErrNetwork(cause error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network error",
		Hint:      cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}

func ErrCancelled(msg string) *Error {
	return &Error{
		Code:    CodeCancelled,
		Message: msg,
	}
}

func ErrRoleMismatch(expected, actual string) *Error {
	return &Error{
		Code:         CodeRoleMismatch,
		Message:      fmt.Sprintf("Account role is %s, expected %s", actual, expected),
		Hint:         "Switch to the matching account tab and log in again",
		ExpectedRole: expected,
		ActualRole:   actual,
	}
}

// FromStatus classifies an HTTP error status into the taxonomy. serverMsg is
// the message extracted from the response body, passed through verbatim where
// the taxonomy allows it.
func FromStatus(status int, serverMsg string) *Error {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuth("Authentication required. Please log in again.")
	case http.StatusForbidden:
		return ErrForbidden("You do not have permission to perform this action")
	case http.StatusNotFound:
		msg := serverMsg
		if msg == "" {
			msg = "Resource not found"
		}
		return &Error{Code: CodeNotFound, Message: msg, HTTPStatus: 404}
	case http.StatusConflict:
		return ErrConflict(serverMsg)
	case http.StatusUnprocessableEntity:
		return ErrValidation(serverMsg)
	case http.StatusTooManyRequests:
		return ErrRateLimit(0)
	default:
		if status >= 500 {
			return ErrServer(status, serverMsg)
		}
		msg := serverMsg
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d", status)
		}
		return &Error{Code: CodeServer, Message: msg, HTTPStatus: status}
	}
}

// AsError attempts to convert an error to an *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeServer,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
