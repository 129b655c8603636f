// Package apperr defines the error taxonomy shared by the workflow engine and
// the HTTP layer. Every error that reaches a client carries a stable Code and
// a Message that is safe to display.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "validation"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Validation(message string) *Error { return New(CodeValidation, message, nil) }

func Unauthorized(message string) *Error { return New(CodeUnauthorized, message, nil) }

func Forbidden(message string) *Error { return New(CodeForbidden, message, nil) }

func NotFound(message string) *Error { return New(CodeNotFound, message, nil) }

func Conflict(message string) *Error { return New(CodeConflict, message, nil) }

func RateLimited(message string) *Error { return New(CodeRateLimited, message, nil) }

func Internal(message string, err error) *Error { return New(CodeInternal, message, err) }

// CodeOf reports the code of the first *Error in err's chain, or CodeInternal
// for anything unclassified.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// MessageOf returns the display message for err. Unclassified errors never
// leak their text.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
