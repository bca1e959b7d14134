// Package domerrors defines the typed errors surfaced by the loyalty domain.
// Services return these instead of throwing generic failures so callers can
// tell a user-input problem (fix and resubmit) from a backend problem
// (operator must intervene).
package domerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeUnknownCoupon      Code = "UNKNOWN_COUPON"
	CodeInvalidAmount      Code = "INVALID_AMOUNT"
	CodeInsufficientPoints Code = "INSUFFICIENT_POINTS"
	CodeDuplicateCoupon    Code = "DUPLICATE_COUPON"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeTimeout            Code = "TIMEOUT"
	CodeInternal           Code = "INTERNAL"
)

// Error carries a code alongside the human-readable message. It wraps an
// optional cause for backend faults.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified failures.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps domain codes onto HTTP status codes for the transport
// layer. Unknown codes map to 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnknownCoupon, CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidAmount, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeInsufficientPoints:
		return http.StatusUnprocessableEntity
	case CodeDuplicateCoupon:
		return http.StatusConflict
	case CodeBackendUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
