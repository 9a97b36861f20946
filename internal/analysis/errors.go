package analysis

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced to callers.
const (
	KindInput         = "input_error"
	KindRateLimited   = "rate_limited"
	KindLimitExceeded = "limit_exceeded"
	KindUpstream      = "upstream_error"
	KindInternal      = "internal_error"
)

// Error is a typed analysis failure. TokenCount is the count known when the
// failure happened, or zero when counting had not run yet.
type Error struct {
	Kind       string
	Message    string
	TokenCount int
	// StatusCode is the upstream HTTP status for KindUpstream, when known.
	StatusCode int
	Err        error
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

// HTTPStatus maps the error kind to the status an HTTP entry point returns.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInput:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewError creates a new Error.
func NewError(kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InputError reports an empty prompt or malformed request.
func InputError(message string) *Error {
	return NewError(KindInput, message, nil)
}

// RateLimitedError reports a caller inside its cooldown window.
func RateLimitedError() *Error {
	return NewError(KindRateLimited, "rate limit exceeded, please wait before retrying", nil)
}

// LimitExceededError reports a prompt at or above the hard token cap.
func LimitExceededError(tokenCount, limit int) *Error {
	e := NewError(KindLimitExceeded,
		fmt.Sprintf("prompt is %d tokens, limit is %d", tokenCount, limit), nil)
	e.TokenCount = tokenCount
	return e
}

// AsError returns err as an *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return NewError(KindInternal, "unexpected failure", err)
}

func isKind(err error, kind string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// IsInputError returns true if err is an input error.
func IsInputError(err error) bool { return isKind(err, KindInput) }

// IsRateLimited returns true if err is a rate-limit rejection.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }

// IsLimitExceeded returns true if err is a token-cap rejection.
func IsLimitExceeded(err error) bool { return isKind(err, KindLimitExceeded) }

// IsUpstreamError returns true if err is an LLM call failure.
func IsUpstreamError(err error) bool { return isKind(err, KindUpstream) }

// IsInternalError returns true if err is an internal consistency failure.
func IsInternalError(err error) bool { return isKind(err, KindInternal) }
