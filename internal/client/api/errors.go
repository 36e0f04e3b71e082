package api

import (
	"errors"
)

var (
	// ErrUnavailable means the request never produced a usable response:
	// connection refused, timeout, or a 5xx from the backend.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the backend rejected the credentials and a
	// refresh attempt (if any) did not help.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformedResponse means the response body did not match the
	// documented envelope shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// RemoteError is an application-level failure reported by the backend inside
// a well-formed envelope.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// FallbackErrorMessage is shown when no better message can be extracted.
const FallbackErrorMessage = "something went wrong, please try again"

// UnavailableErrorMessage is shown for transient transport failures.
const UnavailableErrorMessage = "server unavailable, please try again later"

// ErrorMessage converts any error into a human-readable string. It never
// panics and never returns an empty string, whatever shape err has.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return UnavailableErrorMessage
	}
	if errors.Is(err, ErrUnauthorized) {
		return "session expired, please sign in again"
	}
	return FallbackErrorMessage
}
