package api

import (
	"encoding/json"
	"fmt"
	"io"
)

// envelope is the wire wrapper every backend response uses:
//
//	{"success": bool, "data": {...}, "error": {"message": "..."}}
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Message string `json:"message"`
}

// decodeEnvelope parses an envelope from r and unmarshals its data into T.
// A well-formed envelope with success=false yields a *RemoteError carrying
// the backend's message, or the fallback message when the error body is
// absent or empty. Bodies that are not an envelope at all yield
// ErrMalformedResponse.
func decodeEnvelope[T any](r io.Reader) (T, error) {
	var zero T

	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !env.Success {
		msg := FallbackErrorMessage
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return zero, &RemoteError{Message: msg}
	}

	var data T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	}
	return data, nil
}
