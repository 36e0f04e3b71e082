// Package api contains the client-side contract for the tournament platform
// backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the API interface) covering the
//     auth operations (login, register, logout, password and email flows),
//     the role registry, and a liveness probe.
//  2. A concrete HTTP implementation (see HTTPClient) that decodes the
//     platform's response envelope, attaches the access token to authorized
//     requests, transparently retries once after refreshing an expired token,
//     and maps transport failures to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrMalformedResponse.
// Application-level failures reported by the backend surface as *RemoteError.
// ErrorMessage converts any error into a string safe to show to a user.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package api
