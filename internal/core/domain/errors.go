package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Authentication Errors.

	// ErrAuthRequired indicates no credential is available: neither an API
	// key nor a persisted OAuth credential file was found. Fatal at startup.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the stored access token has expired.
	// Normally recovered automatically by a refresh.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrTokenRefreshFailed indicates the token refresh call failed.
	// The caller must re-authenticate out-of-band.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Upstream Errors.

	// ErrRateLimited indicates the generation API rate limit was exceeded.
	// Retried with bounded exponential backoff before surfacing.
	ErrRateLimited = errors.New("rate limited")

	// ErrProjectResolution indicates the project-scoped assistant onboarding
	// handshake failed. Fatal to the current call, retried on the next one.
	ErrProjectResolution = errors.New("project resolution failed")

	// Acquisition Errors.

	// ErrNoContent indicates no readable article content could be extracted
	// from a fetched page.
	ErrNoContent = errors.New("no extractable content")
)
