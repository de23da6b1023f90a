package domain

import "errors"

var (
	// ErrInvalidRequest is returned when required request parameters are missing
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrAuthFailed is returned when the catalog auth endpoint does not hand out a token
	ErrAuthFailed = errors.New("catalog authentication failed")

	// ErrUpstreamFailure is returned when an upstream call fails, answers with a
	// non-2xx status or returns a body that cannot be decoded
	ErrUpstreamFailure = errors.New("upstream request failed")
)
