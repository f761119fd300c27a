package domain

import "errors"

var (
	// ErrInvalidRequest signals an empty or malformed question.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrServiceUnavailable signals missing configuration or credentials for a required collaborator.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrUpstreamFailure signals a failed or unparseable embedding, search, fetch or completion call.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrInternal signals any other unexpected failure.
	ErrInternal = errors.New("internal error")
)
