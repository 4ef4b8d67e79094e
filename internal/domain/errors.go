package domain

import "errors"

var (
	// ErrRateLimited marks an upstream rate-limit response. Callers treat it as
	// a recoverable per-item failure.
	ErrRateLimited = errors.New("upstream rate limit reached")

	// ErrNotFound marks a symbol the upstream does not know.
	ErrNotFound = errors.New("symbol not found")
)
