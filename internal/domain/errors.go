package domain

import "errors"

var (
	// ErrRateLimited rejects a submission over the hourly budget. Never
	// persisted as a task failure.
	ErrRateLimited = errors.New("hourly rate limit exceeded")

	// ErrInvalidURL rejects a malformed URL or an unrecognized platform.
	ErrInvalidURL = errors.New("invalid or unsupported url")

	// ErrNotFound signals a store operation against a missing task row.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTransition rejects a status edge outside the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)
