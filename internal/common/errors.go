// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Vision adapter errors. ErrAdapter covers any failure to obtain an
	// observation; ErrObservationTimeout is an adapter failure caused by the
	// bounded observation deadline. Both guarantee no state was mutated.
	ErrAdapter            = errors.New("observation unavailable")
	ErrObservationTimeout = fmt.Errorf("%w: observation timed out", ErrAdapter)
	ErrRateLimit          = errors.New("rate limit exceeded")

	// Evaluation errors: malformed definition or observation payload.
	ErrEvaluation = errors.New("evaluation failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RepositoryError wraps a persistence failure. The engine must not assume
// its in-memory state is durable when one of these surfaces.
type RepositoryError struct {
	Err error
	Op  string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError wraps err with the failing storage operation name.
func NewRepositoryError(op string, err error) error {
	return &RepositoryError{Op: op, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage extracts the short human-readable message for err, falling
// back to a generic line so raw internals never reach the end user verbatim.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	switch {
	case errors.Is(err, ErrObservationTimeout):
		return "The camera took too long to answer. Nothing was recorded."
	case errors.Is(err, ErrAdapter):
		return "Couldn't get a look at the spot. Nothing was recorded."
	case errors.Is(err, ErrEvaluation):
		return "Couldn't make sense of the check. Nothing was recorded."
	case errors.Is(err, ErrNotFound):
		return "That spot doesn't exist."
	}
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return "Saving the check failed. The previous state is unchanged."
	}
	return "Something went wrong. Nothing was recorded."
}

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
