package service

import "errors"

var (
	// ErrAttemptNotFound means no attempt matches the token. Not retryable.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrExamNotFound means the referenced exam does not exist.
	ErrExamNotFound = errors.New("exam not found")
	// ErrExamNotActive means the exam exists but is closed for registration.
	ErrExamNotActive = errors.New("exam is not active")
	// ErrInvalidTransition means a submit was attempted before the attempt was
	// ever opened. Unreachable through the normal access path.
	ErrInvalidTransition = errors.New("attempt has not been opened")
	// ErrInvalidSubmission means the transport was neither a genuine in-time
	// submission nor the implicit post-expiry one.
	ErrInvalidSubmission = errors.New("invalid submission method")
	// ErrResultNotReady means the result was requested before the attempt
	// became terminal.
	ErrResultNotReady = errors.New("attempt has not been submitted")
)
