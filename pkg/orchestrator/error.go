package orchestrator

import (
	"errors"
	"fmt"

	"github.com/dealershipai/clarity/pkg/task"
)

// ErrorKind distinguishes a request the caller should fix from one that
// failed because backends were unavailable.
type ErrorKind string

const (
	// KindInvalidTask is returned before any backend is called.
	KindInvalidTask ErrorKind = "invalid_task"
	// KindFallbackExhausted means both primary and fallback failed.
	KindFallbackExhausted ErrorKind = "fallback_exhausted"
	// KindBackendFailed means a route without a fallback failed.
	KindBackendFailed ErrorKind = "backend_failed"
)

// Error is the single error type returned by Execute.
type Error struct {
	Kind        ErrorKind
	TaskID      string
	Primary     string
	Fallback    string
	PrimaryErr  error
	FallbackErr error
	Cause       error
	Attempts    []task.Attempt
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidTask:
		return fmt.Sprintf("task %s: invalid task: %v", e.TaskID, e.Cause)
	case KindFallbackExhausted:
		return fmt.Sprintf("task %s: both primary %s and fallback %s failed: primary: %v; fallback: %v",
			e.TaskID, e.Primary, e.Fallback, e.PrimaryErr, e.FallbackErr)
	default:
		if e.PrimaryErr != nil {
			return fmt.Sprintf("task %s: backend %s failed: %v", e.TaskID, e.Primary, e.PrimaryErr)
		}
		return fmt.Sprintf("task %s: %s: %v", e.TaskID, e.Kind, e.Cause)
	}
}

// Unwrap exposes every underlying error to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.Cause, e.PrimaryErr, e.FallbackErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsInvalidTask reports whether err rejects the task itself.
func IsInvalidTask(err error) bool {
	return hasKind(err, KindInvalidTask)
}

// IsFallbackExhausted reports whether err means both backends failed.
func IsFallbackExhausted(err error) bool {
	return hasKind(err, KindFallbackExhausted)
}

func hasKind(err error, kind ErrorKind) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Kind == kind
}
