package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Class is the failure category of a backend invocation.
type Class string

const (
	ClassTimeout     Class = "timeout"
	ClassAuth        Class = "auth"
	ClassRateLimit   Class = "rate_limit"
	ClassMalformed   Class = "malformed_response"
	ClassUnavailable Class = "unavailable"
	ClassUnknown     Class = "unknown"
)

// ErrMalformedResponse reports a response with no usable content.
var ErrMalformedResponse = errors.New("malformed response")

// Error wraps a vendor failure with the backend it came from.
type Error struct {
	Backend string
	Class   Class
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "backend error"
	}
	msg := fmt.Sprintf("backend %s: %s", e.Backend, e.Class)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(backend string, status int, err error) *Error {
	e := &Error{Backend: backend, Status: status, Err: err}
	e.Class = Classify(e)
	return e
}

func malformed(backend, detail string) *Error {
	return &Error{
		Backend: backend,
		Class:   ClassMalformed,
		Err:     fmt.Errorf("%w: %s", ErrMalformedResponse, detail),
	}
}

// Classify maps an invocation error to a failure class. It returns an empty
// class for a nil error.
func Classify(err error) Class {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	if errors.Is(err, ErrMalformedResponse) {
		return ClassMalformed
	}

	var backendErr *Error
	if errors.As(err, &backendErr) {
		if backendErr.Class != "" {
			return backendErr.Class
		}
		if c := classifyStatus(backendErr.Status); c != "" {
			return c
		}
	}
	return classifyMessage(err.Error())
}

func classifyStatus(status int) Class {
	switch {
	case status == 401 || status == 403:
		return ClassAuth
	case status == 408:
		return ClassTimeout
	case status == 429:
		return ClassRateLimit
	case status >= 500 && status <= 599:
		return ClassUnavailable
	default:
		return ""
	}
}

var messagePatterns = []struct {
	class    Class
	patterns []string
}{
	{ClassRateLimit, []string{"rate_limit", "rate limit", "too many requests", "insufficient_quota", "quota exceeded"}},
	{ClassAuth, []string{"unauthorized", "invalid_api_key", "authentication", "permission denied"}},
	{ClassTimeout, []string{"timeout", "deadline exceeded"}},
	{ClassUnavailable, []string{"connection refused", "connection reset", "no such host", "service unavailable", "bad gateway", "overloaded"}},
}

func classifyMessage(msg string) Class {
	msg = strings.ToLower(msg)
	for _, group := range messagePatterns {
		for _, p := range group.patterns {
			if strings.Contains(msg, p) {
				return group.class
			}
		}
	}
	return ClassUnknown
}
