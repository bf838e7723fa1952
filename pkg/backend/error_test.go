package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: ClassTimeout},
		{name: "net timeout", err: timeoutErr{}, want: ClassTimeout},
		{name: "malformed sentinel", err: malformed("x", "no choices"), want: ClassMalformed},
		{name: "status 401", err: newError("x", 401, errors.New("denied")), want: ClassAuth},
		{name: "status 403", err: newError("x", 403, errors.New("denied")), want: ClassAuth},
		{name: "status 429", err: newError("x", 429, errors.New("slow down")), want: ClassRateLimit},
		{name: "status 503", err: newError("x", 503, errors.New("down")), want: ClassUnavailable},
		{name: "message rate limit", err: errors.New("429 Too Many Requests"), want: ClassRateLimit},
		{name: "message connection", err: errors.New("dial tcp: connection refused"), want: ClassUnavailable},
		{name: "message auth", err: errors.New("invalid_api_key provided"), want: ClassAuth},
		{name: "unknown", err: errors.New("boom"), want: ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := newError("gpt-4o", 0, context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error")
	}
	var be *Error
	if !errors.As(fmt.Errorf("outer: %w", err), &be) || be.Backend != "gpt-4o" {
		t.Fatalf("expected backend error for gpt-4o, got %v", err)
	}
	if be.Class != ClassTimeout {
		t.Fatalf("expected timeout class, got %s", be.Class)
	}
}
