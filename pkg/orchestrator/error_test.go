package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dealershipai/clarity/pkg/backend"
	"github.com/dealershipai/clarity/pkg/task"
)

func TestErrorMessages(t *testing.T) {
	invalid := &Error{Kind: KindInvalidTask, TaskID: "t1", Cause: task.ErrUnknownKind}
	if !strings.Contains(invalid.Error(), "invalid task") {
		t.Fatalf("unexpected message %q", invalid.Error())
	}

	exhausted := &Error{
		Kind:        KindFallbackExhausted,
		TaskID:      "t2",
		Primary:     "claude-3-haiku",
		Fallback:    "claude-3-sonnet",
		PrimaryErr:  errors.New("timeout"),
		FallbackErr: errors.New("rate limited"),
	}
	msg := exhausted.Error()
	for _, want := range []string{"claude-3-haiku", "claude-3-sonnet", "timeout", "rate limited"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestErrorClassificationThroughWrapping(t *testing.T) {
	be := &backend.Error{Backend: "gpt-4o", Class: backend.ClassAuth, Status: 401, Err: errors.New("bad key")}
	err := fmt.Errorf("ask: %w", &Error{Kind: KindFallbackExhausted, PrimaryErr: errors.New("x"), FallbackErr: be})

	if !IsFallbackExhausted(err) || IsInvalidTask(err) {
		t.Fatalf("kind helpers misclassified %v", err)
	}
	var got *backend.Error
	if !errors.As(err, &got) || got.Backend != "gpt-4o" {
		t.Fatalf("expected backend error through wrapping")
	}
	if IsFallbackExhausted(errors.New("plain")) {
		t.Fatalf("plain errors have no kind")
	}
}
