// Package task defines the unit of work submitted to the orchestrator and the
// normalized result it produces.
package task

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies what a task asks a backend to do.
type Kind string

const (
	KindSummarize Kind = "summarize"
	KindReason    Kind = "reason"
	KindCode      Kind = "code"
	KindSchema    Kind = "schema"
	KindChat      Kind = "chat"
	KindEmbedding Kind = "embedding"
)

// Kinds lists every recognized kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSummarize, KindReason, KindCode, KindSchema, KindChat, KindEmbedding}
}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Priority is the caller's stated preference. It is carried with the task
// and recorded, but routing is decided by kind and size alone.
type Priority string

const (
	PriorityCost    Priority = "cost"
	PriorityQuality Priority = "quality"
	PrioritySpeed   Priority = "speed"
)

// Valid reports whether p is a recognized priority. The empty priority is valid.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityCost, PriorityQuality, PrioritySpeed:
		return true
	}
	return false
}

// TokenThreshold separates small summarize/chat tasks from large ones.
const TokenThreshold = 1500

var (
	ErrUnknownKind       = errors.New("unknown task kind")
	ErrEmptyInput        = errors.New("task input is required")
	ErrNegativeTokenHint = errors.New("token hint must not be negative")
	ErrUnknownPriority   = errors.New("unknown task priority")
)

// Task is immutable once submitted.
type Task struct {
	ID                       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Kind                     Kind           `json:"kind" yaml:"kind"`
	Input                    string         `json:"input" yaml:"input"`
	Context                  map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	TokenHint                *int           `json:"token_hint,omitempty" yaml:"token_hint,omitempty"`
	RequiresStructuredOutput bool           `json:"requires_structured_output,omitempty" yaml:"requires_structured_output,omitempty"`
	Priority                 Priority       `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Tokens returns the token hint, treating an absent hint as zero.
func (t Task) Tokens() int {
	if t.TokenHint == nil {
		return 0
	}
	return *t.TokenHint
}

// Large reports whether the task is at or above TokenThreshold.
func (t Task) Large() bool {
	return t.Tokens() >= TokenThreshold
}

// Validate rejects structurally invalid tasks before any backend is called.
func (t Task) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	if strings.TrimSpace(t.Input) == "" {
		return ErrEmptyInput
	}
	if t.TokenHint != nil && *t.TokenHint < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTokenHint, *t.TokenHint)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPriority, t.Priority)
	}
	return nil
}

// IntPtr returns a pointer to n, for building token hints.
func IntPtr(n int) *int {
	return &n
}
