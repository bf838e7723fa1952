package backend

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Mock returns deterministic responses for local runs and tests.
type Mock struct {
	id              string
	embedding       bool
	defaultResponse string

	mu        sync.Mutex
	responses map[string]string
	failures  []error
	err       error
	delay     time.Duration
	prompts   []Prompt
}

// NewMock creates a mock text backend.
func NewMock(id string) *Mock {
	return &Mock{
		id:              id,
		defaultResponse: "mock response:",
		responses:       make(map[string]string),
	}
}

// NewMockEmbedding creates a mock embedding backend.
func NewMockEmbedding(id string) *Mock {
	m := NewMock(id)
	m.embedding = true
	return m
}

// Name returns the rate card id.
func (m *Mock) Name() string {
	return m.id
}

// Respond sets the output returned for an exact input.
func (m *Mock) Respond(input, output string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = output
	return m
}

// FailWith makes every call fail with err.
func (m *Mock) FailWith(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// FailNext queues errors returned by the next calls, before any FailWith error.
func (m *Mock) FailNext(errs ...error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
	return m
}

// Delay makes each call wait d or until the context is done.
func (m *Mock) Delay(d time.Duration) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// Calls returns how many times Generate or Embed has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns the prompts received so far.
func (m *Mock) Prompts() []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Generate returns the scripted output for the prompt input.
func (m *Mock) Generate(ctx context.Context, prompt Prompt, _ int) (string, error) {
	if err := m.begin(ctx, prompt); err != nil {
		return "", err
	}
	if m.embedding {
		return renderVector(m.id, mockVector(prompt.Input))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if response, ok := m.responses[prompt.Input]; ok {
		return response, nil
	}
	return fmt.Sprintf("%s\n%s", m.defaultResponse, prompt.Input), nil
}

// Embed returns a deterministic vector derived from text.
func (m *Mock) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := m.begin(ctx, Prompt{Input: text}); err != nil {
		return nil, err
	}
	return mockVector(text), nil
}

func (m *Mock) begin(ctx context.Context, prompt Prompt) error {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	delay := m.delay
	var err error
	if len(m.failures) > 0 {
		err = m.failures[0]
		m.failures = m.failures[1:]
	} else {
		err = m.err
	}
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return newError(m.id, 0, ctx.Err())
		case <-timer.C:
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func mockVector(text string) []float64 {
	vec := make([]float64, 8)
	for i := range vec {
		h := fnv.New32a()
		_, _ = fmt.Fprintf(h, "%d:%s", i, text)
		vec[i] = float64(h.Sum32()%1000) / 1000
	}
	return vec
}
