package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache bounded to a fixed number of entries.
type Memory struct {
	mu       sync.RWMutex
	entries  []Entry
	maxItems int
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxMemoryItems sets the maximum number of entries to keep.
func WithMaxMemoryItems(max int) MemoryOption {
	return func(m *Memory) {
		if max > 0 {
			m.maxItems = max
		}
	}
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{maxItems: 1000}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup returns up to limit entries relevant to query.
func (m *Memory) Lookup(ctx context.Context, query string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	candidates := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		candidates = append(candidates, m.entries[i])
	}
	m.mu.RUnlock()

	return rank(candidates, query, limit), nil
}

// Store adds an entry, dropping the oldest entries beyond capacity.
func (m *Memory) Store(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Relevance = 0

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	if len(m.entries) > m.maxItems {
		m.entries = m.entries[len(m.entries)-m.maxItems:]
	}
	return nil
}

// Count returns the number of stored entries.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
