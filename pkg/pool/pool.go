// Package pool holds the process-wide backend handles. Each handle is built
// lazily on first use and reused for the lifetime of the pool.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dealershipai/clarity/pkg/backend"
	"github.com/dealershipai/clarity/pkg/config"
)

// ErrUnknownBackend is returned for an id not on the rate card.
var ErrUnknownBackend = errors.New("unknown backend")

// Pool maps backend ids to handles. At most one handle is constructed per id,
// even under concurrent first use.
type Pool struct {
	card    *config.RateCard
	factory backend.Factory
	logger  *zap.Logger
	onNew   func(id string)

	mu      sync.RWMutex
	handles map[string]backend.Generator
	group   singleflight.Group
	created atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOnCreate registers a hook called once per constructed handle.
func WithOnCreate(fn func(id string)) Option {
	return func(p *Pool) {
		p.onNew = fn
	}
}

// New creates an empty pool for the backends on card.
func New(card *config.RateCard, factory backend.Factory, opts ...Option) *Pool {
	p := &Pool{
		card:    card,
		factory: factory,
		logger:  zap.NewNop(),
		handles: make(map[string]backend.Generator),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the handle for id, constructing it on first use. A failed
// construction is not remembered; the next call tries again.
func (p *Pool) Get(ctx context.Context, id string) (backend.Generator, error) {
	if h, ok := p.lookup(id); ok {
		return h, nil
	}

	b, ok := p.card.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, id)
	}

	v, err, _ := p.group.Do(id, func() (any, error) {
		// A caller that missed the fast path may arrive after the handle was stored.
		if h, ok := p.lookup(id); ok {
			return h, nil
		}

		h, err := p.factory(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("create handle for %s: %w", id, err)
		}
		if h == nil {
			return nil, fmt.Errorf("create handle for %s: factory returned nil", id)
		}

		p.mu.Lock()
		p.handles[id] = h
		p.mu.Unlock()

		p.created.Add(1)
		p.logger.Debug("backend handle created", zap.String("backend", id), zap.String("vendor", b.Vendor))
		if p.onNew != nil {
			p.onNew(id)
		}
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(backend.Generator), nil
}

// Created returns how many handles have been constructed.
func (p *Pool) Created() int {
	return int(p.created.Load())
}

// RateCard returns the card the pool resolves ids against.
func (p *Pool) RateCard() *config.RateCard {
	return p.card
}

func (p *Pool) lookup(id string) (backend.Generator, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.handles[id]
	return h, ok
}
