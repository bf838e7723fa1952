// Package orchestrator drives a task through its primary backend and, when
// that fails, a single degraded attempt on the fallback backend.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealershipai/clarity/pkg/accounting"
	"github.com/dealershipai/clarity/pkg/backend"
	"github.com/dealershipai/clarity/pkg/cache"
	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/metrics"
	"github.com/dealershipai/clarity/pkg/router"
	"github.com/dealershipai/clarity/pkg/task"
	"github.com/dealershipai/clarity/pkg/verify"
)

// Handles resolves backend ids to live handles.
type Handles interface {
	Get(ctx context.Context, id string) (backend.Generator, error)
}

// Engine executes tasks. It is safe for concurrent use; Execute calls share
// nothing but the handle source and the optional cache.
type Engine struct {
	card    *config.RateCard
	router  *router.Router
	handles Handles

	cache    cache.Cache
	verifier verify.Verifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	newID    func() string

	attemptTimeout  time.Duration
	cacheTimeout    time.Duration
	cacheLimit      int
	maxOutputTokens int
	recordContext   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCache sets the context cache consulted on failover.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithVerifier sets the cross-verification hook used by Verify.
func WithVerifier(v verify.Verifier) Option {
	return func(e *Engine) {
		if v != nil {
			e.verifier = v
		}
	}
}

// WithAttemptTimeout bounds each backend invocation.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.attemptTimeout = d
		}
	}
}

// WithCacheTimeout bounds the context lookup during failover.
func WithCacheTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.cacheTimeout = d
		}
	}
}

// WithCacheLimit sets how many context entries a failover requests.
func WithCacheLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheLimit = n
		}
	}
}

// WithMaxOutputTokens sets the output bound passed to backends.
func WithMaxOutputTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxOutputTokens = n
		}
	}
}

// WithContextRecording stores successful non-degraded outputs in the cache
// when it also implements cache.Recorder.
func WithContextRecording(enabled bool) Option {
	return func(e *Engine) {
		e.recordContext = enabled
	}
}

// WithExecution applies the execution settings from configuration.
func WithExecution(cfg config.ExecutionConfig) Option {
	return func(e *Engine) {
		WithAttemptTimeout(cfg.AttemptTimeout())(e)
		WithCacheTimeout(cfg.CacheTimeout())(e)
		WithCacheLimit(cfg.CacheLimit)(e)
		WithMaxOutputTokens(cfg.MaxOutputTokens)(e)
		WithContextRecording(cfg.RecordContext)(e)
	}
}

// WithIDGenerator replaces the task id generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New creates an engine routing over card and resolving handles through handles.
func New(card *config.RateCard, handles Handles, opts ...Option) *Engine {
	defaults := config.DefaultExecutionConfig()
	e := &Engine{
		card:            card,
		router:          router.New(card),
		handles:         handles,
		verifier:        verify.Noop{},
		logger:          zap.NewNop(),
		newID:           uuid.NewString,
		attemptTimeout:  defaults.AttemptTimeout(),
		cacheTimeout:    defaults.CacheTimeout(),
		cacheLimit:      defaults.CacheLimit,
		maxOutputTokens: defaults.MaxOutputTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Router returns the classifier the engine routes with.
func (e *Engine) Router() *router.Router {
	return e.router
}

// Execute runs t and returns its result. The returned error is always an
// *Error: invalid tasks are rejected before any backend call, and at most two
// backend invocations are made.
func (e *Engine) Execute(ctx context.Context, t task.Task) (task.Result, error) {
	if t.ID == "" {
		t.ID = e.newID()
	}
	log := e.logger.With(zap.String("task_id", t.ID), zap.String("kind", string(t.Kind)))

	if err := t.Validate(); err != nil {
		log.Debug("rejecting invalid task", zap.Error(err))
		kind := string(t.Kind)
		if !t.Kind.Valid() {
			kind = metrics.InvalidKind
		}
		e.metrics.ObserveExecution(kind, "", metrics.OutcomeInvalid)
		return task.Result{}, &Error{Kind: KindInvalidTask, TaskID: t.ID, Cause: err}
	}

	decision, err := e.router.Classify(t)
	if err != nil {
		log.Error("routing failed", zap.Error(err))
		e.metrics.ObserveExecution(string(t.Kind), "", metrics.OutcomeFailed)
		return task.Result{}, &Error{Kind: KindBackendFailed, TaskID: t.ID, Cause: fmt.Errorf("route task: %w", err)}
	}

	native := backend.Prompt{System: SystemPrompt(t.Kind), Input: t.Input}
	out, primary, primaryErr := e.attempt(ctx, decision.Primary, native, false)
	attempts := []task.Attempt{primary}
	if primaryErr == nil {
		r := e.result(t, decision.Primary, native, out, primary, false, attempts)
		e.record(ctx, log, t, r)
		return r, nil
	}

	log.Warn("primary backend failed",
		zap.String("backend", decision.Primary),
		zap.String("failure", primary.Failure),
		zap.Int64("latency_ms", primary.LatencyMs),
		zap.Error(primaryErr))

	if !decision.HasFallback() {
		e.metrics.ObserveExecution(string(t.Kind), decision.Primary, metrics.OutcomeFailed)
		return task.Result{}, &Error{
			Kind:       KindBackendFailed,
			TaskID:     t.ID,
			Primary:    decision.Primary,
			PrimaryErr: primaryErr,
			Attempts:   attempts,
		}
	}

	e.metrics.ObserveFailover(decision.Primary, primary.Failure)
	degraded := e.degrade(ctx, log, t)

	out, fallback, fallbackErr := e.attempt(ctx, decision.Fallback, degraded, true)
	attempts = append(attempts, fallback)
	if fallbackErr != nil {
		log.Error("fallback backend failed",
			zap.String("primary", decision.Primary),
			zap.String("backend", decision.Fallback),
			zap.String("failure", fallback.Failure),
			zap.Error(fallbackErr))
		e.metrics.ObserveExecution(string(t.Kind), decision.Fallback, metrics.OutcomeFailed)
		return task.Result{}, &Error{
			Kind:        KindFallbackExhausted,
			TaskID:      t.ID,
			Primary:     decision.Primary,
			Fallback:    decision.Fallback,
			PrimaryErr:  primaryErr,
			FallbackErr: fallbackErr,
			Attempts:    attempts,
		}
	}

	log.Info("served by fallback backend",
		zap.String("primary", decision.Primary),
		zap.String("backend", decision.Fallback),
		zap.Int64("latency_ms", fallback.LatencyMs))
	return e.result(t, decision.Fallback, degraded, out, fallback, true, attempts), nil
}

// Verify runs the configured cross-verification hook.
func (e *Engine) Verify(ctx context.Context, t task.Task, r task.Result) (bool, error) {
	return e.verifier.Verify(ctx, t, r)
}

// attempt invokes one backend under the attempt timeout.
func (e *Engine) attempt(ctx context.Context, id string, prompt backend.Prompt, fallback bool) (string, task.Attempt, error) {
	a := task.Attempt{Backend: id, Fallback: fallback}
	timer := accounting.StartTimer()

	var out string
	h, err := e.handles.Get(ctx, id)
	if err == nil {
		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		out, err = h.Generate(attemptCtx, prompt, e.maxOutputTokens)
		cancel()
	}

	elapsed := timer.Elapsed()
	a.LatencyMs = elapsed.Milliseconds()
	e.metrics.ObserveAttempt(id, err == nil, elapsed)
	if err != nil {
		a.Failure = string(backend.Classify(err))
		a.Error = err.Error()
	}
	return out, a, err
}

// degrade builds the fallback prompt. A failed or slow context lookup only
// means the prompt carries no extra context.
func (e *Engine) degrade(ctx context.Context, log *zap.Logger, t task.Task) backend.Prompt {
	p := backend.Prompt{System: SystemPrompt(t.Kind) + FailoverMarker, Input: t.Input}
	if e.cache == nil {
		return p
	}

	entries, err := e.lookup(ctx, t.Input)
	if err != nil {
		log.Warn("context retrieval failed", zap.Error(err))
		e.metrics.CacheLookupFailed()
		return p
	}
	p.Input = DegradedInput(cache.Contents(entries), t.Input)
	return p
}

type lookupResult struct {
	entries []cache.Entry
	err     error
}

// lookup queries the cache and stops waiting at the cache timeout even if
// the cache ignores its context.
func (e *Engine) lookup(ctx context.Context, query string) ([]cache.Entry, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, e.cacheTimeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		entries, err := e.cache.Lookup(lookupCtx, query, e.cacheLimit)
		done <- lookupResult{entries: entries, err: err}
	}()

	select {
	case r := <-done:
		return r.entries, r.err
	case <-lookupCtx.Done():
		return nil, fmt.Errorf("context lookup: %w", lookupCtx.Err())
	}
}

// result accounts the producing attempt. Failed attempts are not billed.
// Vectors from an embedding backend are not generated text; only the input is billed.
func (e *Engine) result(t task.Task, id string, prompt backend.Prompt, out string, a task.Attempt, degraded bool, attempts []task.Attempt) task.Result {
	rate, _ := e.card.Lookup(id)

	billed := out
	if rate.QualityTier == config.TierEmbedding {
		billed = ""
	}
	usage := accounting.Account(rate, prompt.Input, billed, time.Duration(a.LatencyMs)*time.Millisecond)

	confidence := rate.Confidence
	outcome := metrics.OutcomeSuccess
	if degraded {
		confidence = task.DegradedConfidence
		outcome = metrics.OutcomeDegraded
	}
	e.metrics.ObserveExecution(string(t.Kind), id, outcome)
	e.metrics.ObserveUsage(id, usage.TokensConsumed, usage.CostEstimate)

	return task.Result{
		TaskID:         t.ID,
		Output:         out,
		BackendUsed:    id,
		TokensConsumed: usage.TokensConsumed,
		CostEstimate:   usage.CostEstimate,
		LatencyMs:      a.LatencyMs,
		Confidence:     confidence,
		Degraded:       degraded,
		Attempts:       attempts,
	}
}

// record stores a nominal result as context for later failovers.
func (e *Engine) record(ctx context.Context, log *zap.Logger, t task.Task, r task.Result) {
	if !e.recordContext || r.Output == "" {
		return
	}
	if rate, _ := e.card.Lookup(r.BackendUsed); rate.QualityTier == config.TierEmbedding {
		return
	}
	recorder, ok := e.cache.(cache.Recorder)
	if !ok {
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, e.cacheTimeout)
	defer cancel()
	if err := recorder.Store(storeCtx, cache.Entry{Query: t.Input, Content: r.Output}); err != nil {
		log.Debug("context recording failed", zap.Error(err))
	}
}
