// Package verify is the extension point for cross-checking a result on an
// alternate backend. No comparison is performed by default.
package verify

import (
	"context"

	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/task"
)

// Verifier decides whether a result should be trusted.
type Verifier interface {
	Verify(ctx context.Context, t task.Task, r task.Result) (bool, error)
}

// Func adapts a function to Verifier.
type Func func(ctx context.Context, t task.Task, r task.Result) (bool, error)

// Verify calls f.
func (f Func) Verify(ctx context.Context, t task.Task, r task.Result) (bool, error) {
	return f(ctx, t, r)
}

// Noop accepts every result.
type Noop struct{}

// Verify always returns true.
func (Noop) Verify(context.Context, task.Task, task.Result) (bool, error) {
	return true, nil
}

// AlternateBackend returns the backend a verifier should re-run a result on:
// the first high-quality backend when the result came from a low-cost one,
// otherwise the first mid-tier backend. It never returns used itself.
func AlternateBackend(card *config.RateCard, used string) (string, bool) {
	b, ok := card.Lookup(used)
	if !ok {
		return "", false
	}

	tier := config.TierMidTier
	if b.QualityTier == config.TierLowCost {
		tier = config.TierHighQuality
	}
	alt, ok := card.FirstOfTier(tier, used)
	if !ok {
		return "", false
	}
	return alt.ID, true
}
