package router

import (
	"fmt"

	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/task"
)

// policy is the tier pairing chosen by one routing rule.
type policy struct {
	rule     int
	reason   string
	primary  config.Tier
	fallback config.Tier // empty means no fallback
}

// selectPolicy applies the routing rules in order; the first match wins.
func selectPolicy(t task.Task) policy {
	switch {
	case (t.Kind == task.KindSummarize || t.Kind == task.KindChat) && !t.Large():
		return policy{1, "small summarize/chat", config.TierLowCost, config.TierMidTier}
	case t.Kind == task.KindSummarize || t.Kind == task.KindChat:
		return policy{2, "large summarize/chat", config.TierMidTier, config.TierHighQuality}
	case t.Kind == task.KindReason || t.RequiresStructuredOutput:
		return policy{3, "reasoning or structured output", config.TierHighQuality, config.TierMidTier}
	case t.Kind == task.KindCode:
		return policy{4, "code generation", config.TierCode, config.TierHighQuality}
	case t.Kind == task.KindSchema:
		return policy{5, "schema generation", config.TierHighQuality, config.TierMidTier}
	case t.Kind == task.KindEmbedding:
		return policy{6, "embedding", config.TierEmbedding, ""}
	default:
		return policy{7, "default", config.TierLowCost, config.TierMidTier}
	}
}

// classify resolves a task to concrete backends on the card.
// It performs no I/O and depends only on kind, token hint and the
// structured-output flag.
func classify(card *config.RateCard, t task.Task) (Decision, error) {
	p := selectPolicy(t)

	primary, ok := card.FirstOfTier(p.primary)
	if !ok {
		return Decision{}, fmt.Errorf("rule %d: no %s backend on rate card", p.rule, p.primary)
	}

	d := Decision{Rule: p.rule, Reason: p.reason, Primary: primary.ID}
	if p.fallback == "" {
		return d, nil
	}

	fallback, ok := card.FirstOfTier(p.fallback, primary.ID)
	if !ok {
		return Decision{}, fmt.Errorf("rule %d: no %s fallback distinct from %s", p.rule, p.fallback, primary.ID)
	}
	d.Fallback = fallback.ID
	return d, nil
}
