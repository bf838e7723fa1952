// Package router maps tasks to a primary and fallback backend under the
// cost/quality policy of a rate card.
package router

import (
	"fmt"

	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/task"
)

// Router classifies tasks against a fixed rate card. It holds no mutable
// state and is safe for concurrent use.
type Router struct {
	card *config.RateCard
}

// RouteInfo describes one routing rule as resolved against the card.
type RouteInfo struct {
	Rule     int
	Reason   string
	Example  string
	Primary  string
	Fallback string
}

// New creates a router for the given rate card.
func New(card *config.RateCard) *Router {
	return &Router{card: card}
}

// Classify returns the routing decision for a task.
func (r *Router) Classify(t task.Task) (Decision, error) {
	if r == nil || r.card == nil {
		return Decision{}, fmt.Errorf("router has no rate card")
	}
	return classify(r.card, t)
}

// RateCard returns the card the router resolves against.
func (r *Router) RateCard() *config.RateCard {
	return r.card
}

// Routes lists every rule with a representative task and its resolved backends.
func (r *Router) Routes() []RouteInfo {
	examples := []struct {
		label string
		task  task.Task
	}{
		{"summarize/chat < 1500 tokens", task.Task{Kind: task.KindChat}},
		{"summarize/chat >= 1500 tokens", task.Task{Kind: task.KindChat, TokenHint: task.IntPtr(task.TokenThreshold)}},
		{"reason, or structured output", task.Task{Kind: task.KindReason}},
		{"code", task.Task{Kind: task.KindCode}},
		{"schema", task.Task{Kind: task.KindSchema}},
		{"embedding", task.Task{Kind: task.KindEmbedding}},
		{"anything else", task.Task{}},
	}

	routes := make([]RouteInfo, 0, len(examples))
	for _, ex := range examples {
		d, err := r.Classify(ex.task)
		if err != nil {
			continue
		}
		routes = append(routes, RouteInfo{
			Rule:     d.Rule,
			Reason:   d.Reason,
			Example:  ex.label,
			Primary:  d.Primary,
			Fallback: d.Fallback,
		})
	}
	return routes
}
