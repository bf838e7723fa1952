package ledger

import (
	"sync"

	"github.com/dealershipai/clarity/pkg/task"
)

// Totals aggregates a batch. Only successful results are billed.
type Totals struct {
	Tasks          int                `json:"tasks"`
	Succeeded      int                `json:"succeeded"`
	Degraded       int                `json:"degraded"`
	Failed         int                `json:"failed"`
	TokensConsumed int                `json:"tokens_consumed"`
	CostEstimate   float64            `json:"cost_estimate"`
	CostByBackend  map[string]float64 `json:"cost_by_backend,omitempty"`
}

// Tracker accumulates totals. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	totals Totals
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{totals: Totals{CostByBackend: make(map[string]float64)}}
}

// Record adds one finished task.
func (t *Tracker) Record(r task.Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totals.Tasks++
	if err != nil {
		t.totals.Failed++
		return
	}
	t.totals.Succeeded++
	if r.Degraded {
		t.totals.Degraded++
	}
	t.totals.TokensConsumed += r.TokensConsumed
	t.totals.CostEstimate += r.CostEstimate
	t.totals.CostByBackend[r.BackendUsed] += r.CostEstimate
}

// Totals returns a snapshot of the accumulated totals.
func (t *Tracker) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.totals
	out.CostByBackend = make(map[string]float64, len(t.totals.CostByBackend))
	for k, v := range t.totals.CostByBackend {
		out.CostByBackend[k] = v
	}
	return out
}
