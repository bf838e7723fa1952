package router

import (
	"testing"

	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/task"
)

func TestClassify(t *testing.T) {
	r := New(config.DefaultRateCard())

	tests := []struct {
		name     string
		task     task.Task
		rule     int
		primary  string
		fallback string
	}{
		{
			name:     "small summarize",
			task:     task.Task{Kind: task.KindSummarize, TokenHint: task.IntPtr(800)},
			rule:     1,
			primary:  "claude-3-haiku",
			fallback: "claude-3-sonnet",
		},
		{
			name:     "chat without hint",
			task:     task.Task{Kind: task.KindChat},
			rule:     1,
			primary:  "claude-3-haiku",
			fallback: "claude-3-sonnet",
		},
		{
			name:     "large chat",
			task:     task.Task{Kind: task.KindChat, TokenHint: task.IntPtr(1500)},
			rule:     2,
			primary:  "claude-3-sonnet",
			fallback: "gpt-4o",
		},
		{
			name:     "structured small chat stays on rule 1",
			task:     task.Task{Kind: task.KindChat, RequiresStructuredOutput: true},
			rule:     1,
			primary:  "claude-3-haiku",
			fallback: "claude-3-sonnet",
		},
		{
			name:     "reason",
			task:     task.Task{Kind: task.KindReason},
			rule:     3,
			primary:  "gpt-4o",
			fallback: "claude-3-sonnet",
		},
		{
			name:     "structured code goes to rule 3",
			task:     task.Task{Kind: task.KindCode, RequiresStructuredOutput: true},
			rule:     3,
			primary:  "gpt-4o",
			fallback: "claude-3-sonnet",
		},
		{
			name:     "code ignores token hint",
			task:     task.Task{Kind: task.KindCode, TokenHint: task.IntPtr(2000)},
			rule:     4,
			primary:  "gpt-4-turbo",
			fallback: "gpt-4o",
		},
		{
			name:     "schema",
			task:     task.Task{Kind: task.KindSchema},
			rule:     5,
			primary:  "gpt-4o",
			fallback: "claude-3-sonnet",
		},
		{
			name:    "embedding has no fallback",
			task:    task.Task{Kind: task.KindEmbedding},
			rule:    6,
			primary: "text-embedding-3-large",
		},
		{
			name:     "unknown kind uses default",
			task:     task.Task{Kind: "deploy"},
			rule:     7,
			primary:  "claude-3-haiku",
			fallback: "claude-3-sonnet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Classify(tt.task)
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if d.Rule != tt.rule {
				t.Fatalf("expected rule %d, got %d", tt.rule, d.Rule)
			}
			if d.Primary != tt.primary || d.Fallback != tt.fallback {
				t.Fatalf("expected %s -> %s, got %s -> %s", tt.primary, tt.fallback, d.Primary, d.Fallback)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	r := New(config.DefaultRateCard())
	hints := []*int{nil, task.IntPtr(0), task.IntPtr(1499), task.IntPtr(1500), task.IntPtr(90000)}

	for _, kind := range task.Kinds() {
		for _, hint := range hints {
			for _, structured := range []bool{false, true} {
				base := task.Task{Kind: kind, TokenHint: hint, RequiresStructuredOutput: structured, Input: "a"}
				first, err := r.Classify(base)
				if err != nil {
					t.Fatalf("classify %s: %v", kind, err)
				}
				for i := 0; i < 20; i++ {
					other := base
					other.Input = "different input"
					other.Priority = task.PriorityQuality
					got, err := r.Classify(other)
					if err != nil {
						t.Fatalf("classify %s: %v", kind, err)
					}
					if got != first {
						t.Fatalf("non-deterministic routing for %+v: %+v vs %+v", base, first, got)
					}
				}
			}
		}
	}
}

func TestFallbackNeverEqualsPrimary(t *testing.T) {
	cards := map[string]*config.RateCard{"default": config.DefaultRateCard()}

	// Two backends sharing a tier must still produce distinct pairs.
	dense, err := config.NewRateCard(
		config.Backend{ID: "a", Vendor: config.VendorMock, QualityTier: config.TierLowCost},
		config.Backend{ID: "b", Vendor: config.VendorMock, QualityTier: config.TierMidTier},
		config.Backend{ID: "c", Vendor: config.VendorMock, QualityTier: config.TierMidTier},
		config.Backend{ID: "d", Vendor: config.VendorMock, QualityTier: config.TierHighQuality},
		config.Backend{ID: "e", Vendor: config.VendorMock, QualityTier: config.TierCode},
		config.Backend{ID: "f", Vendor: config.VendorMock, QualityTier: config.TierEmbedding},
	)
	if err != nil {
		t.Fatalf("build card: %v", err)
	}
	cards["dense"] = dense

	for name, card := range cards {
		r := New(card)
		for _, kind := range task.Kinds() {
			for _, hint := range []*int{nil, task.IntPtr(5000)} {
				for _, structured := range []bool{false, true} {
					d, err := r.Classify(task.Task{Kind: kind, TokenHint: hint, RequiresStructuredOutput: structured})
					if err != nil {
						t.Fatalf("%s: classify %s: %v", name, kind, err)
					}
					if d.Fallback == d.Primary {
						t.Fatalf("%s: fallback equals primary for %s: %+v", name, kind, d)
					}
				}
			}
		}
	}
}

func TestTiesBrokenByDeclarationOrder(t *testing.T) {
	card, err := config.NewRateCard(
		config.Backend{ID: "cheap-2", Vendor: config.VendorMock, QualityTier: config.TierLowCost},
		config.Backend{ID: "cheap-1", Vendor: config.VendorMock, QualityTier: config.TierLowCost},
		config.Backend{ID: "mid", Vendor: config.VendorMock, QualityTier: config.TierMidTier},
		config.Backend{ID: "high", Vendor: config.VendorMock, QualityTier: config.TierHighQuality},
		config.Backend{ID: "code", Vendor: config.VendorMock, QualityTier: config.TierCode},
		config.Backend{ID: "embed", Vendor: config.VendorMock, QualityTier: config.TierEmbedding},
	)
	if err != nil {
		t.Fatalf("build card: %v", err)
	}

	d, err := New(card).Classify(task.Task{Kind: task.KindSummarize})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d.Primary != "cheap-2" {
		t.Fatalf("expected first declared low-cost backend, got %s", d.Primary)
	}
}

func TestClassifyWithoutCard(t *testing.T) {
	if _, err := New(nil).Classify(task.Task{Kind: task.KindChat}); err == nil {
		t.Fatalf("expected error without rate card")
	}

	incomplete := &config.RateCard{Backends: []config.Backend{{ID: "only", Vendor: config.VendorMock, QualityTier: config.TierLowCost}}}
	if _, err := New(incomplete).Classify(task.Task{Kind: task.KindChat}); err == nil {
		t.Fatalf("expected error when fallback tier is missing")
	}
}

func TestRoutes(t *testing.T) {
	routes := New(config.DefaultRateCard()).Routes()
	if len(routes) != 7 {
		t.Fatalf("expected 7 routes, got %d", len(routes))
	}
	if routes[0].Primary != "claude-3-haiku" || routes[5].Fallback != "" || routes[6].Rule != 7 {
		t.Fatalf("unexpected routes: %+v", routes)
	}
}
