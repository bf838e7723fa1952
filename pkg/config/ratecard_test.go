package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testRateCardYAML = `backends:
  - id: haiku
    vendor: anthropic
    tier: low_cost
    cost_per_input_unit: 0.25
    cost_per_output_unit: 1.25
  - id: gemini
    vendor: google
    model: gemini-2.0-flash
    tier: mid_tier
    cost_per_input_unit: 0.10
    cost_per_output_unit: 0.40
  - id: sonnet
    vendor: anthropic
    tier: mid_tier
    cost_per_input_unit: 3
    cost_per_output_unit: 15
  - id: gpt-4o
    vendor: openai
    tier: high_quality
    latency: slow
    cost_per_input_unit: 2.5
    cost_per_output_unit: 10
  - id: deepseek-coder
    vendor: deepseek
    tier: code
    cost_per_input_unit: 0.14
    cost_per_output_unit: 0.28
  - id: embed
    vendor: openai
    model: text-embedding-3-large
    tier: embedding
    cost_per_input_unit: 0.13
`

func TestDefaultRateCardIsValid(t *testing.T) {
	card := DefaultRateCard()
	if err := card.Validate(); err != nil {
		t.Fatalf("default card invalid: %v", err)
	}

	haiku, ok := card.Lookup("claude-3-haiku")
	if !ok {
		t.Fatalf("expected claude-3-haiku")
	}
	if haiku.CostPerInputUnit != 0.25 || haiku.CostPerOutputUnit != 1.25 {
		t.Fatalf("unexpected haiku rates: %+v", haiku)
	}
	if haiku.Confidence != 0.85 {
		t.Fatalf("expected nominal confidence default, got %.2f", haiku.Confidence)
	}
}

func TestLoadRateCardDefaultsAndOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratecard.yaml")
	if err := os.WriteFile(path, []byte(testRateCardYAML), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	card, err := LoadRateCard(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	haiku, _ := card.Lookup("haiku")
	if haiku.Model != "haiku" {
		t.Fatalf("expected model to default to id, got %q", haiku.Model)
	}
	if haiku.LatencyClass != LatencyStandard {
		t.Fatalf("expected standard latency default, got %q", haiku.LatencyClass)
	}

	mid, ok := card.FirstOfTier(TierMidTier)
	if !ok || mid.ID != "gemini" {
		t.Fatalf("expected declaration order to pick gemini, got %+v", mid)
	}
	mid, ok = card.FirstOfTier(TierMidTier, "gemini")
	if !ok || mid.ID != "sonnet" {
		t.Fatalf("expected exclusion to pick sonnet, got %+v", mid)
	}
	if _, ok := card.FirstOfTier(TierEmbedding, "embed"); ok {
		t.Fatalf("expected no second embedding backend")
	}
}

func TestRateCardValidation(t *testing.T) {
	base := DefaultRateCard().Backends

	tests := []struct {
		name   string
		mutate func([]Backend) []Backend
		want   string
	}{
		{
			name:   "empty",
			mutate: func([]Backend) []Backend { return nil },
			want:   "no backends",
		},
		{
			name: "duplicate id",
			mutate: func(b []Backend) []Backend {
				return append(b, b[0])
			},
			want: "duplicate id",
		},
		{
			name: "unknown vendor",
			mutate: func(b []Backend) []Backend {
				b[0].Vendor = "cohere"
				return b
			},
			want: "unknown vendor",
		},
		{
			name: "negative cost",
			mutate: func(b []Backend) []Backend {
				b[1].CostPerOutputUnit = -1
				return b
			},
			want: "must not be negative",
		},
		{
			name: "confidence not above degraded",
			mutate: func(b []Backend) []Backend {
				b[2].Confidence = 0.75
				return b
			},
			want: "confidence",
		},
		{
			name: "nan confidence",
			mutate: func(b []Backend) []Backend {
				b[0].Confidence = math.NaN()
				return b
			},
			want: "confidence",
		},
		{
			name: "nan cost",
			mutate: func(b []Backend) []Backend {
				b[3].CostPerInputUnit = math.NaN()
				return b
			},
			want: "must not be negative",
		},
		{
			name: "unknown tier",
			mutate: func(b []Backend) []Backend {
				b[1].QualityTier = "premium"
				return b
			},
			want: "unknown tier",
		},
		{
			name: "missing tier",
			mutate: func(b []Backend) []Backend {
				return b[:4]
			},
			want: "no embedding backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.mutate(append([]Backend(nil), base...))
			_, err := NewRateCard(backends...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLookupWithoutIndex(t *testing.T) {
	card := &RateCard{Backends: []Backend{{ID: "a"}, {ID: "b"}}}
	if b, ok := card.Lookup("b"); !ok || b.ID != "b" {
		t.Fatalf("expected linear lookup to find b")
	}
	if got := card.IDs(); len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected ids %v", got)
	}
}
