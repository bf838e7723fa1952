package config

import (
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dealershipai/clarity/pkg/task"
)

// Tier is the role a backend plays in routing.
type Tier string

const (
	TierLowCost     Tier = "low_cost"
	TierMidTier     Tier = "mid_tier"
	TierHighQuality Tier = "high_quality"
	TierCode        Tier = "code"
	TierEmbedding   Tier = "embedding"
)

// RequiredTiers must each be served by at least one backend.
var RequiredTiers = []Tier{TierLowCost, TierMidTier, TierHighQuality, TierCode, TierEmbedding}

// LatencyClass is a coarse description of a backend's typical response time.
type LatencyClass string

const (
	LatencyFast     LatencyClass = "fast"
	LatencyStandard LatencyClass = "standard"
	LatencySlow     LatencyClass = "slow"
)

// Vendors that can serve a backend.
const (
	VendorAnthropic = "anthropic"
	VendorOpenAI    = "openai"
	VendorGoogle    = "google"
	VendorDeepSeek  = "deepseek"
	VendorMock      = "mock"
)

var knownVendors = map[string]bool{
	VendorAnthropic: true,
	VendorOpenAI:    true,
	VendorGoogle:    true,
	VendorDeepSeek:  true,
	VendorMock:      true,
}

// Backend is one rate card entry. Costs are USD per 1,000,000 tokens.
type Backend struct {
	ID                string       `yaml:"id"`
	Vendor            string       `yaml:"vendor"`
	Model             string       `yaml:"model"`
	QualityTier       Tier         `yaml:"tier"`
	LatencyClass      LatencyClass `yaml:"latency,omitempty"`
	CostPerInputUnit  float64      `yaml:"cost_per_input_unit"`
	CostPerOutputUnit float64      `yaml:"cost_per_output_unit"`
	Confidence        float64      `yaml:"confidence,omitempty"`
}

// RateCard is the static backend table, loaded once at startup.
// Declaration order is significant: it breaks ties during routing.
type RateCard struct {
	Backends []Backend `yaml:"backends"`

	index map[string]int
}

// LoadRateCard reads a rate card from a YAML file and validates it.
func LoadRateCard(path string) (*RateCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var card RateCard
	if err := yaml.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("parse rate card: %w", err)
	}

	applyRateCardDefaults(&card)
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return &card, nil
}

// NewRateCard builds a rate card from entries, applying defaults and validation.
func NewRateCard(backends ...Backend) (*RateCard, error) {
	card := &RateCard{Backends: append([]Backend(nil), backends...)}
	applyRateCardDefaults(card)
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// DefaultRateCard returns the built-in rate card.
func DefaultRateCard() *RateCard {
	card := &RateCard{
		Backends: []Backend{
			{
				ID:                "claude-3-haiku",
				Vendor:            VendorAnthropic,
				Model:             "claude-3-haiku-20240307",
				QualityTier:       TierLowCost,
				LatencyClass:      LatencyFast,
				CostPerInputUnit:  0.25,
				CostPerOutputUnit: 1.25,
			},
			{
				ID:                "claude-3-sonnet",
				Vendor:            VendorAnthropic,
				Model:             "claude-3-sonnet-20240229",
				QualityTier:       TierMidTier,
				LatencyClass:      LatencyStandard,
				CostPerInputUnit:  3.00,
				CostPerOutputUnit: 15.00,
			},
			{
				ID:                "gpt-4o",
				Vendor:            VendorOpenAI,
				Model:             "gpt-4o",
				QualityTier:       TierHighQuality,
				LatencyClass:      LatencyStandard,
				CostPerInputUnit:  2.50,
				CostPerOutputUnit: 10.00,
			},
			{
				ID:                "gpt-4-turbo",
				Vendor:            VendorOpenAI,
				Model:             "gpt-4-turbo-preview",
				QualityTier:       TierCode,
				LatencyClass:      LatencySlow,
				CostPerInputUnit:  10.00,
				CostPerOutputUnit: 30.00,
			},
			{
				ID:                "text-embedding-3-large",
				Vendor:            VendorOpenAI,
				Model:             "text-embedding-3-large",
				QualityTier:       TierEmbedding,
				LatencyClass:      LatencyFast,
				CostPerInputUnit:  0.13,
				CostPerOutputUnit: 0,
			},
		},
	}
	applyRateCardDefaults(card)
	return card
}

// MockRateCard returns the default card with every backend served by the mock vendor.
func MockRateCard() *RateCard {
	card := DefaultRateCard()
	for i := range card.Backends {
		card.Backends[i].Vendor = VendorMock
	}
	return card
}

func applyRateCardDefaults(card *RateCard) {
	if card == nil {
		return
	}
	for i := range card.Backends {
		b := &card.Backends[i]
		if b.Confidence == 0 {
			b.Confidence = task.NominalConfidence
		}
		if b.LatencyClass == "" {
			b.LatencyClass = LatencyStandard
		}
		if b.Model == "" {
			b.Model = b.ID
		}
	}
	card.reindex()
}

func (c *RateCard) reindex() {
	c.index = make(map[string]int, len(c.Backends))
	for i, b := range c.Backends {
		if _, dup := c.index[b.ID]; !dup {
			c.index[b.ID] = i
		}
	}
}

// Validate checks that the card can serve every routing rule.
func (c *RateCard) Validate() error {
	if c == nil || len(c.Backends) == 0 {
		return fmt.Errorf("rate card has no backends")
	}

	seen := make(map[string]bool, len(c.Backends))
	tiers := make(map[Tier]bool)
	for i, b := range c.Backends {
		if b.ID == "" {
			return fmt.Errorf("backend %d: id is required", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("backend %q: duplicate id", b.ID)
		}
		seen[b.ID] = true

		if !knownVendors[b.Vendor] {
			return fmt.Errorf("backend %q: unknown vendor %q", b.ID, b.Vendor)
		}
		if !slices.Contains(RequiredTiers, b.QualityTier) {
			return fmt.Errorf("backend %q: unknown tier %q", b.ID, b.QualityTier)
		}
		if b.CostPerInputUnit < 0 || b.CostPerOutputUnit < 0 || math.IsNaN(b.CostPerInputUnit) || math.IsNaN(b.CostPerOutputUnit) {
			return fmt.Errorf("backend %q: costs must not be negative", b.ID)
		}
		if math.IsNaN(b.Confidence) || b.Confidence <= task.DegradedConfidence || b.Confidence > 1 {
			return fmt.Errorf("backend %q: confidence %.2f must be in (%.2f, 1]", b.ID, b.Confidence, task.DegradedConfidence)
		}
		tiers[b.QualityTier] = true
	}

	for _, tier := range RequiredTiers {
		if !tiers[tier] {
			return fmt.Errorf("rate card has no %s backend", tier)
		}
	}
	return nil
}

// Lookup returns the backend with the given id.
func (c *RateCard) Lookup(id string) (Backend, bool) {
	if c == nil {
		return Backend{}, false
	}
	if c.index == nil {
		for _, b := range c.Backends {
			if b.ID == id {
				return b, true
			}
		}
		return Backend{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Backend{}, false
	}
	return c.Backends[i], true
}

// FirstOfTier returns the first backend in declaration order serving tier,
// skipping any id listed in exclude.
func (c *RateCard) FirstOfTier(tier Tier, exclude ...string) (Backend, bool) {
	if c == nil {
		return Backend{}, false
	}
next:
	for _, b := range c.Backends {
		if b.QualityTier != tier {
			continue
		}
		for _, id := range exclude {
			if b.ID == id {
				continue next
			}
		}
		return b, true
	}
	return Backend{}, false
}

// IDs returns backend ids in declaration order.
func (c *RateCard) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Backends))
	for _, b := range c.Backends {
		ids = append(ids, b.ID)
	}
	return ids
}
