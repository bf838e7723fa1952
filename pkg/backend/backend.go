// Package backend defines the text-generation capability the orchestrator
// drives and the vendor clients that provide it.
package backend

import (
	"context"
	"fmt"

	"github.com/dealershipai/clarity/pkg/config"
)

// Prompt is what a backend receives for one invocation.
type Prompt struct {
	System string
	Input  string
}

// Generator is implemented by every backend variant. An empty string with a
// nil error is a successful response; failures are always reported as errors.
type Generator interface {
	// Generate sends the prompt and returns the generated text.
	Generate(ctx context.Context, prompt Prompt, maxOutputTokens int) (string, error)

	// Name returns the rate card id the handle serves.
	Name() string
}

// Embedder is implemented by backends that produce vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Factory constructs the handle for one rate card entry.
type Factory func(ctx context.Context, b config.Backend) (Generator, error)

// NewFactory returns a Factory that builds vendor clients from cfg's credentials.
func NewFactory(cfg *config.Config) Factory {
	return func(ctx context.Context, b config.Backend) (Generator, error) {
		switch b.Vendor {
		case config.VendorAnthropic:
			g, err := NewAnthropic(b, cfg.AnthropicAPIKey)
			if err != nil {
				return nil, err
			}
			return g, nil
		case config.VendorOpenAI:
			if b.QualityTier == config.TierEmbedding {
				g, err := NewOpenAIEmbedding(b, cfg.OpenAIAPIKey)
				if err != nil {
					return nil, err
				}
				return g, nil
			}
			g, err := NewOpenAI(b, cfg.OpenAIAPIKey)
			if err != nil {
				return nil, err
			}
			return g, nil
		case config.VendorGoogle:
			g, err := NewGoogle(ctx, b, cfg.GoogleAPIKey)
			if err != nil {
				return nil, err
			}
			return g, nil
		case config.VendorDeepSeek:
			g, err := NewDeepSeek(b, cfg.DeepSeekAPIKey)
			if err != nil {
				return nil, err
			}
			return g, nil
		case config.VendorMock:
			if b.QualityTier == config.TierEmbedding {
				return NewMockEmbedding(b.ID), nil
			}
			return NewMock(b.ID), nil
		default:
			return nil, fmt.Errorf("backend %q: unknown vendor %q", b.ID, b.Vendor)
		}
	}
}
