package backend

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dealershipai/clarity/pkg/config"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeek creates a backend for DeepSeek's OpenAI-compatible API.
func NewDeepSeek(b config.Backend, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key is required for %s", b.ID)
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(deepseekBaseURL),
	)
	return &OpenAI{
		id:              b.ID,
		model:           b.Model,
		client:          client,
		legacyMaxTokens: true,
	}, nil
}
