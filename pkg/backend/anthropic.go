package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dealershipai/clarity/pkg/config"
)

// Anthropic serves a rate card entry with a Claude model.
type Anthropic struct {
	id     string
	model  string
	client anthropic.Client
}

// NewAnthropic creates a Claude backend.
func NewAnthropic(b config.Backend, apiKey string, opts ...option.RequestOption) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required for %s", b.ID)
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Anthropic{id: b.ID, model: b.Model, client: client}, nil
}

// Name returns the rate card id.
func (a *Anthropic) Name() string {
	return a.id
}

// Generate sends the prompt to Claude.
func (a *Anthropic) Generate(ctx context.Context, prompt Prompt, maxOutputTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.Input)),
		},
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", newError(a.id, status, err)
	}
	if resp == nil {
		return "", malformed(a.id, "empty message")
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}
