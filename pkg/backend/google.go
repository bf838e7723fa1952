package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dealershipai/clarity/pkg/config"
)

// Google serves a rate card entry with a Gemini model.
type Google struct {
	id     string
	model  string
	client *genai.Client
}

// NewGoogle creates a Gemini backend.
func NewGoogle(ctx context.Context, b config.Backend, apiKey string) (*Google, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required for %s", b.ID)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &Google{id: b.ID, model: b.Model, client: client}, nil
}

// Name returns the rate card id.
func (g *Google) Name() string {
	return g.id
}

// Generate sends the prompt to Gemini.
func (g *Google) Generate(ctx context.Context, prompt Prompt, maxOutputTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxOutputTokens),
	}
	if prompt.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.Input), cfg)
	if err != nil {
		return "", newError(g.id, genaiStatus(err), err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", malformed(g.id, "no candidates")
	}

	var content strings.Builder
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				content.WriteString(part.Text)
			}
		}
	}
	return content.String(), nil
}

func genaiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
