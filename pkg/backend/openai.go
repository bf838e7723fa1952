package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dealershipai/clarity/pkg/config"
)

// OpenAI serves a rate card entry with a chat completion model. It also
// drives any OpenAI-compatible API reachable through a base URL.
type OpenAI struct {
	id     string
	model  string
	client openai.Client

	// legacyMaxTokens sends max_tokens instead of max_completion_tokens.
	legacyMaxTokens bool
}

// NewOpenAI creates a chat completion backend.
func NewOpenAI(b config.Backend, apiKey string, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required for %s", b.ID)
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAI{id: b.ID, model: b.Model, client: client}, nil
}

// Name returns the rate card id.
func (o *OpenAI) Name() string {
	return o.id
}

// Generate sends the prompt as a system and user message pair.
func (o *OpenAI) Generate(ctx context.Context, prompt Prompt, maxOutputTokens int) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.Input))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: messages,
	}
	if o.legacyMaxTokens {
		params.MaxTokens = openai.Int(int64(maxOutputTokens))
	} else {
		params.MaxCompletionTokens = openai.Int(int64(maxOutputTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", openaiError(o.id, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", malformed(o.id, "no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAIEmbedding serves the embedding tier.
type OpenAIEmbedding struct {
	id     string
	model  string
	client openai.Client
}

// NewOpenAIEmbedding creates an embedding backend.
func NewOpenAIEmbedding(b config.Backend, apiKey string, opts ...option.RequestOption) (*OpenAIEmbedding, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required for %s", b.ID)
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIEmbedding{id: b.ID, model: b.Model, client: client}, nil
}

// Name returns the rate card id.
func (e *OpenAIEmbedding) Name() string {
	return e.id
}

// Embed returns the vector for text.
func (e *OpenAIEmbedding) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, openaiError(e.id, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, malformed(e.id, "no embedding data")
	}
	return resp.Data[0].Embedding, nil
}

// Generate embeds the prompt input and renders the vector as a JSON array.
// System instructions and the output bound do not apply to embeddings.
func (e *OpenAIEmbedding) Generate(ctx context.Context, prompt Prompt, _ int) (string, error) {
	vec, err := e.Embed(ctx, prompt.Input)
	if err != nil {
		return "", err
	}
	return renderVector(e.id, vec)
}

func renderVector(id string, vec []float64) (string, error) {
	data, err := json.Marshal(vec)
	if err != nil {
		return "", malformed(id, err.Error())
	}
	return string(data), nil
}

func openaiError(id string, err error) error {
	status := 0
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	return newError(id, status, err)
}
