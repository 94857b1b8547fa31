package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ProductJudge/internal/ports"
)

// OpenAIClient implements ports.ChatClient for OpenAI and OpenAI-compatible APIs such as Groq.
type OpenAIClient struct {
	client   *openai.Client
	model    openai.ChatModel
	provider string
}

var _ ports.ChatClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client; an empty baseURL targets api.openai.com.
func NewOpenAIClient(provider, apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client:   &client,
		model:    openai.ChatModel(model),
		provider: provider,
	}
}

// Name reports the provider and model, e.g. "groq/llama-3.3-70b-versatile".
func (c *OpenAIClient) Name() string {
	return c.provider + "/" + string(c.model)
}

// Complete sends a system and a user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.provider)
	}

	return resp.Choices[0].Message.Content, nil
}
