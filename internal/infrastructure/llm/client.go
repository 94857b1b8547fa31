package llm

import (
	"context"
	"fmt"

	"ProductJudge/internal/config"
	"ProductJudge/internal/domain"
	"ProductJudge/internal/ports"
)

// NewChatClient builds the configured reasoning backend. The returned close func is never nil.
func NewChatClient(ctx context.Context, cfg config.ReasoningConfig) (ports.ChatClient, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		return NewOpenAIClient(cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.Model), noop, nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Model), noop, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		return client, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown reasoning provider %q", domain.ErrConfig, cfg.Provider)
	}
}
