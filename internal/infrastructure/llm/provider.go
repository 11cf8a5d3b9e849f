package llm

import (
	"fmt"

	"github.com/orris-inc/archy/internal/application/ai"
	sharedConfig "github.com/orris-inc/archy/internal/shared/config"
)

// NewCompleter picks the configured provider.
func NewCompleter(cfg sharedConfig.AIConfig) (ai.Completer, error) {
	switch cfg.Provider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("ai.openai_api_key is required for the openai provider")
		}
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ai.anthropic_api_key is required for the anthropic provider")
		}
		return NewAnthropicCompleter(cfg.AnthropicAPIKey, ""), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// DefaultOptions maps the configuration onto per-call options.
func DefaultOptions(cfg sharedConfig.AIConfig) ai.Options {
	return ai.Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}
