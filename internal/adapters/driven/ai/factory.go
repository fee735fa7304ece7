// Package ai provides factory functions for creating LLM service adapters.
package ai

import (
	"fmt"

	anthropicllm "github.com/custodia-labs/pulse-brief/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/custodia-labs/pulse-brief/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// APIKeyEnv returns the environment variable holding the provider's API key.
func APIKeyEnv(p domain.AIProvider) string {
	return p.APIKeyEnv()
}

// ValidateLLMConfig checks that settings name a supported provider and carry a key.
func ValidateLLMConfig(settings domain.LLMSettings) error {
	if !settings.Provider.IsValid() {
		return fmt.Errorf("%w: unsupported LLM provider %q (use anthropic or openai)",
			domain.ErrLLMUnavailable, settings.Provider)
	}
	if settings.APIKey == "" {
		return fmt.Errorf("%w: %s is not set", domain.ErrLLMUnavailable, APIKeyEnv(settings.Provider))
	}
	return nil
}

// CreateLLMService creates the LLM service for the configured provider.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if err := ValidateLLMConfig(settings); err != nil {
		return nil, err
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})
	}
}
