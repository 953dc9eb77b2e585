package openai

import (
	"github.com/tjfontaine/searchbot/internal/config"
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/provider/registry"
)

// ProviderType is the provider type identifier used in configuration.
const ProviderType = "openai"

// RegisterProviderFactory registers this provider with the registry.
func RegisterProviderFactory() {
	if registry.IsRegistered(ProviderType) {
		return
	}
	registry.RegisterFactory(registry.ProviderFactory{
		Type:           ProviderType,
		Description:    "OpenAI-compatible chat completions (Gemini by default)",
		Create:         CreateFromConfig,
		ValidateConfig: ValidateConfig,
	})
}

// CreateFromConfig creates a new provider from configuration.
func CreateFromConfig(cfg config.LLMConfig) (domain.ChatModel, error) {
	var opts []ProviderOption
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return New(cfg.APIKey, opts...), nil
}

// ValidateConfig validates the provider configuration.
func ValidateConfig(cfg config.LLMConfig) error {
	// API key is optional for OpenAI-compatible providers (some local models don't need it)
	return nil
}
