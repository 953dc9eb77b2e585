package anthropic

import (
	"errors"

	"github.com/tjfontaine/searchbot/internal/config"
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/provider/registry"
)

// ProviderType is the provider type identifier used in configuration.
const ProviderType = "anthropic"

// RegisterProviderFactory registers this provider with the registry.
func RegisterProviderFactory() {
	if registry.IsRegistered(ProviderType) {
		return
	}
	registry.RegisterFactory(registry.ProviderFactory{
		Type:           ProviderType,
		Description:    "Anthropic Messages API (Claude models)",
		Create:         CreateFromConfig,
		ValidateConfig: ValidateConfig,
	})
}

// CreateFromConfig creates a new Anthropic provider from configuration.
func CreateFromConfig(cfg config.LLMConfig) (domain.ChatModel, error) {
	var opts []ProviderOption
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return New(cfg.APIKey, opts...), nil
}

// ValidateConfig validates the provider configuration.
func ValidateConfig(cfg config.LLMConfig) error {
	if cfg.APIKey == "" {
		return errors.New("anthropic: api_key is required")
	}
	return nil
}
