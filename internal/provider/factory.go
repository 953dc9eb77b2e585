// Package provider builds the chat model backend used by both agents.
//
// # Adding a New Provider
//
// Implement domain.ChatModel in a sub-package and expose an explicit
// registration function that calls registry.RegisterFactory. Call it from
// RegisterBuiltins so we avoid init() side effects.
package provider

import (
	"log/slog"

	"github.com/tjfontaine/searchbot/internal/config"
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/provider/anthropic"
	"github.com/tjfontaine/searchbot/internal/provider/openai"
	"github.com/tjfontaine/searchbot/internal/provider/registry"
)

// Re-export types from registry for convenience
type ProviderFactory = registry.ProviderFactory

// ListProviderTypes returns all registered provider type names (delegated to registry).
var ListProviderTypes = registry.ListProviderTypes

// ListFactories returns all registered provider factories (delegated to registry).
var ListFactories = registry.ListFactories

// RegisterBuiltins registers the providers shipped with searchbot. It is
// safe to call more than once.
func RegisterBuiltins() {
	openai.RegisterProviderFactory()
	anthropic.RegisterProviderFactory()
}

// New creates the configured chat model and wraps it with logging and
// tracing.
func New(cfg config.LLMConfig, logger *slog.Logger) (domain.ChatModel, error) {
	RegisterBuiltins()

	model, err := registry.CreateFromFactory(cfg)
	if err != nil {
		return nil, err
	}
	return NewInstrumented(model, logger), nil
}
