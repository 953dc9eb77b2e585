package chatbot

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/searchbot/internal/agent"
	"github.com/tjfontaine/searchbot/internal/config"
	"github.com/tjfontaine/searchbot/internal/pipeline"
	"github.com/tjfontaine/searchbot/internal/provider"
	"github.com/tjfontaine/searchbot/internal/search"
	"github.com/tjfontaine/searchbot/internal/storage"
	"github.com/tjfontaine/searchbot/internal/storage/memory"
	"github.com/tjfontaine/searchbot/internal/storage/sqlite"
	"github.com/tjfontaine/searchbot/internal/tools"
)

// OpenStore opens the configured exchange store. It returns nil for the
// "none" type.
func OpenStore(cfg config.StorageConfig) (storage.ExchangeStore, error) {
	switch cfg.Type {
	case "none":
		return nil, nil
	case "memory":
		return memory.New(), nil
	case "", "sqlite":
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("create sqlite storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// Build wires the chat model, search provider, agents, pipeline and store
// from cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Bot, error) {
	provider.RegisterBuiltins()

	chat, err := provider.New(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	searcher, err := search.New(cfg.Search, logger)
	if err != nil {
		return nil, fmt.Errorf("create search provider: %w", err)
	}

	opts := []agent.Option{
		agent.WithMaxSteps(cfg.LLM.MaxSteps),
		agent.WithMaxTokens(cfg.LLM.MaxTokens),
		agent.WithLogger(logger),
	}
	if cfg.LLM.Temperature > 0 {
		opts = append(opts, agent.WithTemperature(cfg.LLM.Temperature))
	}

	p := pipeline.New(
		agent.NewSearchAgent(chat, cfg.LLM.SearchModel, searcher, opts...),
		agent.NewTimestampAgent(chat, cfg.LLM.TimestampModel, tools.SystemClock{}, cfg.Clock.Format, opts...),
		logger,
	)

	store, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return New(p, WithStore(store), WithLogger(logger)), nil
}

// Close releases the exchange store.
func (b *Bot) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}
