package search

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/searchbot/internal/config"
)

// New builds the configured provider, wrapped in an LRU cache when
// cfg.CacheSize is positive.
func New(cfg config.SearchConfig, logger *slog.Logger) (Provider, error) {
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var p Provider
	switch cfg.Provider {
	case "", "tavily":
		opts := []TavilyOption{WithTavilyClient(client), WithTavilyMaxResults(cfg.MaxResults)}
		if cfg.BaseURL != "" {
			opts = append(opts, WithTavilyEndpoint(cfg.BaseURL))
		}
		p = NewTavily(cfg.APIKey, cfg.Depth, opts...)
	case "searxng":
		p = NewSearxNG(cfg.BaseURL, WithSearxNGClient(client), WithSearxNGMaxResults(cfg.MaxResults))
	case "duckduckgo":
		opts := []DuckDuckGoOption{WithDuckDuckGoClient(client), WithDuckDuckGoMaxResults(cfg.MaxResults)}
		if cfg.BaseURL != "" {
			opts = append(opts, WithDuckDuckGoEndpoint(cfg.BaseURL))
		}
		p = NewDuckDuckGo(opts...)
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}

	return NewCached(p, cfg.CacheSize, logger)
}
