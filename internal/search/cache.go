package search

import (
	"context"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes search results in an LRU keyed by the normalized query.
type Cached struct {
	inner  Provider
	cache  *lru.Cache[string, []Result]
	logger *slog.Logger
}

// NewCached wraps inner with an LRU of the given size. A size of zero or
// less disables caching and returns inner unchanged.
func NewCached(inner Provider, size int, logger *slog.Logger) (Provider, error) {
	if size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[string, []Result](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{inner: inner, cache: cache, logger: logger}, nil
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Search(ctx context.Context, query string) ([]Result, error) {
	key := normalizeQuery(query)
	if results, ok := c.cache.Get(key); ok {
		c.logger.DebugContext(ctx, "search cache hit", slog.String("provider", c.inner.Name()), slog.String("query", key))
		return append([]Result(nil), results...), nil
	}

	results, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]Result(nil), results...))
	return results, nil
}

// Len returns the number of cached queries.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
