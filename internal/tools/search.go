package tools

import (
	"context"
	"fmt"

	"github.com/tjfontaine/searchbot/internal/search"
)

const (
	SearchToolName        = "SearchTool"
	searchToolDescription = "Searches the web for the latest information."
)

// SearchTool runs a web search through a search.Provider.
type SearchTool struct {
	Config
	provider search.Provider
}

// NewSearchTool creates a SearchTool backed by provider.
func NewSearchTool(provider search.Provider, opts ...Option) *SearchTool {
	return &SearchTool{
		Config:   newConfig(SearchToolName, searchToolDescription, opts),
		provider: provider,
	}
}

func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query.",
			},
		},
		"required": []string{"query"},
	}
}

// Call searches for the query argument. An empty query is reported back to
// the model as an observation rather than failing the run.
func (t *SearchTool) Call(ctx context.Context, arguments string) (string, error) {
	query := stringArg(arguments, "query")
	if query == "" {
		return fmt.Sprintf("%s requires a non-empty \"query\" argument.", t.Name()), nil
	}

	results, err := t.provider.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.provider.Name(), err)
	}
	return search.Format(results), nil
}
