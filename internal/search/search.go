// Package search provides the web search backends behind the SearchTool.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/tjfontaine/searchbot/internal/domain"
)

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider runs a web search.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]Result, error)
}

// Format renders results as numbered plain text for a model to read.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return b.String()
}

// statusError converts an unexpected upstream status into a canonical error
// that still names the backend and the status code.
func statusError(source string, status int) error {
	return domain.ErrorFromStatus(source, status, fmt.Sprintf("%s http %d", source, status))
}

func limit(results []Result, n int) []Result {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
