package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// TavilyEndpoint is the Tavily search API.
const TavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey     string
	endpoint   string
	depth      string
	maxResults int
	client     *http.Client
}

// TavilyOption configures a Tavily provider.
type TavilyOption func(*Tavily)

// WithTavilyEndpoint overrides the API endpoint.
func WithTavilyEndpoint(endpoint string) TavilyOption {
	return func(t *Tavily) {
		if endpoint != "" {
			t.endpoint = endpoint
		}
	}
}

// WithTavilyClient sets the HTTP client.
func WithTavilyClient(client *http.Client) TavilyOption {
	return func(t *Tavily) {
		t.client = client
	}
}

// WithTavilyMaxResults caps the number of results requested.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *Tavily) {
		t.maxResults = n
	}
}

// NewTavily constructs a Tavily search provider. Depth is "basic" or
// "advanced" and defaults to "basic".
func NewTavily(apiKey, depth string, opts ...TavilyOption) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	t := &Tavily{
		apiKey:     apiKey,
		endpoint:   TavilyEndpoint,
		depth:      depth,
		maxResults: 5,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tavily) Name() string { return "tavily" }

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"search_depth": t.depth,
		"max_results":  t.maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(t.Name(), resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return limit(results, t.maxResults), nil
}
