package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearxNG queries a self-hosted SearxNG instance through its JSON API.
type SearxNG struct {
	baseURL    string
	language   string
	maxResults int
	client     *http.Client
}

// SearxNGOption configures a SearxNG provider.
type SearxNGOption func(*SearxNG)

// WithSearxNGClient sets the HTTP client.
func WithSearxNGClient(client *http.Client) SearxNGOption {
	return func(s *SearxNG) {
		s.client = client
	}
}

// WithSearxNGLanguage restricts results to a language code.
func WithSearxNGLanguage(lang string) SearxNGOption {
	return func(s *SearxNG) {
		s.language = lang
	}
}

// WithSearxNGMaxResults caps the number of returned results.
func WithSearxNGMaxResults(n int) SearxNGOption {
	return func(s *SearxNG) {
		s.maxResults = n
	}
}

// NewSearxNG creates a provider for the instance at baseURL.
func NewSearxNG(baseURL string, opts ...SearxNGOption) *SearxNG {
	s := &SearxNG{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxResults: 5,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SearxNG) Name() string { return "searxng" }

func (s *SearxNG) Search(ctx context.Context, query string) ([]Result, error) {
	if s.baseURL == "" {
		return nil, errors.New("searxng: base URL is missing")
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("safesearch", "0")
	if s.language != "" {
		values.Set("language", s.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(s.Name(), resp.StatusCode)
	}

	var response struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return limit(results, s.maxResults), nil
}
