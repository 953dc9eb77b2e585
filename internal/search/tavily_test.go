package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/testutil"
)

func TestTavily_Search_Recorded(t *testing.T) {
	// Skip if no API key and recording
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" && testutil.Recording() {
		t.Skip("Skipping test: TAVILY_API_KEY not set")
	}
	if apiKey == "" {
		apiKey = "test-key"
	}

	recorder, cleanup := testutil.NewVCRRecorder(t, "tavily_search")
	defer cleanup()

	tv := NewTavily(apiKey, "", WithTavilyClient(testutil.VCRHTTPClient(recorder)), WithTavilyMaxResults(3))

	results, err := tv.Search(context.Background(), "latest Go release")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].URL != "https://go.dev/doc/go1.25" {
		t.Errorf("first url = %q", results[0].URL)
	}
	if !strings.Contains(results[0].Snippet, "1.25") {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
}

func TestTavily_Search_Request(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tvly-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"results":[
			{"title":"a","url":"https://a.example","content":"A"},
			{"title":"b","url":"https://b.example","content":"B"},
			{"title":"c","url":"https://c.example","content":"C"}
		]}`))
	}))
	defer server.Close()

	tv := NewTavily("tvly-key", "", WithTavilyEndpoint(server.URL), WithTavilyMaxResults(2))
	results, err := tv.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if body["search_depth"] != "basic" {
		t.Errorf("search_depth = %v, want basic", body["search_depth"])
	}
	if body["max_results"] != float64(2) {
		t.Errorf("max_results = %v", body["max_results"])
	}
	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
}

func TestTavily_Search_MissingKey(t *testing.T) {
	tv := NewTavily("  ", "basic")
	if _, err := tv.Search(context.Background(), "q"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestTavily_Search_RateLimitIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tv := NewTavily("k", "basic", WithTavilyEndpoint(server.URL))
	_, err := tv.Search(context.Background(), "q")

	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Type != domain.ErrorTypeRateLimit {
		t.Errorf("type = %q, want %q", apiErr.Type, domain.ErrorTypeRateLimit)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestTavily_Search_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType domain.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrorTypeAuthentication},
		{"rate limited", http.StatusTooManyRequests, domain.ErrorTypeRateLimit},
		{"server error", http.StatusInternalServerError, domain.ErrorTypeServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			tv := NewTavily("k", "basic", WithTavilyEndpoint(server.URL))
			_, err := tv.Search(context.Background(), "q")

			apiErr, ok := domain.AsAPIError(err)
			if !ok {
				t.Fatalf("error = %v, want APIError", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if !strings.Contains(apiErr.Message, "tavily http") {
				t.Errorf("message = %q, want status in message", apiErr.Message)
			}
		})
	}
}
