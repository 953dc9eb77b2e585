package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tjfontaine/searchbot/internal/search"
)

type stubSearch struct {
	query   string
	results []search.Result
	err     error
}

func (s *stubSearch) Name() string { return "stub" }

func (s *stubSearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.query = query
	return s.results, s.err
}

func TestStringArg(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
		want      string
	}{
		{"object", `{"query":"  go release "}`, "go release"},
		{"missing key", `{"q":"go"}`, ""},
		{"non string value", `{"query":42}`, ""},
		{"json string", `"go release"`, "go release"},
		{"plain text", `go release`, "go release"},
		{"empty", `  `, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringArg(tt.arguments, "query"); got != tt.want {
				t.Errorf("stringArg(%q) = %q, want %q", tt.arguments, got, tt.want)
			}
		})
	}
}

func TestSearchTool(t *testing.T) {
	stub := &stubSearch{results: []search.Result{{Title: "Go 1.25", URL: "https://go.dev/doc/go1.25", Snippet: "Released."}}}
	tool := NewSearchTool(stub)

	if tool.Name() != "SearchTool" {
		t.Errorf("Name() = %q", tool.Name())
	}
	if tool.Description() != "Searches the web for the latest information." {
		t.Errorf("Description() = %q", tool.Description())
	}

	out, err := tool.Call(context.Background(), `{"query":"latest go"}`)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if stub.query != "latest go" {
		t.Errorf("query = %q", stub.query)
	}
	if !strings.Contains(out, "https://go.dev/doc/go1.25") || !strings.Contains(out, "Released.") {
		t.Errorf("output = %q", out)
	}
}

func TestSearchTool_EmptyQuery(t *testing.T) {
	stub := &stubSearch{}
	out, err := NewSearchTool(stub).Call(context.Background(), `{"query":""}`)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !strings.Contains(out, "non-empty") {
		t.Errorf("output = %q", out)
	}
	if stub.query != "" {
		t.Error("provider should not be called for an empty query")
	}
}

func TestSearchTool_ProviderError(t *testing.T) {
	sentinel := errors.New("quota exceeded")
	_, err := NewSearchTool(&stubSearch{err: sentinel}).Call(context.Background(), `{"query":"x"}`)
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want wrapped sentinel", err)
	}
}

func TestSystemTime(t *testing.T) {
	clock := FixedClock(time.Date(2024, 5, 17, 9, 4, 5, 0, time.UTC))

	tests := []struct {
		name      string
		format    string
		arguments string
		want      string
	}{
		{"default format", "", `{}`, "2024-05-17 09:04:05"},
		{"configured format", "%d/%m/%Y", ``, "17/05/2024"},
		{"argument overrides", "", `{"format":"%H:%M"}`, "09:04"},
		{"bare pattern", "", `%Y`, "2024"},
		{"free text ignored", "", `"current time"`, "2024-05-17 09:04:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewSystemTime(clock, tt.format)
			got, err := tool.Call(context.Background(), tt.arguments)
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Call() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	clock := FixedClock(time.Unix(0, 0))
	set := NewSet(NewSystemTime(clock, ""), NewSearchTool(&stubSearch{}, WithDescription("custom")))

	names := set.Names()
	if strings.Join(names, ",") != "SearchTool,SystemTime" {
		t.Errorf("Names() = %v", names)
	}

	specs := set.Specs()
	if len(specs) != 2 {
		t.Fatalf("Specs() = %d", len(specs))
	}
	if specs[0].Name != "SearchTool" || specs[0].Description != "custom" {
		t.Errorf("spec = %+v", specs[0])
	}
	if specs[0].Parameters["type"] != "object" {
		t.Errorf("parameters = %v", specs[0].Parameters)
	}
}
