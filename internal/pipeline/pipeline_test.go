package pipeline

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/tjfontaine/searchbot/internal/agent"
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/search"
	"github.com/tjfontaine/searchbot/internal/testutil"
	"github.com/tjfontaine/searchbot/internal/tools"
)

// mockAgent is a test helper that records calls and returns configured responses.
type mockAgent struct {
	name   string
	output func(string) string
	err    error
	calls  []string
}

func (a *mockAgent) Name() string { return a.name }

func (a *mockAgent) Run(ctx context.Context, input string) (string, error) {
	a.calls = append(a.calls, input)
	if a.err != nil {
		return "", a.err
	}
	return a.output(input), nil
}

func suffix(s string) func(string) string {
	return func(in string) string { return in + s }
}

func TestPipeline_Order(t *testing.T) {
	first := &mockAgent{name: "first", output: suffix(" +search")}
	second := &mockAgent{name: "second", output: suffix(" +time")}
	p := New(first, second, nil)

	out, err := p.Run(context.Background(), "question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "question +search +time" {
		t.Errorf("Run() = %q", out)
	}
	if len(second.calls) != 1 || second.calls[0] != "question +search" {
		t.Errorf("second stage input = %v, want first stage output", second.calls)
	}
	if got := strings.Join(p.Stages(), ","); got != "search,timestamp" {
		t.Errorf("Stages() = %q", got)
	}
}

func TestPipeline_RunState(t *testing.T) {
	p := New(&mockAgent{name: "a", output: suffix("!")}, &mockAgent{name: "b", output: strings.ToUpper}, nil)

	res, err := p.RunState(context.Background(), State{Input: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State.Input != "hi" || res.State.Output != "HI!" {
		t.Errorf("state = %+v", res.State)
	}
	if res.StageOutput(StageSearch) != "hi!" {
		t.Errorf("search output = %q", res.StageOutput(StageSearch))
	}
	if res.StageOutput("missing") != "" {
		t.Error("unknown stage should have empty output")
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	first := &mockAgent{name: "first", output: suffix("")}
	p := New(first, &mockAgent{name: "second", output: suffix("")}, nil)

	for _, in := range []string{"", "  \n\t"} {
		_, err := p.Run(context.Background(), in)
		if !errors.Is(err, domain.ErrEmptyInput) {
			t.Errorf("Run(%q) error = %v, want ErrEmptyInput", in, err)
		}
	}
	if len(first.calls) != 0 {
		t.Error("no stage should run for empty input")
	}
}

func TestPipeline_StageError(t *testing.T) {
	upstream := domain.ErrRateLimit("quota")

	tests := []struct {
		name      string
		firstErr  error
		secondErr error
		wantStage string
		wantCalls int
	}{
		{name: "search fails", firstErr: upstream, wantStage: StageSearch, wantCalls: 0},
		{name: "timestamp fails", secondErr: upstream, wantStage: StageTimestamp, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := &mockAgent{name: "first", output: suffix(""), err: tt.firstErr}
			second := &mockAgent{name: "second", output: suffix(""), err: tt.secondErr}
			p := New(first, second, nil)

			_, err := p.Run(context.Background(), "q")

			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("error = %v, want *StageError", err)
			}
			if stageErr.Stage != tt.wantStage {
				t.Errorf("stage = %q, want %q", stageErr.Stage, tt.wantStage)
			}
			if !errors.Is(err, upstream) {
				t.Error("StageError should unwrap to the stage error")
			}
			if !strings.Contains(err.Error(), "pipeline stage "+tt.wantStage) {
				t.Errorf("Error() = %q", err.Error())
			}
			if len(second.calls) != tt.wantCalls {
				t.Errorf("second stage calls = %d, want %d", len(second.calls), tt.wantCalls)
			}
		})
	}
}

func TestPipeline_RunState_PartialResult(t *testing.T) {
	first := &mockAgent{name: "first", output: suffix(" +search")}
	second := &mockAgent{name: "second", err: errors.New("clock unavailable")}
	p := New(first, second, nil)

	res, err := p.RunState(context.Background(), State{Input: "q"})
	if err == nil {
		t.Fatal("expected error")
	}
	if res == nil {
		t.Fatal("expected partial result")
	}
	if got := res.StageOutput(StageSearch); got != "q +search" {
		t.Errorf("search output = %q", got)
	}
	if res.State.Output != "" {
		t.Errorf("final output = %q, want empty", res.State.Output)
	}
}

func TestPipeline_EmptyStageOutput(t *testing.T) {
	first := &mockAgent{name: "first", output: func(string) string { return "  " }}
	second := &mockAgent{name: "second", output: suffix(" +time")}
	p := New(first, second, nil)

	res, err := p.RunState(context.Background(), State{Input: "What is new in Go?"})

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageSearch {
		t.Fatalf("error = %v, want *StageError for search", err)
	}
	if !errors.Is(err, domain.ErrEmptyOutput) {
		t.Errorf("error = %v, want ErrEmptyOutput", err)
	}
	if errors.Is(err, domain.ErrEmptyInput) {
		t.Error("empty stage output must not look like empty caller input")
	}
	if len(second.calls) != 0 {
		t.Errorf("second stage calls = %d, want 0", len(second.calls))
	}
	if res == nil || len(res.Stages) != 1 {
		t.Errorf("partial result = %+v, want the search stage", res)
	}
}

type fixedSearch []search.Result

func (f fixedSearch) Name() string { return "fixed" }

func (f fixedSearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	return f, nil
}

func TestPipeline_EndToEndDeterministic(t *testing.T) {
	results := fixedSearch{{Title: "Go 1.25 released", URL: "https://go.dev/blog/go1.25", Snippet: "Go 1.25 is out."}}
	clock := tools.FixedClock(time.Date(2025, 8, 12, 18, 30, 0, 0, time.UTC))
	model := testutil.ReactModel{Separator: "\n\nTimestamp: "}

	build := func() *Pipeline {
		return New(
			agent.NewSearchAgent(model, "gemini-1.5-pro", results),
			agent.NewTimestampAgent(model, "gemini-1.5-flash", clock, tools.DefaultTimeFormat),
			nil,
		)
	}

	first, err := build().Run(context.Background(), "What's new in Go?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := build().Run(context.Background(), "What's new in Go?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first != second {
		t.Errorf("output not deterministic:\n%q\n%q", first, second)
	}

	if !strings.Contains(first, "https://go.dev/blog/go1.25") {
		t.Errorf("output missing search content: %q", first)
	}
	ts := regexp.MustCompile(`Timestamp: \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	if !ts.MatchString(first) {
		t.Errorf("output missing timestamp: %q", first)
	}
	if !strings.HasSuffix(first, "2025-08-12 18:30:00") {
		t.Errorf("timestamp should come from the fixed clock: %q", first)
	}
}
