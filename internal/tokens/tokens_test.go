package tokens

import (
	"testing"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tjfontaine/searchbot/internal/domain"
)

func TestEstimator_Count(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name      string
		text      string
		minTokens int
		maxTokens int
	}{
		{name: "empty", text: "", minTokens: 0, maxTokens: 0},
		{name: "short", text: "Hi", minTokens: 1, maxTokens: 1},
		{name: "sentence", text: "Hello, how are you?", minTokens: 3, maxTokens: 6},
		{name: "paragraph", text: "Go 1.25 was released with improvements to the runtime and the toolchain.", minTokens: 12, maxTokens: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Count(tt.text)
			if got < tt.minTokens || got > tt.maxTokens {
				t.Errorf("Count() = %d, want between %d and %d", got, tt.minTokens, tt.maxTokens)
			}
		})
	}

	if !e.Estimated() {
		t.Error("Estimated() = false, want true")
	}
}

func TestTiktokenCounter_Count(t *testing.T) {
	c, err := NewTiktoken(tokenizer.Cl100kBase)
	if err != nil {
		t.Fatalf("NewTiktoken() error = %v", err)
	}

	tests := []struct {
		name      string
		text      string
		minTokens int
		maxTokens int
	}{
		{name: "empty", text: "", minTokens: 0, maxTokens: 0},
		{name: "single word", text: "hello", minTokens: 1, maxTokens: 1},
		{name: "sentence", text: "Hello, how are you?", minTokens: 4, maxTokens: 8},
		{name: "timestamp", text: "2026-10-19 12:00:00", minTokens: 5, maxTokens: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Count(tt.text)
			if got < tt.minTokens || got > tt.maxTokens {
				t.Errorf("Count() = %d, want between %d and %d", got, tt.minTokens, tt.maxTokens)
			}
		})
	}

	if c.Estimated() {
		t.Error("Estimated() = true, want false")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if Default() != c {
		t.Error("Default() should return a shared counter")
	}
}

func TestCountMessages(t *testing.T) {
	e := NewEstimator()
	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "What is new in Go?"},
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{Name: "SearchTool", Arguments: `{"query":"go"}`}}},
	}

	got := CountMessages(e, msgs)
	min := 2 * messageOverhead
	if got <= min {
		t.Errorf("CountMessages() = %d, want more than %d", got, min)
	}
	if CountMessages(e, nil) != 0 {
		t.Error("CountMessages(nil) should be 0")
	}
}
