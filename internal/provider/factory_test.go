package provider_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tjfontaine/searchbot/internal/config"
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/provider"
)

func TestListProviderTypes(t *testing.T) {
	provider.RegisterBuiltins()

	types := provider.ListProviderTypes()

	// Check for expected types
	expected := []string{"anthropic", "openai"}
	typeSet := make(map[string]bool)
	for _, tp := range types {
		typeSet[tp] = true
	}

	for _, exp := range expected {
		if !typeSet[exp] {
			t.Errorf("expected provider type %q to be registered", exp)
		}
	}
}

func TestListFactories(t *testing.T) {
	provider.RegisterBuiltins()

	// Verify factories have required fields
	for _, f := range provider.ListFactories() {
		if f.Type == "" {
			t.Error("factory has empty Type")
		}
		if f.Description == "" {
			t.Errorf("factory %q has empty Description", f.Type)
		}
		if f.Create == nil {
			t.Errorf("factory %q has nil Create", f.Type)
		}
	}
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	tests := []struct {
		name    string
		cfg     config.LLMConfig
		want    string
		wantErr bool
	}{
		{
			name: "openai",
			cfg:  config.LLMConfig{Provider: "openai", APIKey: "test-key"},
			want: "openai",
		},
		{
			name: "openai without key",
			cfg:  config.LLMConfig{Provider: "openai", BaseURL: "http://localhost:11434/v1"},
			want: "openai",
		},
		{
			name: "anthropic",
			cfg:  config.LLMConfig{Provider: "anthropic", APIKey: "test-key"},
			want: "anthropic",
		},
		{
			name:    "anthropic without key",
			cfg:     config.LLMConfig{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     config.LLMConfig{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := provider.New(tt.cfg, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if model.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", model.Name(), tt.want)
			}
		})
	}
}

type stubModel struct {
	err error
}

func (s *stubModel) Name() string { return "stub" }

func (s *stubModel) Complete(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ChatResponse{Model: req.Model, Message: domain.Message{Role: domain.RoleAssistant, Content: "ok"}}, nil
}

func TestInstrumentedModel(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	m := provider.NewInstrumented(&stubModel{}, logger)
	resp, err := m.Complete(context.Background(), &domain.ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Message.Content != "ok" {
		t.Errorf("content = %q", resp.Message.Content)
	}

	sentinel := errors.New("boom")
	m = provider.NewInstrumented(&stubModel{err: sentinel}, logger)
	if _, err := m.Complete(context.Background(), &domain.ChatRequest{Model: "m"}); !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want sentinel", err)
	}
}
