package provider

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/searchbot/internal/domain"
)

// InstrumentedModel wraps a chat model with a span and a debug log per call.
type InstrumentedModel struct {
	inner  domain.ChatModel
	logger *slog.Logger
	tracer trace.Tracer
}

// NewInstrumented creates a new InstrumentedModel.
func NewInstrumented(inner domain.ChatModel, logger *slog.Logger) *InstrumentedModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstrumentedModel{
		inner:  inner,
		logger: logger,
		tracer: otel.Tracer("github.com/tjfontaine/searchbot/internal/provider"),
	}
}

func (m *InstrumentedModel) Name() string {
	return m.inner.Name()
}

// Unwrap returns the underlying model.
func (m *InstrumentedModel) Unwrap() domain.ChatModel {
	return m.inner
}

func (m *InstrumentedModel) Complete(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := m.tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.provider", m.inner.Name()),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.messages", len(req.Messages)),
	))
	defer span.End()

	start := time.Now()
	resp, err := m.inner.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.ErrorContext(ctx, "llm request failed",
			slog.String("provider", m.inner.Name()),
			slog.String("model", req.Model),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
		attribute.Int("llm.tool_calls", len(resp.Message.ToolCalls)),
	)
	m.logger.DebugContext(ctx, "llm request completed",
		slog.String("provider", m.inner.Name()),
		slog.String("model", req.Model),
		slog.String("finish_reason", resp.FinishReason),
		slog.Int("tool_calls", len(resp.Message.ToolCalls)),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
