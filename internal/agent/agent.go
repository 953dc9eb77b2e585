// Package agent implements tool-using LLM agents.
//
// A ToolAgent runs a reason-and-act loop: it sends the conversation and its
// tool declarations to a chat model, executes any tool calls the model asks
// for, feeds the results back, and repeats until the model answers in plain
// text or the step limit is reached.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/tools"
)

// DefaultMaxSteps bounds the number of model calls per run.
const DefaultMaxSteps = 15

// StoppedMessage is returned, without an error, when a run exhausts its steps.
const StoppedMessage = "Agent stopped due to iteration limit or time limit."

// Agent turns one piece of text into another.
type Agent interface {
	Name() string
	Run(ctx context.Context, input string) (string, error)
}

// Option configures a ToolAgent.
type Option func(*ToolAgent)

// WithMaxSteps sets the maximum number of model calls per run.
func WithMaxSteps(n int) Option {
	return func(a *ToolAgent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// WithMaxTokens caps each completion.
func WithMaxTokens(n int) Option {
	return func(a *ToolAgent) {
		a.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(a *ToolAgent) {
		a.temperature = &t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *ToolAgent) {
		a.logger = logger
	}
}

// ToolAgent is a chat model bound to a system prompt and a fixed tool set.
type ToolAgent struct {
	name         string
	model        string
	systemPrompt string
	chat         domain.ChatModel
	tools        tools.Set

	maxSteps    int
	maxTokens   int
	temperature *float32

	logger *slog.Logger
	tracer trace.Tracer
}

// NewToolAgent creates a ToolAgent.
func NewToolAgent(name string, chat domain.ChatModel, model, systemPrompt string, toolset []tools.Tool, opts ...Option) *ToolAgent {
	a := &ToolAgent{
		name:         name,
		model:        model,
		systemPrompt: systemPrompt,
		chat:         chat,
		tools:        tools.NewSet(toolset...),
		maxSteps:     DefaultMaxSteps,
		logger:       slog.Default(),
		tracer:       otel.Tracer("github.com/tjfontaine/searchbot/internal/agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(slog.String("agent", name))
	return a
}

func (a *ToolAgent) Name() string {
	return a.name
}

// Model returns the model name the agent requests.
func (a *ToolAgent) Model() string {
	return a.model
}

// Run executes the loop for one input. Model and tool errors are returned
// wrapped; an exhausted step budget returns StoppedMessage.
func (a *ToolAgent) Run(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", domain.ErrEmptyInput
	}

	ctx, span := a.tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("agent.name", a.name),
		attribute.String("llm.model", a.model),
	))
	defer span.End()

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: a.systemPrompt},
		{Role: domain.RoleUser, Content: input},
	}
	specs := a.tools.Specs()

	for step := 1; step <= a.maxSteps; step++ {
		resp, err := a.chat.Complete(ctx, &domain.ChatRequest{
			Model:       a.model,
			Messages:    messages,
			Tools:       specs,
			MaxTokens:   a.maxTokens,
			Temperature: a.temperature,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", fmt.Errorf("agent %s: %w", a.name, err)
		}

		if len(resp.Message.ToolCalls) == 0 {
			span.SetAttributes(attribute.Int("agent.steps", step))
			a.logger.DebugContext(ctx, "agent finished", slog.Int("steps", step))
			return strings.TrimSpace(resp.Message.Content), nil
		}

		messages = append(messages, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   resp.Message.Content,
			ToolCalls: resp.Message.ToolCalls,
		})

		for _, call := range resp.Message.ToolCalls {
			observation, err := a.callTool(ctx, call)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return "", fmt.Errorf("agent %s: tool %s: %w", a.name, call.Name, err)
			}
			messages = append(messages, domain.Message{
				Role:       domain.RoleTool,
				Content:    observation,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	span.SetAttributes(attribute.Bool("agent.stopped", true))
	a.logger.WarnContext(ctx, "agent hit step limit", slog.Int("max_steps", a.maxSteps))
	return StoppedMessage, nil
}

// callTool runs one tool call. An unknown tool name is not an error; the
// model is told which tools exist and may try again.
func (a *ToolAgent) callTool(ctx context.Context, call domain.ToolCall) (string, error) {
	tool, ok := a.tools[call.Name]
	if !ok {
		a.logger.DebugContext(ctx, "model requested unknown tool", slog.String("tool", call.Name))
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", call.Name, strings.Join(a.tools.Names(), ", ")), nil
	}

	ctx, span := a.tracer.Start(ctx, "tool.call", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
	))
	defer span.End()

	out, err := tool.Call(ctx, call.Arguments)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	a.logger.DebugContext(ctx, "tool called",
		slog.String("tool", call.Name),
		slog.String("arguments", call.Arguments),
		slog.Int("result_bytes", len(out)),
	)
	return out, nil
}
