package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/searchbot/internal/agent"
	"github.com/tjfontaine/searchbot/internal/domain"
)

const (
	StageSearch    = "search"
	StageTimestamp = "timestamp"
)

// State is the value carried between stages.
type State struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// StageResult records one stage's output.
type StageResult struct {
	Stage    string        `json:"stage"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// Result is the final state plus the per-stage outputs.
type Result struct {
	State  State         `json:"state"`
	Stages []StageResult `json:"stages"`
}

// StageOutput returns the output recorded for stage, or "" if it did not run.
func (r *Result) StageOutput(stage string) string {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Output
		}
	}
	return ""
}

type stage struct {
	name  string
	agent agent.Agent
}

// Pipeline runs the search stage then the timestamp stage.
type Pipeline struct {
	stages []stage
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates the pipeline. search is the initial stage and timestamp the
// terminal one.
func New(search, timestamp agent.Agent, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		stages: []stage{
			{name: StageSearch, agent: search},
			{name: StageTimestamp, agent: timestamp},
		},
		logger: logger,
		tracer: otel.Tracer("github.com/tjfontaine/searchbot/internal/pipeline"),
	}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.name
	}
	return names
}

// Run answers input and returns the terminal stage's output.
func (p *Pipeline) Run(ctx context.Context, input string) (string, error) {
	res, err := p.RunState(ctx, State{Input: input})
	if err != nil {
		return "", err
	}
	return res.State.Output, nil
}

// RunState runs every stage in order, feeding each stage's output to the
// next. A stage that answers with no text fails with domain.ErrEmptyOutput.
// On a stage error the partial result is returned with the *StageError so
// completed stage outputs stay available.
func (p *Pipeline) RunState(ctx context.Context, state State) (*Result, error) {
	if strings.TrimSpace(state.Input) == "" {
		return nil, domain.ErrEmptyInput
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	res := &Result{}
	current := state.Input
	for _, s := range p.stages {
		start := time.Now()
		out, err := p.runStage(ctx, s, current)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			res.State = State{Input: state.Input}
			return res, &StageError{Stage: s.name, Err: err}
		}
		res.Stages = append(res.Stages, StageResult{Stage: s.name, Output: out, Duration: time.Since(start)})
		if strings.TrimSpace(out) == "" {
			err := domain.ErrEmptyOutput
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			res.State = State{Input: state.Input}
			return res, &StageError{Stage: s.name, Err: err}
		}
		current = out
	}

	res.State = State{Input: state.Input, Output: current}
	return res, nil
}

func (p *Pipeline) runStage(ctx context.Context, s stage, input string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.stage", trace.WithAttributes(
		attribute.String("pipeline.stage", s.name),
		attribute.String("agent.name", s.agent.Name()),
	))
	defer span.End()

	start := time.Now()
	out, err := s.agent.Run(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.DebugContext(ctx, "pipeline stage failed",
			slog.String("stage", s.name),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	p.logger.DebugContext(ctx, "pipeline stage completed",
		slog.String("stage", s.name),
		slog.Duration("duration", time.Since(start)),
		slog.Int("output_len", len(out)),
	)
	return out, nil
}

// StageError is returned when a stage fails. It unwraps to the stage's error.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s error: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
