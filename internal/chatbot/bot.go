// Package chatbot answers questions through the pipeline and records each
// exchange.
package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/pipeline"
	"github.com/tjfontaine/searchbot/internal/storage"
	"github.com/tjfontaine/searchbot/internal/tokens"
)

// Runner runs the two-stage pipeline.
type Runner interface {
	RunState(ctx context.Context, state pipeline.State) (*pipeline.Result, error)
}

// Option configures a Bot.
type Option func(*Bot)

// WithStore records exchanges to store. A nil store disables recording.
func WithStore(store storage.ExchangeStore) Option {
	return func(b *Bot) {
		b.store = store
	}
}

// WithCounter sets the token counter.
func WithCounter(c tokens.Counter) Option {
	return func(b *Bot) {
		b.counter = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// Bot is the service behind both the CLI and the HTTP surface.
type Bot struct {
	runner  Runner
	store   storage.ExchangeStore
	counter tokens.Counter
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Bot around runner.
func New(runner Runner, opts ...Option) *Bot {
	b := &Bot{
		runner: runner,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.counter == nil {
		b.counter = tokens.Default()
	}
	return b
}

// Store returns the exchange store, or nil when recording is disabled.
func (b *Bot) Store() storage.ExchangeStore {
	return b.store
}

// Ask runs input through the pipeline and returns the final answer.
func (b *Bot) Ask(ctx context.Context, source storage.Source, input string) (string, error) {
	start := b.now()
	res, err := b.runner.RunState(ctx, pipeline.State{Input: input})

	// Nothing ran for rejected input, so there is nothing to record.
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) && errors.Is(err, domain.ErrEmptyInput) {
		return "", err
	}

	ex := &storage.Exchange{
		ID:          uuid.New().String(),
		Source:      source,
		RequestID:   domain.RequestIDFromContext(ctx),
		Input:       input,
		InputTokens: b.counter.Count(input),
		Duration:    b.now().Sub(start),
		CreatedAt:   start,
	}
	if res != nil {
		ex.SearchOutput = res.StageOutput(pipeline.StageSearch)
		ex.Output = res.State.Output
		ex.OutputTokens = b.counter.Count(res.State.Output)
	}
	if err != nil {
		ex.Error = err.Error()
	}

	b.record(ctx, ex)

	if err != nil {
		return "", err
	}
	return ex.Output, nil
}

// record saves ex; failures are logged and never surface to the caller.
func (b *Bot) record(ctx context.Context, ex *storage.Exchange) {
	b.logger.Info("exchange completed",
		slog.String("exchange_id", ex.ID),
		slog.String("source", string(ex.Source)),
		slog.String("request_id", ex.RequestID),
		slog.Int("input_tokens", ex.InputTokens),
		slog.Int("output_tokens", ex.OutputTokens),
		slog.Duration("duration", ex.Duration),
		slog.Bool("failed", ex.Error != ""),
	)

	if b.store == nil {
		return
	}
	// The request context may already be cancelled; the write is still wanted.
	if err := b.store.SaveExchange(context.WithoutCancel(ctx), ex); err != nil {
		b.logger.Warn("failed to record exchange",
			slog.String("exchange_id", ex.ID),
			slog.String("error", err.Error()),
		)
	}
}
