// Package storage defines the exchange log written after each pipeline run.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an exchange does not exist.
var ErrNotFound = errors.New("exchange not found")

// DefaultListLimit is used when ListExchanges is called with limit <= 0.
const DefaultListLimit = 100

// Source identifies the surface a question arrived on.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceHTTP Source = "http"
)

// Exchange is one finished question and its answer.
type Exchange struct {
	ID           string        `json:"id"`
	Source       Source        `json:"source"`
	RequestID    string        `json:"request_id,omitempty"`
	Input        string        `json:"input"`
	SearchOutput string        `json:"search_output,omitempty"`
	Output       string        `json:"output,omitempty"`
	Error        string        `json:"error,omitempty"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Duration     time.Duration `json:"duration_ns"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ExchangeStore persists exchanges.
type ExchangeStore interface {
	SaveExchange(ctx context.Context, ex *Exchange) error
	GetExchange(ctx context.Context, id string) (*Exchange, error)
	// ListExchanges returns exchanges newest first.
	ListExchanges(ctx context.Context, limit, offset int) ([]*Exchange, error)
	Close() error
}
