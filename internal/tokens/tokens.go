// Package tokens counts tokens for recorded exchanges.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tjfontaine/searchbot/internal/domain"
)

// messageOverhead approximates the role and separator tokens each chat
// message adds on top of its content.
const messageOverhead = 4

// Counter counts tokens in text.
type Counter interface {
	Count(text string) int
	// Estimated reports whether counts are approximations.
	Estimated() bool
}

// TiktokenCounter counts tokens with a tiktoken encoding.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTiktoken returns a counter for the given encoding.
func NewTiktoken(encoding tokenizer.Encoding) (*TiktokenCounter, error) {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{codec: codec}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return NewEstimator().Count(text)
	}
	return len(ids)
}

func (c *TiktokenCounter) Estimated() bool { return false }

// Estimator provides token count estimation based on character length.
// It is the fallback when no tiktoken encoding is available.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates a new token estimator.
func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4.0}
}

func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	n := int(float64(len(text)) / e.CharsPerToken)
	if n == 0 {
		n = 1
	}
	return n
}

func (e *Estimator) Estimated() bool { return true }

var (
	defaultOnce    sync.Once
	defaultCounter Counter
)

// Default returns a shared cl100k_base counter, or an Estimator when the
// encoding cannot be loaded.
func Default() Counter {
	defaultOnce.Do(func() {
		c, err := NewTiktoken(tokenizer.Cl100kBase)
		if err != nil {
			defaultCounter = NewEstimator()
			return
		}
		defaultCounter = c
	})
	return defaultCounter
}

// CountMessages counts the tokens in a conversation, including a fixed
// per-message overhead.
func CountMessages(c Counter, msgs []domain.Message) int {
	total := 0
	for _, m := range msgs {
		total += messageOverhead
		total += c.Count(m.Content)
		for _, tc := range m.ToolCalls {
			total += c.Count(tc.Name) + c.Count(tc.Arguments)
		}
	}
	return total
}
