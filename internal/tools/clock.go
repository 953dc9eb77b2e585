package tools

import (
	"context"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

const (
	SystemTimeName        = "SystemTime"
	systemTimeDescription = "Gets the current system time."

	// DefaultTimeFormat is the strftime pattern used when none is configured.
	DefaultTimeFormat = "%Y-%m-%d %H:%M:%S"
)

// Clock reads the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// SystemTime reports the clock reading formatted with a strftime pattern.
type SystemTime struct {
	Config
	clock  Clock
	format string
}

// NewSystemTime creates the tool. A nil clock uses SystemClock and an empty
// format uses DefaultTimeFormat.
func NewSystemTime(clock Clock, format string, opts ...Option) *SystemTime {
	if clock == nil {
		clock = SystemClock{}
	}
	if format == "" {
		format = DefaultTimeFormat
	}
	return &SystemTime{
		Config: newConfig(SystemTimeName, systemTimeDescription, opts),
		clock:  clock,
		format: format,
	}
}

func (t *SystemTime) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format": map[string]any{
				"type":        "string",
				"description": "Optional strftime pattern, default " + t.format,
			},
		},
	}
}

func (t *SystemTime) Call(ctx context.Context, arguments string) (string, error) {
	format := stringArg(arguments, "format")
	// Free text without a conversion verb is not a pattern.
	if !strings.Contains(format, "%") {
		format = t.format
	}
	return strftime.Format(format, t.clock.Now()), nil
}
