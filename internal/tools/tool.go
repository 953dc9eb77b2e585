// Package tools holds the tools the agents can call.
package tools

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/tjfontaine/searchbot/internal/domain"
)

// Tool is a named capability a model can invoke with JSON arguments.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema for the arguments.
	Parameters() map[string]any
	// Call runs the tool. The returned text is fed back to the model.
	Call(ctx context.Context, arguments string) (string, error)
}

// Config holds the name and description shared by every tool.
type Config struct {
	name        string
	description string
}

func (c Config) Name() string {
	return c.name
}

func (c Config) Description() string {
	return c.description
}

// Option overrides a tool's default name or description.
type Option func(c *Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithDescription(desc string) Option {
	return func(c *Config) {
		c.description = desc
	}
}

func newConfig(name, description string, opts []Option) Config {
	c := Config{name: name, description: description}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Spec converts a tool into the declaration sent to the model.
func Spec(t Tool) domain.ToolSpec {
	return domain.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Set is a fixed collection of tools indexed by name.
type Set map[string]Tool

// NewSet indexes tools by name. Later tools win on duplicate names.
func NewSet(tools ...Tool) Set {
	s := make(Set, len(tools))
	for _, t := range tools {
		s[t.Name()] = t
	}
	return s
}

// Names returns the sorted tool names.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the declarations for every tool, sorted by name.
func (s Set) Specs() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(s))
	for _, name := range s.Names() {
		specs = append(specs, Spec(s[name]))
	}
	return specs
}

// stringArg extracts key from a JSON object. Models sometimes send a bare
// JSON string or plain text instead of an object; both are accepted.
func stringArg(arguments, key string) string {
	raw := strings.TrimSpace(arguments)
	if raw == "" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if v, ok := obj[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}

	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return strings.TrimSpace(s)
	}
	return raw
}
