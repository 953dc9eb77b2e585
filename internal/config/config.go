// Package config loads searchbot configuration from an optional YAML file and
// SEARCHBOT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides. Nested keys are
// separated by a double underscore, e.g. SEARCHBOT_SERVER__PORT.
const EnvPrefix = "SEARCHBOT_"

// DefaultPath is the config file read when no explicit path is given.
const DefaultPath = "config.yaml"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	LLM       LLMConfig       `koanf:"llm"`
	Search    SearchConfig    `koanf:"search"`
	Clock     ClockConfig     `koanf:"clock"`
	Storage   StorageConfig   `koanf:"storage"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
	// APIKeys holds SHA-256 hashes of accepted keys. Empty disables auth.
	APIKeys []APIKeyConfig `koanf:"api_keys" validate:"dive"`
}

type APIKeyConfig struct {
	KeyHash     string `koanf:"key_hash" validate:"required,len=64,hexadecimal"`
	Description string `koanf:"description"`
}

// LLMConfig selects and configures the chat model backend shared by both agents.
type LLMConfig struct {
	Provider       string  `koanf:"provider" validate:"required"`
	APIKey         string  `koanf:"api_key"`
	BaseURL        string  `koanf:"base_url" validate:"omitempty,url"`
	SearchModel    string  `koanf:"search_model" validate:"required"`
	TimestampModel string  `koanf:"timestamp_model" validate:"required"`
	MaxSteps       int     `koanf:"max_steps" validate:"min=1"`
	MaxTokens      int     `koanf:"max_tokens" validate:"min=0"`
	Temperature    float32 `koanf:"temperature" validate:"min=0,max=2"`
}

type SearchConfig struct {
	Provider   string        `koanf:"provider" validate:"oneof=tavily searxng duckduckgo"`
	APIKey     string        `koanf:"api_key"`
	BaseURL    string        `koanf:"base_url" validate:"omitempty,url"`
	Depth      string        `koanf:"depth" validate:"omitempty,oneof=basic advanced"`
	MaxResults int           `koanf:"max_results" validate:"min=1,max=20"`
	CacheSize  int           `koanf:"cache_size" validate:"min=0"`
	Timeout    time.Duration `koanf:"timeout" validate:"min=0"`
}

type ClockConfig struct {
	// Format is a strftime pattern.
	Format string `koanf:"format" validate:"required"`
}

type StorageConfig struct {
	Type   string       `koanf:"type" validate:"oneof=sqlite memory none"` // sqlite, memory, none
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

var defaults = map[string]any{
	"server.port":            8080,
	"server.timeout":         "2m",
	"llm.provider":           "openai",
	"llm.api_key":            "${GOOGLE_API_KEY}",
	"llm.search_model":       "gemini-1.5-pro",
	"llm.timestamp_model":    "gemini-1.5-flash",
	"llm.max_steps":          15,
	"search.provider":        "tavily",
	"search.api_key":         "${TAVILY_API_KEY}",
	"search.depth":           "basic",
	"search.max_results":     5,
	"search.cache_size":      128,
	"search.timeout":         "30s",
	"clock.format":           "%Y-%m-%d %H:%M:%S",
	"storage.type":           "sqlite",
	"storage.sqlite.path":    "searchbot.db",
	"telemetry.service_name": "searchbot",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

var validate = validator.New()

// Load reads DefaultPath (if present) and the environment.
func Load() (*Config, error) {
	return LoadFile(DefaultPath)
}

// LoadFile reads the YAML file at path (a missing file is not an error),
// applies SEARCHBOT_ overrides and defaults, then validates the result.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// File not found is OK, we'll use env vars
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// Environment variables override the file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.LLM.APIKey = substituteEnvVars(cfg.LLM.APIKey)
	cfg.Search.APIKey = substituteEnvVars(cfg.Search.APIKey)
	cfg.Storage.SQLite.Path = substituteEnvVars(cfg.Storage.SQLite.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Search.Provider == "searxng" && c.Search.BaseURL == "" {
		return errors.New("invalid config: search.base_url is required for searxng")
	}
	if c.Storage.Type == "sqlite" && c.Storage.SQLite.Path == "" {
		return errors.New("invalid config: storage.sqlite.path is required for sqlite storage")
	}
	return nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
