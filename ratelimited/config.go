package ratelimited

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Config holds the rate budget and accounting knobs for a rate-limited
// client.
type Config struct {
	// RequestsPerSecond is the request-rate budget. The request bucket
	// holds at most one second's worth of burst.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" toml:"requests_per_second"`

	// TokensPerMinute is the token-rate budget. The token bucket holds
	// a full minute's worth of burst.
	TokensPerMinute float64 `json:"tokens_per_minute" yaml:"tokens_per_minute" toml:"tokens_per_minute"`

	// CharsPerToken is the character-to-token ratio used by the default
	// estimator. 0 uses the estimator default (4).
	CharsPerToken float64 `json:"chars_per_token,omitempty" yaml:"chars_per_token" toml:"chars_per_token"`

	// ResponseReserve is the flat token overhead added to every
	// estimate to budget for the response.
	ResponseReserve int `json:"response_reserve,omitempty" yaml:"response_reserve" toml:"response_reserve"`

	// RefundOnError refunds the full estimate when a call fails or a
	// stream ends before its terminal usage event. Off by default: a
	// failed call still consumed an unknown amount on the remote side,
	// so the conservative policy keeps the reservation.
	RefundOnError bool `json:"refund_on_error,omitempty" yaml:"refund_on_error" toml:"refund_on_error"`

	// Timeout bounds the wrapped remote call. It does not bound the
	// rate-limiter wait; cancel the caller's context for that.
	// 0 means no timeout.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout" toml:"timeout"`
}

// DefaultConfig returns a Config with conservative free-tier defaults.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 1,
		TokensPerMinute:   500_000,
		CharsPerToken:     0,
		ResponseReserve:   100,
		Timeout:           60 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.TokensPerMinute <= 0 {
		return fmt.Errorf("tokens_per_minute must be positive, got %v", c.TokensPerMinute)
	}
	if c.CharsPerToken < 0 {
		return fmt.Errorf("chars_per_token must be >= 0, got %v", c.CharsPerToken)
	}
	if c.ResponseReserve < 0 {
		return fmt.Errorf("response_reserve must be >= 0, got %d", c.ResponseReserve)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// LoadFromEnv populates config fields from environment variables.
// Variables use the LLMRATE_ prefix and take precedence over existing
// values.
//
// Supported variables:
//   - LLMRATE_REQUESTS_PER_SECOND: Request-rate budget
//   - LLMRATE_TOKENS_PER_MINUTE: Token-rate budget
//   - LLMRATE_CHARS_PER_TOKEN: Estimator character ratio
//   - LLMRATE_RESPONSE_RESERVE: Flat response overhead in tokens
//   - LLMRATE_REFUND_ON_ERROR: "true" to refund estimates on failure
//   - LLMRATE_TIMEOUT: Remote call timeout (e.g. "60s")
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("LLMRATE_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("LLMRATE_TOKENS_PER_MINUTE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.TokensPerMinute = f
		}
	}
	if v := os.Getenv("LLMRATE_CHARS_PER_TOKEN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CharsPerToken = f
		}
	}
	if v := os.Getenv("LLMRATE_RESPONSE_RESERVE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ResponseReserve = n
		}
	}
	if v := os.Getenv("LLMRATE_REFUND_ON_ERROR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RefundOnError = b
		}
	}
	if v := os.Getenv("LLMRATE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// LoadConfig reads a config file, chosen by extension: .yaml/.yml,
// .toml, or .json. Fields not present in the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing TOML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ConfigSchema returns the JSON schema describing the config file
// format, for editor integration and validation tooling.
func ConfigSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Config{})
	return json.MarshalIndent(schema, "", "  ")
}
