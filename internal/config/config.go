// Package config loads logsieve settings from the environment.
//
// Every key maps to an environment variable under the LOGSIEVE_ prefix, with
// a double underscore separating nesting levels:
//
//	LOGSIEVE_FILTER__MAX_WINDOWS=10
//	LOGSIEVE_ANALYSIS__API_KEY=sk-...
//
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "LOGSIEVE_"

// Config holds all logsieve configuration.
type Config struct {
	Filter   FilterConfig   `koanf:"filter"`
	Server   ServerConfig   `koanf:"server"`
	Output   OutputConfig   `koanf:"output"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Log      LogConfig      `koanf:"log"`
}

// FilterConfig tunes the filtering engine.
type FilterConfig struct {
	MaxWindows    int    `koanf:"max_windows" validate:"min=1"`
	MaxWindowSize int    `koanf:"max_window_size" validate:"min=1"`
	WindowSeconds int    `koanf:"window_seconds" validate:"min=1"`
	FallbackLimit int    `koanf:"fallback_limit" validate:"min=1"`
	Overflow      string `koanf:"overflow" validate:"oneof=split time drop"`
	DigestLogs    int    `koanf:"digest_logs" validate:"min=1"`
	Verbosity     string `koanf:"verbosity" validate:"oneof=minimal standard full"`
	// TokenEncoding names the tiktoken vocabulary used to measure digests.
	// Empty selects the whitespace heuristic.
	TokenEncoding string `koanf:"token_encoding" validate:"omitempty,oneof=cl100k_base o200k_base p50k_base p50k_edit r50k_base"`
}

// Window returns WindowSeconds as a duration.
func (f FilterConfig) Window() time.Duration {
	return time.Duration(f.WindowSeconds) * time.Second
}

// ServerConfig holds HTTP ingress settings.
type ServerConfig struct {
	Addr               string        `koanf:"addr" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	MaxUploadBytes     int64         `koanf:"max_upload_bytes" validate:"min=1"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	ServerWindows      int           `koanf:"server_windows" validate:"min=1"`
}

// OutputConfig holds digest output settings.
type OutputConfig struct {
	Format        string `koanf:"format" validate:"oneof=json yaml prompt"`
	Pretty        bool   `koanf:"pretty"`
	File          string `koanf:"file"`
	FileMaxSizeMB int    `koanf:"file_max_size_mb" validate:"min=1"`
	WebhookURL    string `koanf:"webhook_url" validate:"omitempty,url"`
}

// AnalysisConfig holds settings for the downstream analysis model.
type AnalysisConfig struct {
	Provider             string        `koanf:"provider" validate:"omitempty,oneof=openai"`
	APIKey               string        `koanf:"api_key"`
	BaseURL              string        `koanf:"base_url" validate:"url"`
	Model                string        `koanf:"model" validate:"required"`
	MaxTokens            int           `koanf:"max_tokens" validate:"min=1"`
	FollowUpMaxTokens    int           `koanf:"followup_max_tokens" validate:"min=1"`
	Temperature          float64       `koanf:"temperature" validate:"min=0,max=2"`
	InputCostPerMillion  float64       `koanf:"input_cost_per_million" validate:"min=0"`
	OutputCostPerMillion float64       `koanf:"output_cost_per_million" validate:"min=0"`
	HistoryLimit         int           `koanf:"history_limit" validate:"min=0"`
	Timeout              time.Duration `koanf:"timeout"`
}

// Enabled reports whether an analysis provider is configured.
func (a AnalysisConfig) Enabled() bool {
	return a.Provider != "" && a.APIKey != ""
}

// LogConfig controls process logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Filter: FilterConfig{
			MaxWindows:    20,
			MaxWindowSize: 40,
			WindowSeconds: 30,
			FallbackLimit: 200,
			Overflow:      "split",
			DigestLogs:    3,
			Verbosity:     "standard",
		},
		Server: ServerConfig{
			Addr:               ":8000",
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       120 * time.Second,
			MaxUploadBytes:     64 << 20,
			CORSAllowedOrigins: []string{"*"},
			ServerWindows:      10,
		},
		Output: OutputConfig{
			Format:        "json",
			FileMaxSizeMB: 100,
		},
		Analysis: AnalysisConfig{
			BaseURL:              "https://api.openai.com/v1",
			Model:                "gpt-4o-mini",
			MaxTokens:            1500,
			FollowUpMaxTokens:    800,
			Temperature:          0.1,
			InputCostPerMillion:  0.15,
			OutputCostPerMillion: 0.60,
			HistoryLimit:         20,
			Timeout:              60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads dotenv files (default ".env", missing files ignored), then the
// LOGSIEVE_ environment, over the defaults, and validates the result.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("config: read environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	// The analysis key is commonly exported under the provider's own name.
	if cfg.Analysis.APIKey == "" {
		cfg.Analysis.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
