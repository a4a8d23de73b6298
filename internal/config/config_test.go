package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDotenv points Load at a file that does not exist.
func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Filter.MaxWindows)
	assert.Equal(t, 40, cfg.Filter.MaxWindowSize)
	assert.Equal(t, 30*time.Second, cfg.Filter.Window())
	assert.Equal(t, "split", cfg.Filter.Overflow)
	assert.Empty(t, cfg.Filter.TokenEncoding, "word estimate by default")
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Server.ServerWindows)
	assert.Equal(t, "gpt-4o-mini", cfg.Analysis.Model)
	assert.Equal(t, 1500, cfg.Analysis.MaxTokens)
	assert.False(t, cfg.Analysis.Enabled(), "analysis must be disabled without provider and key")
	assert.False(t, cfg.Output.Pretty)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOGSIEVE_FILTER__MAX_WINDOWS", "5")
	t.Setenv("LOGSIEVE_FILTER__OVERFLOW", "drop")
	t.Setenv("LOGSIEVE_FILTER__TOKEN_ENCODING", "o200k_base")
	t.Setenv("LOGSIEVE_SERVER__READ_TIMEOUT", "2s")
	t.Setenv("LOGSIEVE_SERVER__CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("LOGSIEVE_OUTPUT__PRETTY", "true")
	t.Setenv("LOGSIEVE_ANALYSIS__TEMPERATURE", "0.5")
	t.Setenv("LOGSIEVE_LOG__LEVEL", "debug")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Filter.MaxWindows)
	assert.Equal(t, "drop", cfg.Filter.Overflow)
	assert.Equal(t, "o200k_base", cfg.Filter.TokenEncoding)
	assert.Equal(t, 40, cfg.Filter.MaxWindowSize, "unset keys keep their defaults")
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Output.Pretty)
	assert.InDelta(t, 0.5, cfg.Analysis.Temperature, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOGSIEVE_FILTER__DIGEST_LOGS=7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("LOGSIEVE_FILTER__DIGEST_LOGS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Filter.DigestLogs)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("LOGSIEVE_ANALYSIS__PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Analysis.APIKey)
	assert.True(t, cfg.Analysis.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"LOGSIEVE_FILTER__OVERFLOW":       "merge",
		"LOGSIEVE_FILTER__MAX_WINDOWS":    "0",
		"LOGSIEVE_FILTER__TOKEN_ENCODING": "gpt2_base",
		"LOGSIEVE_OUTPUT__FORMAT":         "xml",
		"LOGSIEVE_LOG__FORMAT":            "logfmt",
		"LOGSIEVE_OUTPUT__WEBHOOK_URL":    "not a url",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load(noDotenv(t))
			assert.Error(t, err, "%s=%s", key, val)
		})
	}
}

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}
