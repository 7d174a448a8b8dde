package common

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	for _, k := range []string{"LLM_PROVIDER", "VLLM_BASE_URL", "VLLM_MODEL", "TEXT_MODEL", "MAX_PAGES", "MAX_ATTEMPTS", "PAGE_TIMEOUT", "EMBEDDING_PROVIDER", "DB_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:8000/v1", cfg.LLM.BaseURL)
	assert.Equal(t, cfg.LLM.Model, cfg.LLM.TextModel)
	assert.Equal(t, 10, cfg.Pipeline.MaxPages)
	assert.Equal(t, 10, cfg.Pipeline.Concurrency)
	assert.Equal(t, 5, cfg.Pipeline.MetadataPageCeiling)
	assert.Equal(t, 1, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 300*time.Second, cfg.Pipeline.PageTimeout)
	assert.Equal(t, 144.0, cfg.Pipeline.RenderDPI)
}

func TestLoadConfigFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MAX_PAGES", "3")
	t.Setenv("PAGE_TIMEOUT", "45s")
	t.Setenv("LLM_PROVIDER", "OLLAMA")

	cfg := LoadConfig()
	assert.Equal(t, 3, cfg.Pipeline.MaxPages)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.PageTimeout)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	isolateEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("MAX_ATTEMPTS=4\nTEXT_MODEL=from-file\nMAX_PAGES=2\n"), 0o644))
	t.Setenv("ENV_FILE", envFile)
	os.Unsetenv("MAX_ATTEMPTS")
	os.Unsetenv("TEXT_MODEL")
	t.Cleanup(func() {
		os.Unsetenv("MAX_ATTEMPTS")
		os.Unsetenv("TEXT_MODEL")
	})
	// real env wins over the file
	t.Setenv("MAX_PAGES", "7")

	cfg := LoadConfig()
	assert.Equal(t, 4, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, "from-file", cfg.LLM.TextModel)
	assert.Equal(t, 7, cfg.Pipeline.MaxPages)
}

func TestValidateRejectsBadValues(t *testing.T) {
	isolateEnv(t)
	cfg := LoadConfig()
	cfg.LLM.Provider = "acme"
	cfg.LLM.BaseURL = "not a url"
	cfg.Pipeline.MaxPages = 0
	cfg.Pipeline.MaxAttempts = -1
	cfg.Pipeline.PageTimeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeConfig, appErr.Code)
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
	assert.Contains(t, err.Error(), "MAX_PAGES")
	assert.Contains(t, err.Error(), "MAX_ATTEMPTS")
	assert.Contains(t, err.Error(), "PAGE_TIMEOUT")
	assert.Contains(t, err.Error(), "VLLM_BASE_URL")
}

func TestValidateDatabase(t *testing.T) {
	isolateEnv(t)
	cfg := LoadConfig()
	assert.Error(t, cfg.ValidateDatabase())
	cfg.Database.DSN = "postgres://u:p@localhost:5432/db"
	assert.NoError(t, cfg.ValidateDatabase())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, CodeUnsupportedInput, ErrorCode(NewUnsupportedInputError("x")))
	assert.Equal(t, CodeEmptyInput, ErrorCode(WrapError(NewEmptyInputError("x"), "embed")))
	assert.Equal(t, CodeUpstream, ErrorCode(NewUpstreamError("x", errors.New("y"))))
	assert.Equal(t, CodeUpstream, ErrorCode(errors.New("anything")))
}
