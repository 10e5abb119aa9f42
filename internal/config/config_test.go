package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kapu/wellness-companion-go/internal/service/ai"
)

var configEnv = []string{
	"AI_BACKEND", "AI_OFFLINE",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "SESSION_TTL", "SESSION_SWEEP_INTERVAL",
	"LOG_LEVEL", "LOG_FILE", "FALLBACK_MESSAGES_FILE",
	"FALLBACK_RATE_LIMITED", "FALLBACK_AUTH", "FALLBACK_MALFORMED", "FALLBACK_GENERIC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutCredential(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ai.BackendGemini, cfg.AI.Backend)
	require.Equal(t, ai.DefaultGeminiModel, cfg.Gemini.Model)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 30*time.Minute, cfg.Session.TTL)
	require.False(t, cfg.HasCredential())
	require.Equal(t, ai.FallbackMessages{}, cfg.Fallback)
}

func TestLoadOpenAIBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_BACKEND", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("SESSION_TTL", "90")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ai.BackendOpenAI, cfg.AI.Backend)
	require.Equal(t, "gpt-test", cfg.OpenAI.Model)
	require.Equal(t, 90*time.Second, cfg.Session.TTL)
	require.True(t, cfg.HasCredential())

	t.Setenv("AI_OFFLINE", "true")
	cfg, err = Load()
	require.NoError(t, err)
	require.False(t, cfg.HasCredential())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_BACKEND", "deepseek")

	_, err := Load()
	require.ErrorContains(t, err, "AI_BACKEND")
}

func TestFallbackMessagesFileAndOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fallback.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limited: Slow down a little.\ngeneric: Something went wrong.\n"), 0o644))
	t.Setenv("FALLBACK_MESSAGES_FILE", path)
	t.Setenv("FALLBACK_GENERIC", "Please try again.")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Slow down a little.", cfg.Fallback.RateLimited)
	require.Equal(t, "Please try again.", cfg.Fallback.Generic)
	require.Empty(t, cfg.Fallback.Auth)
}

func TestFallbackMessagesFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("FALLBACK_MESSAGES_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "nonsense")
	require.Equal(t, time.Minute, getEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "2m")
	require.Equal(t, 2*time.Minute, getEnvDuration("TEST_DURATION", time.Minute))
}
