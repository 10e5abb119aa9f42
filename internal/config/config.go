package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kapu/wellness-companion-go/internal/service/ai"
)

type Config struct {
	AI       AIConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Server   ServerConfig
	Session  SessionConfig
	Fallback ai.FallbackMessages
	Logging  LoggingConfig
}

// AIConfig selects the backend. Calls are bounded by the caller's context
// only; there is no request timeout.
type AIConfig struct {
	Backend string
	// Offline forces canned responses even when a key is configured.
	Offline bool
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

// Load reads .env (if present) and the process environment. A missing API
// key is not an error: the companion then runs in offline mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AI: AIConfig{
			Backend: strings.ToLower(getEnv("AI_BACKEND", ai.BackendGemini)),
			Offline: getEnvBool("AI_OFFLINE", false),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", ai.DefaultGeminiModel),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", ai.DefaultOpenAIModel),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/companion.log"),
		},
	}

	fallback, err := loadFallbackMessages(getEnv("FALLBACK_MESSAGES_FILE", ""))
	if err != nil {
		return nil, err
	}
	cfg.Fallback = fallback

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.AI.Backend {
	case ai.BackendGemini, ai.BackendOpenAI:
	default:
		return fmt.Errorf("AI_BACKEND must be %q or %q, got %q", ai.BackendGemini, ai.BackendOpenAI, c.AI.Backend)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// HasCredential reports whether the selected backend will be called.
func (c *Config) HasCredential() bool {
	if c.AI.Offline {
		return false
	}
	if c.AI.Backend == ai.BackendOpenAI {
		return c.OpenAI.APIKey != ""
	}
	return c.Gemini.APIKey != ""
}

// loadFallbackMessages reads the optional YAML file, then lets the
// FALLBACK_* variables override single messages. Empty messages keep the
// built-in defaults.
func loadFallbackMessages(path string) (ai.FallbackMessages, error) {
	var msgs ai.FallbackMessages
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return msgs, fmt.Errorf("read fallback messages %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return msgs, fmt.Errorf("parse fallback messages %s: %w", path, err)
		}
	}

	msgs.RateLimited = getEnv("FALLBACK_RATE_LIMITED", msgs.RateLimited)
	msgs.Auth = getEnv("FALLBACK_AUTH", msgs.Auth)
	msgs.Malformed = getEnv("FALLBACK_MALFORMED", msgs.Malformed)
	msgs.Generic = getEnv("FALLBACK_GENERIC", msgs.Generic)
	return msgs, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
