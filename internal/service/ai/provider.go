package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
)

type BackendConfig struct {
	Backend string
	Gemini  GeminiConfig
	OpenAI  OpenAIConfig
}

// NewProvider builds the configured backend adapter. It returns a nil
// Provider and no error when the selected backend has no credential, which
// puts the Responder in offline mode.
func NewProvider(ctx context.Context, cfg BackendConfig, logger *zap.Logger) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendGemini:
		if cfg.Gemini.APIKey == "" {
			logger.Info("Gemini credential not configured, responses will be mocked")
			return nil, nil
		}
		provider, err := NewGeminiProvider(ctx, cfg.Gemini, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Gemini backend enabled", zap.String("model", provider.Model()))
		return provider, nil
	case BackendOpenAI:
		if cfg.OpenAI.APIKey == "" {
			logger.Info("OpenAI credential not configured, responses will be mocked")
			return nil, nil
		}
		provider, err := NewOpenAIProvider(cfg.OpenAI, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("OpenAI backend enabled", zap.String("model", provider.Model()))
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.Backend)
	}
}
