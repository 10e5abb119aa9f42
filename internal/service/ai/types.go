package ai

import (
	"context"
	"errors"

	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/prompt"
)

// ErrMalformedResponse is returned by providers when the response envelope
// carries no usable text.
var ErrMalformedResponse = errors.New("malformed response envelope")

// Provider is one text-generation backend. Implementations issue exactly one
// request per Generate call and never retry.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, p prompt.Prompt, config ModelConfig) (ProviderResult, error)
}

type ProviderResult struct {
	Text  string
	Model string
}

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	PresetCreative ModelPreset = "creative"
	PresetBalanced ModelPreset = "balanced"
	PresetPrecise  ModelPreset = "precise"
)

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// GetPresetConfig returns the configuration for a preset
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetCreative:
		return ModelConfig{
			Temperature:     0.8,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 1024,
		}
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.2,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 512,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.6,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 768,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

// PresetFor picks the sampling preset for a response type. Expression text
// is written for the user to send, so it gets more freedom.
func PresetFor(t domain.ResponseType) ModelPreset {
	switch t {
	case domain.ResponseExpression:
		return PresetCreative
	case domain.ResponseSummary:
		return PresetPrecise
	default:
		return PresetBalanced
	}
}
