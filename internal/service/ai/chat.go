package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kapu/wellness-companion-go/internal/prompt"
)

const (
	MinTemperature float32 = 0
	MaxTemperature float32 = 2
)

var (
	ErrEmptyMessage     = errors.New("message must not be empty")
	ErrTemperatureRange = fmt.Errorf("temperature must be between %g and %g", MinTemperature, MaxTemperature)
)

// ChatRequest is one free-form exchange. An empty System uses the companion
// instruction and a nil Temperature keeps the balanced preset.
type ChatRequest struct {
	Message     string
	System      string
	Temperature *float32
}

func (c ChatRequest) Validate() error {
	if strings.TrimSpace(c.Message) == "" {
		return ErrEmptyMessage
	}
	if c.Temperature != nil && (*c.Temperature < MinTemperature || *c.Temperature > MaxTemperature) {
		return fmt.Errorf("%w, got %g", ErrTemperatureRange, *c.Temperature)
	}
	return nil
}

func (c ChatRequest) Prompt() prompt.Prompt {
	return prompt.ChatPrompt(c.System, c.Message)
}

// ModelConfig is the balanced preset with the temperature override applied.
func (c ChatRequest) ModelConfig() ModelConfig {
	config := GetPresetConfig(PresetBalanced)
	if c.Temperature != nil {
		config.Temperature = *c.Temperature
	}
	return config
}
