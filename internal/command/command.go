package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/session"
	"github.com/kapu/wellness-companion-go/internal/wizard"
)

// Command applies one step's input to a session and advances its flow.
// Commands are registered under the name of the step they handle.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sess *session.Session, params map[string]any) error
}

type Dependencies struct {
	Generator wizard.Generator
	Logger    *zap.Logger
}

func (d *Dependencies) log() *zap.Logger {
	if d != nil && d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// NewStepRegistry registers a command for every wizard step.
func NewStepRegistry(deps *Dependencies) *Registry {
	r := NewRegistry()
	r.Register(NewEmotionSelectionCommand(deps))
	r.Register(NewRecordingMethodCommand(deps))
	r.Register(NewAnalysisCommand(deps))
	r.Register(NewAIResponseCommand(deps))
	r.Register(NewGratitudeCommand(deps))
	r.Register(NewProfileCommand(deps))
	return r
}
