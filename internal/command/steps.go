package command

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/session"
	"github.com/kapu/wellness-companion-go/internal/wizard"
	apperrors "github.com/kapu/wellness-companion-go/pkg/errors"
)

type EmotionSelectionCommand struct {
	deps *Dependencies
}

func NewEmotionSelectionCommand(deps *Dependencies) *EmotionSelectionCommand {
	return &EmotionSelectionCommand{deps: deps}
}

func (c *EmotionSelectionCommand) Name() string {
	return string(wizard.StepEmotionSelection)
}

func (c *EmotionSelectionCommand) Description() string {
	return "Pick an emotion (emotion, custom_emotion, intensity, detailed)"
}

func (c *EmotionSelectionCommand) Execute(_ context.Context, sess *session.Session, params map[string]any) error {
	return sess.Do(func() error {
		screen, err := wizard.MountEmotionSelection(sess.Flow)
		if err != nil {
			return err
		}

		if getBoolParam(params, "detailed", false) {
			screen.ToggleDetailed()
		}

		name := getStringParam(params, "emotion")
		if name != "" {
			if err := screen.Select(name); err != nil {
				if !errors.Is(err, wizard.ErrUnknownEmotion) {
					return err
				}
				// Detailed emotions are accepted without the toggle.
				screen.ToggleDetailed()
				if retryErr := screen.Select(name); retryErr != nil {
					return apperrors.NewValidationError(retryErr.Error(), "emotion", name)
				}
			}
		}
		screen.SetCustomEmotion(getStringParam(params, "custom_emotion"))

		intensity, ok, err := getIntParam(params, "intensity")
		if err != nil {
			return apperrors.NewValidationError(err.Error(), "intensity", params["intensity"])
		}
		if ok {
			if err := screen.SetIntensity(intensity); err != nil {
				return apperrors.NewValidationError(err.Error(), "intensity", intensity)
			}
		}

		return screen.Continue()
	})
}

type RecordingMethodCommand struct {
	deps *Dependencies
}

func NewRecordingMethodCommand(deps *Dependencies) *RecordingMethodCommand {
	return &RecordingMethodCommand{deps: deps}
}

func (c *RecordingMethodCommand) Name() string {
	return string(wizard.StepRecordingMethod)
}

func (c *RecordingMethodCommand) Description() string {
	return "Write the note (content)"
}

func (c *RecordingMethodCommand) Execute(_ context.Context, sess *session.Session, params map[string]any) error {
	return sess.Do(func() error {
		screen, err := wizard.MountRecordingMethod(sess.Flow)
		if err != nil {
			return err
		}
		if getBoolParam(params, "voice", false) {
			c.deps.log().Debug("Voice recording requested, storing typed text only",
				zap.String("session_id", sess.ID),
				zap.Bool("recording", screen.ToggleVoiceRecording()),
			)
		}
		screen.SetText(getStringParam(params, "content"))
		return screen.Continue()
	})
}

type AnalysisCommand struct {
	deps *Dependencies
}

func NewAnalysisCommand(deps *Dependencies) *AnalysisCommand {
	return &AnalysisCommand{deps: deps}
}

func (c *AnalysisCommand) Name() string {
	return string(wizard.StepAnalysis)
}

func (c *AnalysisCommand) Description() string {
	return "Summarise the note and choose the response (advisor, recipient, scenario, addendum, save_to_journal, response_type)"
}

func (c *AnalysisCommand) Execute(_ context.Context, sess *session.Session, params map[string]any) error {
	return sess.Do(func() error {
		var gen wizard.Generator
		if c.deps != nil {
			gen = c.deps.Generator
		}
		screen, err := wizard.MountAnalysis(sess.Flow, gen)
		if err != nil {
			return err
		}

		advisor := domain.AdvisorPerspective(getStringParam(params, "advisor"))
		if err := screen.SelectAdvisor(advisor); err != nil {
			return apperrors.NewValidationError(err.Error(), "advisor", advisor)
		}
		recipient := domain.Recipient(getStringParam(params, "recipient"))
		if err := screen.SelectRecipient(recipient); err != nil {
			return apperrors.NewValidationError(err.Error(), "recipient", recipient)
		}
		screen.SetScenario(getStringParam(params, "scenario"))
		screen.SetAddendum(getStringParam(params, "addendum"))
		screen.SetSaveToJournal(getBoolParam(params, "save_to_journal", true))

		if raw := getStringParam(params, "response_type"); raw != "" {
			if err := screen.ChooseResponseType(domain.ParseResponseType(raw)); err != nil {
				return apperrors.NewValidationError(err.Error(), "response_type", raw)
			}
		}

		if getBoolParam(params, "summarize", true) {
			res := screen.LoadSummary()
			if res.Failed() {
				c.deps.log().Warn("Summary unavailable",
					zap.String("session_id", sess.ID),
					zap.String("failure", string(res.Failure)),
				)
			}
		}

		return screen.Continue()
	})
}

type AIResponseCommand struct {
	deps *Dependencies
}

func NewAIResponseCommand(deps *Dependencies) *AIResponseCommand {
	return &AIResponseCommand{deps: deps}
}

func (c *AIResponseCommand) Name() string {
	return string(wizard.StepAIResponse)
}

func (c *AIResponseCommand) Description() string {
	return "Generate the response and continue (wait, regenerate)"
}

func (c *AIResponseCommand) Execute(ctx context.Context, sess *session.Session, params map[string]any) error {
	if c.deps == nil || c.deps.Generator == nil {
		return fmt.Errorf("ai response command: no generator configured")
	}

	return sess.Do(func() error {
		screen, fresh, err := MountResponseScreen(sess, c.deps.Generator)
		if err != nil {
			return err
		}

		if !fresh && getBoolParam(params, "regenerate", false) {
			if _, ok := screen.Await(ctx); !ok && ctx.Err() != nil {
				return ctx.Err()
			}
			if err := screen.Regenerate(); err != nil {
				return err
			}
		}

		if getBoolParam(params, "wait", true) {
			if _, ok := screen.Await(ctx); !ok && ctx.Err() != nil {
				return ctx.Err()
			}
		}

		return screen.Continue()
	})
}

// MountResponseScreen returns the session's mounted response screen,
// mounting it (and starting its call) when needed. Must be called inside
// sess.Do.
func MountResponseScreen(sess *session.Session, gen wizard.Generator) (*wizard.AIResponseScreen, bool, error) {
	if screen := sess.ResponseScreen(); screen != nil {
		return screen, false, nil
	}
	screen, err := wizard.MountAIResponse(sess.Flow, gen)
	if err != nil {
		return nil, false, err
	}
	sess.SetResponseScreen(screen)
	return screen, true, nil
}

type GratitudeCommand struct {
	deps *Dependencies
}

func NewGratitudeCommand(deps *Dependencies) *GratitudeCommand {
	return &GratitudeCommand{deps: deps}
}

func (c *GratitudeCommand) Name() string {
	return string(wizard.StepGratitude)
}

func (c *GratitudeCommand) Description() string {
	return "Start a new entry or view the profile (action: new_entry | profile)"
}

func (c *GratitudeCommand) Execute(_ context.Context, sess *session.Session, params map[string]any) error {
	return sess.Do(func() error {
		screen, err := wizard.MountGratitude(sess.Flow)
		if err != nil {
			return err
		}
		switch action := getStringParam(params, "action"); action {
		case "profile":
			return screen.ViewProfile()
		case "", "new_entry":
			return screen.StartNewEntry()
		default:
			return apperrors.NewValidationError("unknown action", "action", action)
		}
	})
}

type ProfileCommand struct {
	deps *Dependencies
}

func NewProfileCommand(deps *Dependencies) *ProfileCommand {
	return &ProfileCommand{deps: deps}
}

func (c *ProfileCommand) Name() string {
	return string(wizard.StepProfile)
}

func (c *ProfileCommand) Description() string {
	return "Start a new entry"
}

func (c *ProfileCommand) Execute(_ context.Context, sess *session.Session, _ map[string]any) error {
	return sess.Do(func() error {
		screen, err := wizard.MountProfile(sess.Flow)
		if err != nil {
			return err
		}
		return screen.StartNewEntry()
	})
}
