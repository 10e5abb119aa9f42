package command

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/session"
	"github.com/kapu/wellness-companion-go/internal/wizard"
	apperrors "github.com/kapu/wellness-companion-go/pkg/errors"
)

type fakeGenerator struct {
	calls atomic.Int32
	types []domain.ResponseType
}

func (f *fakeGenerator) Respond(_ context.Context, req domain.ResponseRequest) domain.ResponseResult {
	f.calls.Add(1)
	f.types = append(f.types, req.Type)
	return domain.ResponseResult{Text: "generated " + req.Type.String(), Source: "fake"}
}

func newTestSession(t *testing.T) (*Registry, *session.Session, *fakeGenerator) {
	t.Helper()
	gen := &fakeGenerator{}
	registry := NewStepRegistry(&Dependencies{Generator: gen, Logger: zap.NewNop()})
	store := session.NewStore(0, zap.NewNop())
	t.Cleanup(store.Close)
	return registry, store.Create(), gen
}

func advance(t *testing.T, r *Registry, sess *session.Session, params map[string]any) {
	t.Helper()
	if err := r.Execute(context.Background(), sess, string(sess.Flow.Current()), params); err != nil {
		t.Fatalf("advance from %s: %v", sess.Flow.Current(), err)
	}
}

func TestRegistryCoversEveryStep(t *testing.T) {
	r, _, _ := newTestSession(t)
	if r.Count() != len(wizard.Steps) {
		t.Fatalf("expected %d commands, got %d", len(wizard.Steps), r.Count())
	}
	for _, cfg := range wizard.Steps {
		if _, ok := r.Describe()[string(cfg.Step)]; !ok {
			t.Fatalf("no command registered for %s", cfg.Step)
		}
	}
}

func TestRegistryUnknownCommand(t *testing.T) {
	r, sess, _ := newTestSession(t)
	err := r.Execute(context.Background(), sess, "settings", nil)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestStepCommandsDriveFullFlow(t *testing.T) {
	r, sess, gen := newTestSession(t)

	advance(t, r, sess, map[string]any{"emotion": "happy", "intensity": float64(8)})
	advance(t, r, sess, map[string]any{"content": "I got into my first-choice school"})
	advance(t, r, sess, map[string]any{
		"advisor":       "mentor",
		"recipient":     "partner",
		"scenario":      "dinner",
		"response_type": "expression",
	})

	if sess.Flow.Current() != wizard.StepAIResponse {
		t.Fatalf("expected ai_response, got %s", sess.Flow.Current())
	}
	entry, err := sess.Flow.Params().Entry()
	if err != nil {
		t.Fatalf("entry missing: %v", err)
	}
	if entry.AISummary != "generated summary" || entry.AdvisorPerspective != domain.AdvisorMentor {
		t.Fatalf("unexpected entry %+v", entry)
	}

	advance(t, r, sess, nil)
	resp, ok := sess.Flow.Params().Response()
	if !ok || resp.Text != "generated expression" {
		t.Fatalf("expected generated response on gratitude, got %+v (%v)", resp, ok)
	}

	advance(t, r, sess, map[string]any{"action": "profile"})
	if sess.Flow.Current() != wizard.StepProfile {
		t.Fatalf("expected profile, got %s", sess.Flow.Current())
	}
	advance(t, r, sess, nil)
	if sess.Flow.Current() != wizard.StepEmotionSelection {
		t.Fatalf("expected emotion_selection, got %s", sess.Flow.Current())
	}

	if gen.calls.Load() != 2 {
		t.Fatalf("expected summary and expression calls, got %d", gen.calls.Load())
	}
}

func TestEmotionSelectionValidation(t *testing.T) {
	r, sess, _ := newTestSession(t)
	ctx := context.Background()

	err := r.Execute(ctx, sess, "emotion_selection", map[string]any{"emotion": "happy", "intensity": float64(12)})
	var validation *apperrors.ValidationError
	if !errors.As(err, &validation) || validation.Field != "intensity" {
		t.Fatalf("expected intensity validation error, got %v", err)
	}

	err = r.Execute(ctx, sess, "emotion_selection", map[string]any{"emotion": "joyful"})
	if !errors.As(err, &validation) || validation.Field != "emotion" {
		t.Fatalf("expected emotion validation error, got %v", err)
	}

	err = r.Execute(ctx, sess, "emotion_selection", map[string]any{"emotion": "Other"})
	if !errors.Is(err, wizard.ErrGuardNotSatisfied) {
		t.Fatalf("expected guard error, got %v", err)
	}

	advance(t, r, sess, map[string]any{"emotion": "Stressed"})
	emotion, _ := sess.Flow.Params().Emotion()
	if emotion.Name != "Stressed" {
		t.Fatalf("expected detailed emotion to be accepted, got %+v", emotion)
	}
}

func TestCommandForWrongStep(t *testing.T) {
	r, sess, _ := newTestSession(t)
	err := r.Execute(context.Background(), sess, "analysis", map[string]any{})
	if !errors.Is(err, wizard.ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
}

func TestLoggedEntryWithoutSummary(t *testing.T) {
	r, sess, gen := newTestSession(t)

	advance(t, r, sess, map[string]any{"emotion": "Sad", "intensity": "3"})
	advance(t, r, sess, map[string]any{"content": "long week"})
	advance(t, r, sess, map[string]any{"summarize": false, "save_to_journal": false})
	advance(t, r, sess, nil)

	if gen.calls.Load() != 1 {
		t.Fatalf("expected only the logged acknowledgement call, got %d", gen.calls.Load())
	}
	if gen.types[0] != domain.ResponseLogged {
		t.Fatalf("expected logged request, got %s", gen.types[0])
	}
	if len(sess.Flow.History()) != 0 {
		t.Fatalf("entry should not be saved to the journal")
	}
}

func TestVoiceRecordingKeepsTypedText(t *testing.T) {
	r, sess, _ := newTestSession(t)

	advance(t, r, sess, map[string]any{"emotion": "Sad", "intensity": float64(2)})
	advance(t, r, sess, map[string]any{"voice": true, "content": "  quiet walk  "})

	if sess.Flow.Current() != wizard.StepAnalysis {
		t.Fatalf("expected analysis, got %s", sess.Flow.Current())
	}
	content, err := sess.Flow.Params().Content()
	if err != nil || content != "quiet walk" {
		t.Fatalf("expected typed content, got %q (%v)", content, err)
	}
	if sess.Flow.Params().IsVoiceNote() {
		t.Fatalf("voice toggle must not mark the note as a voice note")
	}
}
