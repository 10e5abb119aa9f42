package wizard

import (
	"encoding/json"
	"fmt"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

// MissingParamError is returned when a step is mounted without a parameter
// it requires, or with a value of the wrong type.
type MissingParamError struct {
	Step   Step
	Key    ParamKey
	Reason string
}

func (e *MissingParamError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing"
	}
	return fmt.Sprintf("wizard: step %s: navigation parameter %q is %s", e.Step, e.Key, reason)
}

// Params is the navigation parameter bag. It is never modified in place:
// With returns a copy, so a bag handed to the next step stays as it was.
type Params struct {
	step   Step
	values map[ParamKey]any
}

func NewParams() Params {
	return Params{values: map[ParamKey]any{}}
}

// With returns a copy of p with key set to value.
func (p Params) With(key ParamKey, value any) Params {
	clone := p.clone()
	clone.values[key] = value
	return clone
}

// Without returns a copy of p without key.
func (p Params) Without(key ParamKey) Params {
	clone := p.clone()
	delete(clone.values, key)
	return clone
}

func (p Params) Has(key ParamKey) bool {
	_, ok := p.values[key]
	return ok
}

func (p Params) Len() int {
	return len(p.values)
}

func (p Params) clone() Params {
	values := make(map[ParamKey]any, len(p.values)+1)
	for k, v := range p.values {
		values[k] = v
	}
	return Params{step: p.step, values: values}
}

func (p Params) forStep(step Step) Params {
	clone := p.clone()
	clone.step = step
	return clone
}

func (p Params) missing(key ParamKey, reason string) error {
	return &MissingParamError{Step: p.step, Key: key, Reason: reason}
}

func lookup[T any](p Params, key ParamKey) (T, error) {
	var zero T
	raw, ok := p.values[key]
	if !ok {
		return zero, p.missing(key, "missing")
	}
	v, ok := raw.(T)
	if !ok {
		return zero, p.missing(key, fmt.Sprintf("of type %T", raw))
	}
	return v, nil
}

func (p Params) Emotion() (domain.Emotion, error) {
	e, err := lookup[domain.Emotion](p, KeyEmotion)
	if err != nil {
		return domain.Emotion{}, err
	}
	if e.IsZero() {
		return domain.Emotion{}, p.missing(KeyEmotion, "empty")
	}
	return e, nil
}

func (p Params) Intensity() (domain.Intensity, error) {
	i, err := lookup[domain.Intensity](p, KeyIntensity)
	if err != nil {
		return 0, err
	}
	if err := i.Validate(); err != nil {
		return 0, p.missing(KeyIntensity, "out of range")
	}
	return i, nil
}

func (p Params) Content() (string, error) {
	s, err := lookup[string](p, KeyContent)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", p.missing(KeyContent, "empty")
	}
	return s, nil
}

func (p Params) Entry() (domain.JournalEntry, error) {
	return lookup[domain.JournalEntry](p, KeyJournalEntry)
}

func (p Params) ResponseType() (domain.ResponseType, error) {
	t, err := lookup[domain.ResponseType](p, KeyResponseType)
	if err != nil {
		return "", err
	}
	if !t.IsValid() {
		return "", p.missing(KeyResponseType, "not a known response type")
	}
	return t, nil
}

// IsVoiceNote is optional and defaults to false.
func (p Params) IsVoiceNote() bool {
	v, _ := p.values[KeyIsVoiceNote].(bool)
	return v
}

// OptionalString returns an optional string parameter, empty when absent.
func (p Params) OptionalString(key ParamKey) string {
	v, _ := p.values[key].(string)
	return v
}

// Response returns the optional generated response handed to Gratitude.
func (p Params) Response() (domain.ResponseResult, bool) {
	v, ok := p.values[KeyResponse].(domain.ResponseResult)
	return v, ok
}

// check verifies one required key through its typed getter.
func (p Params) check(key ParamKey) error {
	var err error
	switch key {
	case KeyEmotion:
		_, err = p.Emotion()
	case KeyIntensity:
		_, err = p.Intensity()
	case KeyContent:
		_, err = p.Content()
	case KeyJournalEntry:
		_, err = p.Entry()
	case KeyResponseType:
		_, err = p.ResponseType()
	default:
		if !p.Has(key) {
			err = p.missing(key, "missing")
		}
	}
	return err
}

// MarshalJSON exposes the bag for session snapshots.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[string(k)] = v
	}
	return json.Marshal(out)
}
