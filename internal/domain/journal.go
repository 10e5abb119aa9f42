package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
)

var ErrIntensityRange = errors.New("intensity must be between 1 and 10")

// Intensity is the strength of the selected emotion on a 1..10 scale.
type Intensity int

func NewIntensity(v int) (Intensity, error) {
	i := Intensity(v)
	if err := i.Validate(); err != nil {
		return 0, err
	}
	return i, nil
}

func (i Intensity) Validate() error {
	if i < MinIntensity || i > MaxIntensity {
		return fmt.Errorf("%w: got %d", ErrIntensityRange, int(i))
	}
	return nil
}

type AdvisorPerspective string

const (
	AdvisorTherapist AdvisorPerspective = "therapist"
	AdvisorFriend    AdvisorPerspective = "friend"
	AdvisorParent    AdvisorPerspective = "parent"
	AdvisorMentor    AdvisorPerspective = "mentor"
)

func (a AdvisorPerspective) IsValid() bool {
	switch a {
	case AdvisorTherapist, AdvisorFriend, AdvisorParent, AdvisorMentor:
		return true
	default:
		return false
	}
}

func (a AdvisorPerspective) Label() string {
	switch a {
	case AdvisorTherapist:
		return "therapist"
	case AdvisorFriend:
		return "close friend"
	case AdvisorParent:
		return "parent"
	case AdvisorMentor:
		return "mentor"
	default:
		return ""
	}
}

type Recipient string

const (
	RecipientSelf    Recipient = "self"
	RecipientFriend  Recipient = "friend"
	RecipientPartner Recipient = "partner"
	RecipientFamily  Recipient = "family"
)

func (r Recipient) IsValid() bool {
	switch r {
	case RecipientSelf, RecipientFriend, RecipientPartner, RecipientFamily:
		return true
	default:
		return false
	}
}

func (r Recipient) Label() string {
	switch r {
	case RecipientSelf:
		return "myself"
	case RecipientFriend:
		return "a friend"
	case RecipientPartner:
		return "my partner"
	case RecipientFamily:
		return "a family member"
	default:
		return ""
	}
}

// JournalEntry is the snapshot assembled at the analysis step. It is passed
// by value between steps and never modified after construction.
type JournalEntry struct {
	ID                 string             `json:"id"`
	Timestamp          time.Time          `json:"timestamp"`
	Emotion            Emotion            `json:"emotion"`
	Intensity          Intensity          `json:"intensity"`
	Content            string             `json:"content"`
	IsVoiceNote        bool               `json:"is_voice_note"`
	AISummary          string             `json:"ai_summary,omitempty"`
	AdvisorPerspective AdvisorPerspective `json:"advisor_perspective,omitempty"`
	Recipient          Recipient          `json:"recipient,omitempty"`
	IsLogged           bool               `json:"is_logged"`
}

// JournalDraft collects the inputs for NewJournalEntry.
type JournalDraft struct {
	Emotion            Emotion
	Intensity          Intensity
	Content            string
	IsVoiceNote        bool
	AISummary          string
	AdvisorPerspective AdvisorPerspective
	Recipient          Recipient
	IsLogged           bool
}

// NewJournalEntry validates the draft and stamps it with an id and time.
func NewJournalEntry(d JournalDraft, now time.Time) (JournalEntry, error) {
	if d.Emotion.IsZero() {
		return JournalEntry{}, fmt.Errorf("journal entry: emotion is required")
	}
	if err := d.Intensity.Validate(); err != nil {
		return JournalEntry{}, fmt.Errorf("journal entry: %w", err)
	}
	if d.Content == "" {
		return JournalEntry{}, fmt.Errorf("journal entry: %w", ErrEmptyContent)
	}
	if d.AdvisorPerspective != "" && !d.AdvisorPerspective.IsValid() {
		return JournalEntry{}, fmt.Errorf("journal entry: unknown advisor perspective %q", d.AdvisorPerspective)
	}
	if d.Recipient != "" && !d.Recipient.IsValid() {
		return JournalEntry{}, fmt.Errorf("journal entry: unknown recipient %q", d.Recipient)
	}

	return JournalEntry{
		ID:                 uuid.NewString(),
		Timestamp:          now,
		Emotion:            d.Emotion,
		Intensity:          d.Intensity,
		Content:            d.Content,
		IsVoiceNote:        d.IsVoiceNote,
		AISummary:          d.AISummary,
		AdvisorPerspective: d.AdvisorPerspective,
		Recipient:          d.Recipient,
		IsLogged:           d.IsLogged,
	}, nil
}
