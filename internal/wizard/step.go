package wizard

// Step identifies one screen of the journaling flow.
type Step string

const (
	StepEmotionSelection Step = "emotion_selection"
	StepRecordingMethod  Step = "recording_method"
	StepAnalysis         Step = "analysis"
	StepAIResponse       Step = "ai_response"
	StepGratitude        Step = "gratitude"
	StepProfile          Step = "profile"
)

func (s Step) String() string {
	return string(s)
}

// ParamKey names one entry of the navigation parameter bag.
type ParamKey string

const (
	KeyEmotion      ParamKey = "emotion"
	KeyIntensity    ParamKey = "intensity"
	KeyContent      ParamKey = "content"
	KeyIsVoiceNote  ParamKey = "is_voice_note"
	KeyJournalEntry ParamKey = "journal_entry"
	KeyResponseType ParamKey = "response_type"
	KeyScenario     ParamKey = "scenario"
	KeyAddendum     ParamKey = "addendum"
	KeyResponse     ParamKey = "response"
)

// StepConfig describes what a step needs on mount and where it may go next.
type StepConfig struct {
	Step     Step
	Title    string
	Required []ParamKey
	Optional []ParamKey
	Next     []Step
}

// Allows reports whether next is a permitted successor.
func (c StepConfig) Allows(next Step) bool {
	for _, s := range c.Next {
		if s == next {
			return true
		}
	}
	return false
}

// Steps is the whole flow, in order.
var Steps = []StepConfig{
	{
		Step:  StepEmotionSelection,
		Title: "How are you feeling?",
		Next:  []Step{StepRecordingMethod},
	},
	{
		Step:     StepRecordingMethod,
		Title:    "Tell me more",
		Required: []ParamKey{KeyEmotion, KeyIntensity},
		Next:     []Step{StepAnalysis},
	},
	{
		Step:     StepAnalysis,
		Title:    "AI Analysis",
		Required: []ParamKey{KeyEmotion, KeyIntensity, KeyContent},
		Optional: []ParamKey{KeyIsVoiceNote},
		Next:     []Step{StepAIResponse},
	},
	{
		Step:     StepAIResponse,
		Title:    "Your response",
		Required: []ParamKey{KeyJournalEntry, KeyResponseType},
		Optional: []ParamKey{KeyScenario, KeyAddendum},
		Next:     []Step{StepGratitude},
	},
	{
		Step:     StepGratitude,
		Title:    "Thank you for sharing",
		Required: []ParamKey{KeyJournalEntry},
		Optional: []ParamKey{KeyResponse},
		Next:     []Step{StepProfile, StepEmotionSelection},
	},
	{
		Step:  StepProfile,
		Title: "Your Emotional Journey",
		Next:  []Step{StepEmotionSelection},
	},
}

// ConfigFor returns the configuration of step.
func ConfigFor(step Step) (StepConfig, bool) {
	for _, c := range Steps {
		if c.Step == step {
			return c, true
		}
	}
	return StepConfig{}, false
}
