package prompt

// ResponsePromptData is the interpolation input shared by every response
// template. Intensity carries the descriptive phrase, never the score.
type ResponsePromptData struct {
	Emotion   string
	Intensity string
	Content   string
	Recipient string
	Scenario  string
	Advisor   string
	Addendum  string
}
