package prompt

import (
	"fmt"
	"strings"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

// CompanionSystemPrompt is the instruction every exchange starts from.
const CompanionSystemPrompt = "You are a supportive emotional companion that offers empathy and understanding."

// FallbackResponsePrompt builds the prompt without the embedded templates.
func FallbackResponsePrompt(t domain.ResponseType, data ResponsePromptData) Prompt {
	system := CompanionSystemPrompt
	if data.Advisor != "" {
		system += fmt.Sprintf(" Speak from the perspective of a %s.", data.Advisor)
	}

	builder := &strings.Builder{}
	if t == domain.ResponseExpression {
		builder.WriteString("The user is a young adult with language impairments and needs you to write a few sentences that express their feelings for them.\n")
	}
	builder.WriteString(fmt.Sprintf("The user is feeling %q and the feeling is %s.\n", data.Emotion, data.Intensity))
	builder.WriteString(fmt.Sprintf("Their thoughts: %q\n", data.Content))
	if data.Recipient != "" {
		builder.WriteString(fmt.Sprintf("They want to communicate with %q.\n", data.Recipient))
	}
	if data.Scenario != "" {
		builder.WriteString(fmt.Sprintf("The situation: %s\n", data.Scenario))
	}
	if data.Addendum != "" {
		builder.WriteString(fmt.Sprintf("Additional information: %s\n", data.Addendum))
	}
	builder.WriteString("\n")

	switch t {
	case domain.ResponseAdvice:
		builder.WriteString("Please offer practical suggestions or advice to help them cope, in a supportive and empathetic tone.")
	case domain.ResponseExpression:
		builder.WriteString(`Write a considerate and clear message for the user directly. Start the message with "I" and write in a natural tone.`)
	default:
		builder.WriteString("Please summarize the user's feeling in a supportive, authentic, and concise manner.")
	}
	builder.WriteString(" Describe how strong the feeling is with words only, never with numbers or scores.")

	return Prompt{System: system, User: builder.String()}
}
