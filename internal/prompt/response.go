package prompt

import (
	"fmt"
	"strings"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

// TemplateFor returns the template that answers the given response type.
// Logged entries have no template because they never reach the model.
func TemplateFor(t domain.ResponseType) (TemplateName, bool) {
	switch t {
	case domain.ResponseSummary:
		return TemplateSummary, true
	case domain.ResponseAdvice:
		return TemplateAdvice, true
	case domain.ResponseExpression:
		return TemplateExpression, true
	default:
		return "", false
	}
}

// NewResponsePromptData converts a request into template input.
func NewResponsePromptData(req domain.ResponseRequest) ResponsePromptData {
	return ResponsePromptData{
		Emotion:   strings.TrimSpace(req.Emotion),
		Intensity: DescribeIntensity(req.Intensity),
		Content:   strings.TrimSpace(req.Content),
		Recipient: strings.TrimSpace(req.Recipient),
		Scenario:  strings.TrimSpace(req.Scenario),
		Advisor:   req.Advisor.Label(),
		Addendum:  strings.TrimSpace(req.Addendum),
	}
}

// BuildResponsePrompt renders the prompt for req with pb, falling back to
// the inline prompt when the template cannot be rendered.
func (pb *PromptBuilder) BuildResponsePrompt(req domain.ResponseRequest) (Prompt, error) {
	name, ok := TemplateFor(req.Type)
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q has no prompt", domain.ErrUnknownResponseType, req.Type)
	}

	data := NewResponsePromptData(req)
	p, err := pb.Render(name, data)
	if err != nil {
		return FallbackResponsePrompt(req.Type, data), err
	}
	return p, nil
}

// LoggedAcknowledgement is shown for entries that are only recorded.
func LoggedAcknowledgement(req domain.ResponseRequest) string {
	return fmt.Sprintf("Thank you for sharing your feelings. Your %s feeling of %q has been logged.",
		DescribeIntensity(req.Intensity), strings.TrimSpace(req.Emotion))
}
