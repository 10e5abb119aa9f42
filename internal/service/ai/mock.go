package ai

import "github.com/kapu/wellness-companion-go/internal/domain"

const (
	mockSummary = "Based on your journal entry, you seem to be feeling a mix of emotions. " +
		"Your thoughts reflect both positive and challenging aspects of your experience. " +
		"Remember that acknowledging these feelings is an important step in emotional well-being."
	mockExpression = "I understand you're sharing your feelings. It's important to acknowledge your emotions. " +
		"Based on what you've shared, it seems like you're experiencing a mix of emotions. " +
		"Remember that it's okay to feel this way, and taking time to reflect on your emotions is a healthy practice."
	mockChat = "I've processed your message and understand what you're expressing. " +
		"Your thoughts and feelings are valid, and I appreciate you sharing them. " +
		"Is there a specific aspect of this situation you'd like to explore further?"
	mockDefault = "Thank you for sharing. I'm here to support you through your emotional journey. " +
		"Remember that acknowledging your feelings is an important step toward emotional well-being."
)

var advisorResponses = map[domain.AdvisorPerspective]string{
	domain.AdvisorTherapist: "From a therapeutic perspective, it's important to acknowledge that your feelings are valid. " +
		"Your emotional response is a natural reaction to this situation. " +
		"Let's explore some coping strategies that might help you process these emotions in a healthy way.",
	domain.AdvisorFriend: "Hey, I hear you and I totally get what you're going through. " +
		"It's completely normal to feel this way, and I want you to know that I'm here for you.",
	domain.AdvisorParent: "I care about you deeply and it hurts to see you going through this. " +
		"Remember that challenges help us grow stronger, and I believe in your ability to handle this situation.",
	domain.AdvisorMentor: "Looking at this situation objectively, I can see several learning opportunities here. " +
		"Your emotional awareness is commendable, and we can use this experience to develop stronger emotional intelligence.",
}

// MockResponse returns the canned offline text for a request. Advice is
// keyed by advisor perspective, with the friend voice as the default.
func MockResponse(req domain.ResponseRequest) string {
	switch req.Type {
	case domain.ResponseSummary:
		return mockSummary
	case domain.ResponseExpression:
		return mockExpression
	case domain.ResponseAdvice:
		if text, ok := advisorResponses[req.Advisor]; ok {
			return text
		}
		return advisorResponses[domain.AdvisorFriend]
	default:
		return mockDefault
	}
}

// MockChatResponse is the offline reply to a free-form chat message.
func MockChatResponse() string {
	return mockChat
}
