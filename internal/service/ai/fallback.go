package ai

import "github.com/kapu/wellness-companion-go/internal/domain"

// FallbackMessages are the sentences shown instead of generated text.
// Empty fields use the defaults.
type FallbackMessages struct {
	RateLimited string `yaml:"rate_limited"`
	Auth        string `yaml:"auth"`
	Malformed   string `yaml:"malformed"`
	Generic     string `yaml:"generic"`
}

func DefaultFallbackMessages() FallbackMessages {
	return FallbackMessages{
		RateLimited: "Rate limit exceeded. Please try again later or check your API quota.",
		Auth:        "Authentication error. Please check your API key.",
		Malformed:   "Sorry, I received a response I could not understand. Please try again.",
		Generic:     "Sorry, I encountered an error processing your request.",
	}
}

func (m FallbackMessages) withDefaults() FallbackMessages {
	d := DefaultFallbackMessages()
	if m.RateLimited == "" {
		m.RateLimited = d.RateLimited
	}
	if m.Auth == "" {
		m.Auth = d.Auth
	}
	if m.Malformed == "" {
		m.Malformed = d.Malformed
	}
	if m.Generic == "" {
		m.Generic = d.Generic
	}
	return m
}

// For returns the message for a failure class.
func (m FallbackMessages) For(class domain.FailureClass) string {
	m = m.withDefaults()
	switch class {
	case domain.FailureRateLimited:
		return m.RateLimited
	case domain.FailureAuth:
		return m.Auth
	case domain.FailureMalformedResponse:
		return m.Malformed
	default:
		return m.Generic
	}
}
