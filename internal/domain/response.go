package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyContent        = errors.New("content must not be empty")
	ErrUnknownResponseType = errors.New("unknown response type")
)

type ResponseType string

const (
	ResponseSummary    ResponseType = "summary"
	ResponseAdvice     ResponseType = "advice"
	ResponseExpression ResponseType = "expression"
	ResponseLogged     ResponseType = "logged"
)

func (t ResponseType) String() string {
	return string(t)
}

func (t ResponseType) IsValid() bool {
	switch t {
	case ResponseSummary, ResponseAdvice, ResponseExpression, ResponseLogged:
		return true
	default:
		return false
	}
}

// NeedsGeneration reports whether the type is answered by the text
// generation service. Logged entries are acknowledged locally.
func (t ResponseType) NeedsGeneration() bool {
	return t == ResponseSummary || t == ResponseAdvice || t == ResponseExpression
}

// ParseResponseType maps user input onto a response type. Empty input and
// unknown values fall back to ResponseLogged.
func ParseResponseType(s string) ResponseType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "summary", "summarize":
		return ResponseSummary
	case "advice":
		return ResponseAdvice
	case "expression", "express":
		return ResponseExpression
	default:
		return ResponseLogged
	}
}

// ResponseRequest holds everything needed to build one prompt.
type ResponseRequest struct {
	Emotion   string             `json:"emotion"`
	Intensity Intensity          `json:"intensity"`
	Content   string             `json:"content"`
	Type      ResponseType       `json:"type"`
	Recipient string             `json:"recipient,omitempty"`
	Scenario  string             `json:"scenario,omitempty"`
	Advisor   AdvisorPerspective `json:"advisor,omitempty"`
	Addendum  string             `json:"addendum,omitempty"`
}

func (r ResponseRequest) Validate() error {
	if strings.TrimSpace(r.Emotion) == "" {
		return fmt.Errorf("response request: emotion is required")
	}
	if err := r.Intensity.Validate(); err != nil {
		return fmt.Errorf("response request: %w", err)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("response request: %w", ErrEmptyContent)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("response request: %w: %q", ErrUnknownResponseType, r.Type)
	}
	if r.Advisor != "" && !r.Advisor.IsValid() {
		return fmt.Errorf("response request: unknown advisor perspective %q", r.Advisor)
	}
	return nil
}

// RequestFromEntry derives a request from a journal snapshot.
func RequestFromEntry(entry JournalEntry, t ResponseType) ResponseRequest {
	return ResponseRequest{
		Emotion:   entry.Emotion.Name,
		Intensity: entry.Intensity,
		Content:   entry.Content,
		Type:      t,
		Recipient: entry.Recipient.Label(),
		Advisor:   entry.AdvisorPerspective,
	}
}

// FailureClass describes why a generation produced fallback text.
type FailureClass string

const (
	FailureNone              FailureClass = ""
	FailureNetwork           FailureClass = "network"
	FailureAuth              FailureClass = "auth"
	FailureRateLimited       FailureClass = "rate_limited"
	FailureMalformedResponse FailureClass = "malformed_response"
	FailureNoCredential      FailureClass = "no_credential"
	FailureInvalidRequest    FailureClass = "invalid_request"
)

// ResponseResult is always renderable: Text is never empty.
type ResponseResult struct {
	Text    string       `json:"text"`
	Failure FailureClass `json:"failure,omitempty"`
	Source  string       `json:"source"`
}

func (r ResponseResult) Failed() bool {
	return r.Failure != FailureNone && r.Failure != FailureNoCredential
}
