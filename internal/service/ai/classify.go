package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"github.com/kapu/wellness-companion-go/internal/domain"
	apperrors "github.com/kapu/wellness-companion-go/pkg/errors"
)

var (
	geminiCodeRegex = regexp.MustCompile(`"code":\s*(\d{3})`)
	statusCodeRegex = regexp.MustCompile(`^(\d{3})\s`)
)

// ClassifyError maps a provider error onto the failure taxonomy shown to the
// user. Unknown errors count as network failures.
func ClassifyError(err error) domain.FailureClass {
	if err == nil {
		return domain.FailureNone
	}

	if errors.Is(err, ErrMalformedResponse) {
		return domain.FailureMalformedResponse
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return domain.FailureMalformedResponse
	}

	var upstream *apperrors.APIError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return classifyStatus(upstream.StatusCode)
	}
	if code := statusCode(err); code != 0 {
		return classifyStatus(code)
	}

	msg := err.Error()
	if isRateLimitMessage(msg) {
		return domain.FailureRateLimited
	}
	if isAuthMessage(msg) {
		return domain.FailureAuth
	}

	return domain.FailureNetwork
}

// upstreamError records the HTTP status of a failed provider call alongside
// the SDK error, which stays reachable through Unwrap.
func upstreamError(provider string, err error) error {
	apiErr := apperrors.NewAPIError(provider+" request failed", statusCode(err), map[string]any{
		"provider": provider,
	})
	apiErr.WithCause(err)
	return apiErr
}

func classifyStatus(code int) domain.FailureClass {
	switch {
	case code == http.StatusTooManyRequests:
		return domain.FailureRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.FailureAuth
	default:
		return domain.FailureNetwork
	}
}

// statusCode pulls the HTTP status out of either SDK's error type, falling
// back to the code embedded in the message text.
func statusCode(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}

	msg := err.Error()
	if matches := geminiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code
		}
	}
	if matches := statusCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code
		}
	}

	return 0
}

func isRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "quota")
}

func isAuthMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(msg, "UNAUTHENTICATED") ||
		strings.Contains(msg, "PERMISSION_DENIED") ||
		strings.Contains(lower, "api key not valid") ||
		strings.Contains(lower, "invalid api key")
}
