package ai

import (
	"context"
	"strings"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/prompt"
)

const (
	SourceMock  = "mock"
	SourceLocal = "local"
)

// Responder turns one ResponseRequest into one ResponseResult. It never
// returns an error: every failure becomes renderable fallback text.
type Responder struct {
	provider Provider
	prompts  *prompt.PromptBuilder
	fallback FallbackMessages
	logger   *zap.Logger
}

type ResponderOption func(*Responder)

func WithFallbackMessages(m FallbackMessages) ResponderOption {
	return func(r *Responder) {
		r.fallback = m.withDefaults()
	}
}

func WithPromptBuilder(pb *prompt.PromptBuilder) ResponderOption {
	return func(r *Responder) {
		if pb != nil {
			r.prompts = pb
		}
	}
}

// NewResponder builds a responder around provider. A nil provider puts the
// responder in offline mode where no request is ever sent.
func NewResponder(provider Provider, logger *zap.Logger, opts ...ResponderOption) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Responder{
		provider: provider,
		prompts:  prompt.DefaultPromptBuilder(),
		fallback: DefaultFallbackMessages(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Responder) Offline() bool {
	return r.provider == nil
}

// Backend names the configured provider, or "mock" when offline.
func (r *Responder) Backend() string {
	if r.provider == nil {
		return SourceMock
	}
	return r.provider.Name()
}

func (r *Responder) Model() string {
	if r.provider == nil {
		return ""
	}
	return r.provider.Model()
}

func (r *Responder) Respond(ctx context.Context, req domain.ResponseRequest) domain.ResponseResult {
	if err := req.Validate(); err != nil {
		r.logger.Warn("Rejected response request", zap.Error(err))
		return domain.ResponseResult{
			Text:    r.fallback.Generic,
			Failure: domain.FailureInvalidRequest,
			Source:  SourceLocal,
		}
	}

	if !req.Type.NeedsGeneration() {
		return domain.ResponseResult{
			Text:   prompt.LoggedAcknowledgement(req),
			Source: SourceLocal,
		}
	}

	if r.provider == nil {
		r.logger.Debug("No credential configured, using mock response",
			zap.String("type", req.Type.String()),
		)
		return domain.ResponseResult{
			Text:    MockResponse(req),
			Failure: domain.FailureNoCredential,
			Source:  SourceMock,
		}
	}

	p, err := r.prompts.BuildResponsePrompt(req)
	if err != nil {
		r.logger.Warn("Prompt template failed, using inline prompt", zap.Error(err))
	}

	return r.complete(ctx, p, GetPresetConfig(PresetFor(req.Type)), req.Type.String())
}

// Chat sends one free-form exchange through the same single-call path as
// Respond. Like Respond it never returns an error.
func (r *Responder) Chat(ctx context.Context, req ChatRequest) domain.ResponseResult {
	if err := req.Validate(); err != nil {
		r.logger.Warn("Rejected chat request", zap.Error(err))
		return domain.ResponseResult{
			Text:    r.fallback.Generic,
			Failure: domain.FailureInvalidRequest,
			Source:  SourceLocal,
		}
	}

	if r.provider == nil {
		return domain.ResponseResult{
			Text:    MockChatResponse(),
			Failure: domain.FailureNoCredential,
			Source:  SourceMock,
		}
	}

	return r.complete(ctx, req.Prompt(), req.ModelConfig(), "chat")
}

// complete issues the call and turns any failure into fallback text.
func (r *Responder) complete(ctx context.Context, p prompt.Prompt, config ModelConfig, kind string) domain.ResponseResult {
	result, err := r.generate(ctx, p, config)
	if err != nil {
		class := ClassifyError(err)
		r.logger.Warn("Response generation failed",
			zap.String("provider", r.provider.Name()),
			zap.String("type", kind),
			zap.String("failure", string(class)),
			zap.Error(err),
		)
		return domain.ResponseResult{
			Text:    r.fallback.For(class),
			Failure: class,
			Source:  r.provider.Name(),
		}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return domain.ResponseResult{
			Text:    r.fallback.For(domain.FailureMalformedResponse),
			Failure: domain.FailureMalformedResponse,
			Source:  r.provider.Name(),
		}
	}

	r.logger.Info("Response generated",
		zap.String("provider", r.provider.Name()),
		zap.String("model", result.Model),
		zap.String("type", kind),
		zap.Int("length", len(text)),
	)

	return domain.ResponseResult{Text: text, Source: r.provider.Name()}
}

// generate issues the single provider call. A panic inside the provider is
// reported as an ordinary error.
func (r *Responder) generate(ctx context.Context, p prompt.Prompt, config ModelConfig) (ProviderResult, error) {
	var (
		result ProviderResult
		err    error
		pc     panics.Catcher
	)
	pc.Try(func() {
		result, err = r.provider.Generate(ctx, p, config)
	})
	if recovered := pc.Recovered(); recovered != nil {
		return ProviderResult{}, recovered.AsError()
	}
	return result, err
}
