package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/command"
	"github.com/kapu/wellness-companion-go/internal/config"
	"github.com/kapu/wellness-companion-go/internal/constants"
	"github.com/kapu/wellness-companion-go/internal/server"
	"github.com/kapu/wellness-companion-go/internal/service/ai"
	"github.com/kapu/wellness-companion-go/internal/session"
	apperrors "github.com/kapu/wellness-companion-go/pkg/errors"
)

// Container bundles the assembled services for the HTTP service and the CLI.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Responder *ai.Responder
	Sessions  *session.Store
	Commands  *command.Registry

	handler   http.Handler
	workers   conc.WaitGroup
	closers   []func()
	closeOnce sync.Once
}

// Build assembles the response client, the session store and the command
// registry. A missing credential leaves the responder offline.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	httpClient := &http.Client{}
	closers = append(closers, httpClient.CloseIdleConnections)

	var provider ai.Provider
	if cfg.HasCredential() {
		provider, err = ai.NewProvider(ctx, ai.BackendConfig{
			Backend: cfg.AI.Backend,
			Gemini: ai.GeminiConfig{
				APIKey:     cfg.Gemini.APIKey,
				Model:      cfg.Gemini.Model,
				BaseURL:    cfg.Gemini.BaseURL,
				HTTPClient: httpClient,
			},
			OpenAI: ai.OpenAIConfig{
				APIKey:     cfg.OpenAI.APIKey,
				Model:      cfg.OpenAI.Model,
				BaseURL:    cfg.OpenAI.BaseURL,
				HTTPClient: httpClient,
			},
		}, logger)
		if err != nil {
			return nil, apperrors.NewServiceError("failed to create AI provider", "ai", "build", err)
		}
	} else {
		logger.Info("AI backend offline, canned responses will be used",
			zap.String("backend", cfg.AI.Backend),
			zap.Bool("forced", cfg.AI.Offline),
		)
	}

	responder := ai.NewResponder(provider, logger, ai.WithFallbackMessages(cfg.Fallback))

	sessions := session.NewStore(cfg.Session.TTL, logger)
	closers = append(closers, sessions.Close)

	commands := command.NewStepRegistry(&command.Dependencies{
		Generator: responder,
		Logger:    logger,
	})
	logger.Info("Step commands registered", zap.Int("count", commands.Count()))

	container = &Container{
		Config:    cfg,
		Logger:    logger,
		Responder: responder,
		Sessions:  sessions,
		Commands:  commands,
		closers:   closers,
	}
	container.handler = server.NewServer(server.Dependencies{
		Responder: responder,
		Sessions:  sessions,
		Commands:  commands,
		Logger:    logger,
	})
	return container, nil
}

// Handler returns the HTTP handler of the companion service.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// NewHTTPServer wraps the handler in a server bound to the configured address.
func (c *Container) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              c.Config.Server.Addr,
		Handler:           c.handler,
		ReadHeaderTimeout: constants.HTTPConfig.ReadHeaderTimeout,
	}
}

// StartWorkers runs the session sweeper until ctx is done.
func (c *Container) StartWorkers(ctx context.Context) {
	c.workers.Go(func() {
		c.Sessions.Run(ctx, c.Config.Session.SweepInterval)
	})
}

// Close waits for the workers and releases everything Build created. The
// context passed to StartWorkers must be cancelled first.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		c.workers.Wait()
		for i := len(c.closers) - 1; i >= 0; i-- {
			c.closers[i]()
		}
	})
}
