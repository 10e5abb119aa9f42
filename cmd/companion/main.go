package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/app"
	"github.com/kapu/wellness-companion-go/internal/config"
	"github.com/kapu/wellness-companion-go/internal/constants"
	"github.com/kapu/wellness-companion-go/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "companion",
		Short:         "Wellness companion: emotion journaling with AI responses",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		serveCmd(),
		respondCmd(),
	)
	return root
}

// bootstrap loads configuration, the logger and the service graph shared by
// every subcommand.
func bootstrap() (*app.Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	buildCtx, buildCancel := context.WithTimeout(context.Background(), constants.HTTPConfig.BuildTimeout)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		container.Close()
		_ = logger.Sync()
	}
	return container, cleanup, nil
}
