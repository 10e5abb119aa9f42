package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			logger := container.Logger
			srv := container.NewHTTPServer()
			if addr != "" {
				srv.Addr = addr
			}

			logger.Info("Wellness companion starting...",
				zap.String("addr", srv.Addr),
				zap.String("backend", container.Responder.Backend()),
				zap.Bool("offline", container.Responder.Offline()),
			)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			container.StartWorkers(ctx)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			var runErr error
			select {
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
			case runErr = <-errCh:
				logger.Error("HTTP server error", zap.Error(runErr))
			}

			logger.Info("Shutting down gracefully...")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), container.Config.Server.ShutdownTimeout)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error during shutdown", zap.Error(err))
			}

			logger.Info("Shutdown complete")
			return runErr
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	return cmd
}
