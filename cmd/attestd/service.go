package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/pkg/attest/memory"
)

func newServiceCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run an in-memory attestation service speaking the remote protocol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.cfg.ServiceConfig()
			if err != nil {
				return err
			}
			logger := c.logger.Named("service")
			handler := memory.NewHandler(memory.New(svc),
				memory.WithSigningKey(c.cfg.Attest.SigningKey),
				memory.WithLogger(logger),
			)
			return listen(cmd.Context(), addr, handler, c.cfg.Server.ShutdownGrace, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "listen", ":8090", "HTTP listen address")
	return cmd
}

func listen(ctx context.Context, addr string, handler http.Handler, grace time.Duration, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
