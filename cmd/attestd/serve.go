package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-attestform/internal/bootstrap"
	"github.com/goliatone/go-attestform/internal/config"
	"github.com/goliatone/go-attestform/internal/server"
	"github.com/goliatone/go-attestform/pkg/session"
	"github.com/goliatone/go-attestform/pkg/views"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web app",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c.cfg, c.logger)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address")
	cmd.Flags().String("mode", "", "attestation service mode (memory or remote)")
	cmd.Flags().String("base-url", "", "attestation service base URL in remote mode")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	chains, err := bootstrap.Chains(cfg)
	if err != nil {
		return err
	}
	client, err := bootstrap.Client(cfg)
	if err != nil {
		return err
	}

	factory := server.SessionFactory(client, chains,
		workflow.WithSchemaName(cfg.Schema.Name),
		workflow.WithLogger(logger.Named("workflow")),
	)
	store, err := session.New(factory,
		session.WithCookieName(cfg.Session.CookieName),
		session.WithTTL(cfg.Session.TTL),
		session.WithSecureCookie(cfg.Session.Secure),
		session.WithLogger(logger.Named("session")),
	)
	if err != nil {
		return err
	}

	renderer, err := views.New(views.WithTheme(cfg.Theme.Name, cfg.Theme.Variant))
	if err != nil {
		return err
	}
	srv, err := server.New(store, chains,
		server.WithLogger(logger.Named("http")),
		server.WithViews(renderer),
		server.WithShutdownGrace(cfg.Server.ShutdownGrace),
	)
	if err != nil {
		return err
	}

	logger.Info("starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("service", cfg.Attest.Mode),
		zap.String("network_mode", cfg.Attest.NetworkMode),
		zap.Int64("chain_id", cfg.Attest.ChainID))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		return store.Run(gctx)
	})
	return g.Wait()
}
