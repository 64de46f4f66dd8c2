package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-attestform/internal/bootstrap"
	"github.com/goliatone/go-attestform/internal/config"
	"github.com/goliatone/go-attestform/internal/logging"
	"github.com/goliatone/go-attestform/pkg/prompt"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

func newRootCmd(out io.Writer, driver prompt.Driver) *cobra.Command {
	var (
		configFile string
		mode       string
		baseURL    string
		logLevel   string
	)
	cmd := &cobra.Command{
		Use:           "attest-cli",
		Short:         "Build schemas and create attestations interactively",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(configFile)
			if err != nil {
				return err
			}
			if mode != "" {
				v.Set("attest.mode", mode)
			}
			if baseURL != "" {
				v.Set("attest.base_url", baseURL)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := logging.New(logLevel, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := bootstrap.Client(cfg)
			if err != nil {
				return err
			}
			wf := workflow.New(client,
				workflow.WithSchemaName(cfg.Schema.Name),
				workflow.WithLogger(logger),
			)

			d := driver
			if d == nil {
				d = prompt.NewSurveyDriver(out)
			}
			runner, err := prompt.NewRunner(d, wf)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema name: %s (%s service, %s, chain %d)\n",
				wf.SchemaName(), cfg.Attest.Mode, cfg.Attest.NetworkMode, cfg.Attest.ChainID)

			err = runner.Run(cmd.Context())
			if errors.Is(err, prompt.ErrAborted) {
				return nil
			}
			return err
		},
	}
	cmd.SetOut(out)
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&mode, "mode", "", "attestation service mode (memory or remote)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "attestation service base URL in remote mode")
	cmd.Flags().StringVar(&logLevel, "log-level", "error", "log level")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "attest-cli:", err)
		os.Exit(1)
	}
}
