package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/internal/config"
	"github.com/goliatone/go-attestform/internal/logging"
)

type cli struct {
	configFile string
	out        io.Writer

	cfg    *config.Config
	logger *zap.Logger
}

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"addr":      "server.addr",
	"log-level": "log.level",
	"dev":       "log.development",
	"mode":      "attest.mode",
	"base-url":  "attest.base_url",
	"chains":    "chains.file",
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "attestd",
		Short:         "Serve the incident reporting and attestation web app",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd.Flags())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("dev", false, "development console logging")
	root.PersistentFlags().String("chains", "", "YAML chain descriptors merged over the defaults")

	root.AddCommand(newServeCmd(c), newChainsCmd(c), newServiceCmd(c))
	return root
}

// load resolves configuration with flag values taking precedence over the
// environment and the config file.
func (c *cli) load(flags *pflag.FlagSet) error {
	v, err := config.NewViper(c.configFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "attestd:", err)
		os.Exit(1)
	}
}
