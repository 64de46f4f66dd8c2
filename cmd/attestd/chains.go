package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-attestform/internal/bootstrap"
	"github.com/goliatone/go-attestform/pkg/chain"
)

type chainsDocument struct {
	Default int64         `yaml:"default"`
	Chains  []chain.Chain `yaml:"chains"`
}

func newChainsCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List the configured chains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := bootstrap.Chains(c.cfg)
			if err != nil {
				return err
			}
			def, _ := registry.Default()
			switch output {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(chainsDocument{Default: def.ID, Chains: registry.List()}); err != nil {
					return fmt.Errorf("encode chains: %w", err)
				}
				return enc.Close()
			case "table", "":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTESTNET\tRPC\tDEFAULT")
				for _, ch := range registry.List() {
					marker := ""
					if ch.ID == def.ID {
						marker = "*"
					}
					fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%s\n", ch.ID, ch.Name, ch.Testnet, ch.RPCURL, marker)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table or yaml)")
	return cmd
}
