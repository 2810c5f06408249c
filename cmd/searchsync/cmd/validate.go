package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without contacting any service",
		Long: `Load the configuration, apply defaults and validate the index
definition, the queries and their transformers. Nothing is sent over the
network. With --verbose the resolved configuration is printed with secrets
redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if _, err := cfg.Specs(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Verbose {
				data, err := yaml.Marshal(cfg.Redacted())
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				if _, err := out.Write(data); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(out, "Configuration OK: index %s, %d fields, %d queries, strategy %s, endpoint %s\n",
				cfg.IndexConfig.Name, len(cfg.IndexConfig.Fields), len(cfg.Queries), cfg.Strategy, cfg.Endpoint)
			return err
		},
	}
}
