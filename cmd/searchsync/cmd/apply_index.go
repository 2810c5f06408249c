package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/usecase/schema"
)

func newApplyIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-index",
		Short: "Create or update the index without uploading documents",
		Long: `Bring the remote index in line with the configured definition.

With the recreate strategy the index is deleted first (a failed delete is
only logged) and created again, which drops its documents. With upsert the
definition is applied in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.setup()
			if err != nil {
				return err
			}
			defer a.close()

			svc := schema.New(a.search, schema.Strategy(a.cfg.Strategy))
			if err := svc.Apply(a.context(cmd.Context()), a.cfg.IndexConfig); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Index %s applied (%s)\n", a.cfg.IndexConfig.Name, svc.Strategy())
			return err
		},
	}
}
