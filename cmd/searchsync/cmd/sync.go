package cmd

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/transport/graphql"
	"github.com/kailas-cloud/searchsync/internal/usecase/build"
	"github.com/kailas-cloud/searchsync/internal/usecase/publish"
	querysvc "github.com/kailas-cloud/searchsync/internal/usecase/query"
	"github.com/kailas-cloud/searchsync/internal/usecase/schema"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Apply the index and upload the documents of every query",
		Long: `Apply the configured index definition, run every configured query
against the content graph and upload the resulting documents.

Queries run concurrently. Every query runs to completion; the command fails
if any of them failed. Documents uploaded by the other queries stay in the
index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.setup()
			if err != nil {
				return err
			}
			defer a.close()

			specs, err := a.cfg.Specs()
			if err != nil {
				return err
			}

			graph, err := graphql.NewClient(&graphql.Config{
				Endpoint:   a.cfg.Graph.Endpoint,
				Headers:    a.cfg.Graph.Headers,
				HTTPClient: &http.Client{Timeout: a.cfg.GraphTimeout()},
				Logger:     a.logger,
			})
			if err != nil {
				return fmt.Errorf("create graph client: %w", err)
			}

			orchestrator := build.New(
				schema.New(a.search, schema.Strategy(a.cfg.Strategy)),
				querysvc.New(graph),
				publish.New(a.search).WithVerbose(a.cfg.Verbose),
			)
			report, err := orchestrator.Run(a.context(cmd.Context()), a.cfg.IndexConfig, specs)
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func printReport(out io.Writer, report build.Report) {
	_, _ = fmt.Fprintf(out, "Index %s: %s (run %s, %s)\n",
		report.Index, report.State, report.RunID, report.Duration.Round(time.Millisecond))
	if len(report.Queries) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUERY\tDOCUMENTS\tDURATION\tERROR")
	for _, q := range report.Queries {
		errText := "-"
		if q.Err != nil {
			errText = q.Err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", q.Name, q.Documents, q.Duration.Round(time.Millisecond), errText)
	}
	_ = w.Flush()
}
