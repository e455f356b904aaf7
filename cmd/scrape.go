package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newScrapeCmd creates the 'scrape' subcommand. Without arguments the pages
// are discovered from the index pages.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [title...]",
		Short: "Extracts song pages in batch and exports the tables",
		Long: `Fetches every page concurrently through the shared rate gate, extracts
the records, optionally publishes them to Pub/Sub and writes occurrences.csv,
lyrics.csv and pages.csv under <output.prefix>/<run_id>/.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := appInstance.Logger()

	opsDone := make(chan error, 1)
	if addr := appInstance.Config().Metrics.Addr; addr != "" {
		go func() { opsDone <- appInstance.Ops().ListenAndServe(ctx, addr) }()
	} else {
		close(opsDone)
	}

	pages := args
	if len(pages) == 0 {
		pages, err = appInstance.DiscoverPages(ctx)
		if err != nil {
			return err
		}
	}
	appInstance.Ops().SetReady(true)

	report, err := appInstance.Scrape(ctx, pages)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scrape: %w", err)
	}

	cancel()
	if opsErr := <-opsDone; opsErr != nil {
		logger.Warn("Ops server stopped with error", zap.Error(opsErr))
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d records, %d failures\n",
		report.Result.RunID, len(report.Result.Records), len(report.Result.Failures))
	return err
}
