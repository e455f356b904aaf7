package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
)

// newPageCmd creates the 'page' subcommand, which extracts a single page and
// prints the record as JSON.
func newPageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "page <title>",
		Short: "Extracts one song page and prints its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := appInstance.Pipeline().Process(cmd.Context(), args[0])
			if err != nil {
				appInstance.Logger().Warn("Page extraction failed",
					zap.String("page", args[0]),
					zap.String("kind", scrapeerr.KindOf(err).String()),
					zap.Error(err),
				)
				return fmt.Errorf("%s: %w", scrapeerr.KindOf(err), err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			return nil
		},
	}
}
