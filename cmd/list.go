package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newListCmd creates the 'list' subcommand, which prints the song pages
// discovered from the index pages, one per line.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists song pages linked from the index pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			pages, err := appInstance.DiscoverPages(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range pages {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return fmt.Errorf("write page list: %w", err)
				}
			}
			return nil
		},
	}
}
