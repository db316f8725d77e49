package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/analytics"
)

// NewComputeTiersCommand creates the compute-tiers command.
func NewComputeTiersCommand(opts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "compute-tiers",
		Short: "Recompute character activity counts and importance tiers",
		Long: `Compute-tiers counts appearances, distinct episodes, and distinct
co-participants for every character, then assigns each one an importance
tier (anchor, planet, asteroid) from the configured thresholds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			db, err := opts.openStore(cfg)
			if err != nil {
				return err
			}

			stats, err := analytics.ComputeTiers(cmd.Context(), db, cfg.Tiers, opts.Log, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Characters: %d\n", stats.Total)
			fmt.Fprintf(out, "  anchors:   %d\n", stats.Anchors)
			fmt.Fprintf(out, "  planets:   %d\n", stats.Planets)
			fmt.Fprintf(out, "  asteroids: %d\n", stats.Asteroids)
			fmt.Fprintf(out, "Promoted %d, demoted %d, unchanged %d\n",
				stats.Promoted, stats.Demoted, stats.Unchanged)
			if dryRun {
				fmt.Fprintln(out, "Dry run: nothing written")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report tiers without writing them")

	return cmd
}
