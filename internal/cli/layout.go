package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/analytics"
)

// NewComputeLayoutCommand creates the compute-layout command.
func NewComputeLayoutCommand(opts *RootOptions) *cobra.Command {
	var (
		scale             float64
		iterations        int
		detectCommunities bool
		dryRun            bool
	)

	cmd := &cobra.Command{
		Use:   "compute-layout",
		Short: "Compute 3D graph positions for every character",
		Long: `Compute-layout builds the character co-occurrence graph, runs a seeded
force-directed layout in three dimensions, and stores the resulting
coordinates on each character. The layout is deterministic for a given
graph and seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("scale") {
				cfg.Layout.Scale = scale
			}
			if cmd.Flags().Changed("iterations") {
				cfg.Layout.Iterations = iterations
			}

			db, err := opts.openStore(cfg)
			if err != nil {
				return err
			}

			stats, err := analytics.ComputeLayout(cmd.Context(), db, cfg.Layout, opts.Log, detectCommunities, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Graph: %d nodes, %d edges\n", stats.Nodes, stats.Edges)
			if detectCommunities {
				fmt.Fprintf(out, "Communities: %d\n", stats.Communities)
			}
			fmt.Fprintf(out, "Updated %d characters\n", stats.Updated)
			if dryRun {
				fmt.Fprintln(out, "Dry run: nothing written")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&scale, "scale", 50, "coordinate range, positions land in [-scale, scale]")
	cmd.Flags().IntVar(&iterations, "iterations", 100, "layout iterations")
	cmd.Flags().BoolVar(&detectCommunities, "detect-communities", false, "also assign community ids")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute without writing")

	return cmd
}
