package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/importer"
)

// NewDeduplicateCommand creates the cleanup-duplicates command.
func NewDeduplicateCommand(opts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "cleanup-duplicates",
		Aliases: []string{"cleanup-duplicate-edges"},
		Short:   "Merge entities sharing a canonical name and drop duplicate edges",
		Long: `Cleanup-duplicates merges characters, organizations, objects, and
locations that ended up as multiple rows under the same canonical name,
keeping the oldest row and re-pointing edges at it. Edge rows sharing a
natural key are then reduced to one.`,
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

			d := &importer.Deduplicator{DB: db, Log: opts.Log, DryRun: dryRun}
			merged, deleted, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Merged %d entities, deleted %d duplicate edges\n", merged, deleted)
			if dryRun {
				fmt.Fprintln(out, "Dry run: nothing written")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report merges without writing")

	return cmd
}
