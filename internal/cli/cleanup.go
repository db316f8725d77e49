package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/importer"
	"github.com/fabulaworks/chronicle/internal/snapshot"
)

// NewCleanupCommand creates the cleanup-deprecated command.
func NewCleanupCommand(opts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup-deprecated <snapshot-dir>",
		Short: "Delete rows no longer present in the canonical snapshot",
		Long: `Cleanup-deprecated compares the store against a snapshot and deletes every
row whose fabula_uuid the snapshot no longer contains. Dependent rows go
first so nothing ends up referencing a deleted parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			snap, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			db, err := opts.openStore(cfg)
			if err != nil {
				return err
			}

			cleaner := &importer.Cleaner{DB: db, Log: opts.Log, DryRun: dryRun}
			deleted, err := cleaner.RemoveDeprecated(cmd.Context(), snap)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d deprecated rows would be removed\n", deleted)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d deprecated rows\n", deleted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report deprecated rows without deleting")

	return cmd
}
