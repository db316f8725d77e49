package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/importer"
	"github.com/fabulaworks/chronicle/internal/snapshot"
)

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	var (
		dryRun         bool
		cleanup        bool
		sourceDatabase string
		primarySeries  string
	)

	cmd := &cobra.Command{
		Use:   "import <snapshot-dir>",
		Short: "Import a narrative snapshot into the content store",
		Long: `Import loads a season export directory and upserts its contents in
dependency order. Re-running the same snapshot updates rows in place;
entities already known under a cross-season global_id are merged instead
of duplicated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if sourceDatabase == "" {
				sourceDatabase = cfg.Import.SourceDatabase
			}
			if primarySeries == "" {
				primarySeries = cfg.Import.PrimarySeries
			}

			snap, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			for category, dropped := range snap.DuplicatesDropped {
				opts.Log.WithField("dropped", dropped).Warnf("duplicate %s records in snapshot", category)
			}

			db, err := opts.openStore(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			resolver := opts.connectRegistry(ctx, cfg)
			if resolver != nil {
				defer resolver.Close(ctx)
			}

			im := importer.New(db, resolver, opts.Log)
			im.SourceDatabase = sourceDatabase
			im.PrimarySeries = primarySeries
			im.DryRun = dryRun

			stats, err := im.Run(ctx, snap)
			if stats != nil {
				fmt.Fprint(cmd.OutOrStdout(), stats.Summary())
			}
			if err != nil {
				return err
			}

			if cleanup && !dryRun {
				cleaner := &importer.Cleaner{DB: db, Log: opts.Log}
				deleted, err := cleaner.RemoveDeprecated(ctx, snap)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nRemoved %d deprecated rows\n", deleted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run every phase, then roll back")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "remove rows absent from the snapshot after importing")
	cmd.Flags().StringVar(&sourceDatabase, "source-database", "", "season database name for registry lookups")
	cmd.Flags().StringVar(&primarySeries, "primary-series", "", "series title to use as the site root")

	return cmd
}
