package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/importer"
)

// NewBackfillCommand creates the backfill-global-ids command.
func NewBackfillCommand(opts *RootOptions) *cobra.Command {
	var (
		database    string
		dryRun      bool
		gerURI      string
		gerUser     string
		gerPassword string
		gerDatabase string
	)

	cmd := &cobra.Command{
		Use:   "backfill-global-ids",
		Short: "Stamp registry global_ids onto rows imported without them",
		Long: `Backfill-global-ids loads the identity registry's mappings for one season
database and fills in global_ids on rows that were imported before the
registry knew them. Rows that already carry a global_id are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if database == "" {
				database = cfg.Import.SourceDatabase
			}
			if gerURI != "" {
				cfg.GER.URI = gerURI
			}
			if gerUser != "" {
				cfg.GER.User = gerUser
			}
			if gerPassword != "" {
				cfg.GER.Password = gerPassword
			}
			if gerDatabase != "" {
				cfg.GER.Database = gerDatabase
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

			updated, err := importer.BackfillGlobalIDs(ctx, db, resolver, opts.Log, database, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := 0
			for model, n := range updated {
				fmt.Fprintf(out, "%s: %d\n", model, n)
				total += n
			}
			fmt.Fprintf(out, "Backfilled %d rows\n", total)
			if dryRun {
				fmt.Fprintln(out, "Dry run: nothing written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "season database name (defaults to the configured source)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report matches without writing")
	cmd.Flags().StringVar(&gerURI, "ger-uri", "", "override the registry bolt uri")
	cmd.Flags().StringVar(&gerUser, "ger-user", "", "override the registry user")
	cmd.Flags().StringVar(&gerPassword, "ger-password", "", "override the registry password")
	cmd.Flags().StringVar(&gerDatabase, "ger-database", "", "override the registry database")

	return cmd
}
