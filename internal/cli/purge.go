package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/importer"
)

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(opts *RootOptions) *cobra.Command {
	var purgeOpts importer.PurgeOptions

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all imported narrative data",
		Long: `Purge removes every imported row from the content store. Without
--keep-structure the series tree and site configuration go too. A real
purge requires --confirm; --dry-run only reports row counts.`,
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

			counts, err := importer.Purge(cmd.Context(), db, opts.Log, purgeOpts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			models := make([]string, 0, len(counts))
			for model := range counts {
				models = append(models, model)
			}
			sort.Strings(models)

			var total int64
			for _, model := range models {
				fmt.Fprintf(out, "%s: %d\n", model, counts[model])
				total += counts[model]
			}
			if purgeOpts.DryRun {
				fmt.Fprintf(out, "Dry run: %d rows would be deleted\n", total)
			} else {
				fmt.Fprintf(out, "Deleted %d rows\n", total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&purgeOpts.Confirm, "confirm", false, "actually delete data")
	cmd.Flags().BoolVar(&purgeOpts.KeepStructure, "keep-structure", false, "preserve the series tree and site config")
	cmd.Flags().BoolVar(&purgeOpts.DryRun, "dry-run", false, "report counts without deleting")

	return cmd
}
