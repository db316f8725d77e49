package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/ger"
)

// NewRecurringCommand creates the recurring command.
func NewRecurringCommand(opts *RootOptions) *cobra.Command {
	var (
		entityType string
		minSeasons int
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "List entities the registry maps into multiple seasons",
		Long: `Recurring queries the identity registry for entities of one type that
appear in at least the given number of seasons, most widely recurring
first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validEntityType(entityType) {
				return fmt.Errorf("unknown entity type %q: must be one of %s",
					entityType, strings.Join(ger.EntityTypes, ", "))
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			resolver := opts.connectRegistry(ctx, cfg)
			if resolver == nil {
				return fmt.Errorf("identity registry unavailable")
			}
			defer resolver.Close(ctx)

			entities, err := resolver.RecurringEntities(ctx, entityType, minSeasons, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entities) == 0 {
				fmt.Fprintf(out, "No %s entities recur across %d+ seasons\n", entityType, minSeasons)
				return nil
			}
			for _, entity := range entities {
				fmt.Fprintf(out, "%-40s %s (%d seasons: %v)\n",
					entity.CanonicalName, entity.GlobalID, entity.SeasonCount, entity.Seasons)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entityType, "type", ger.EntityTypeAgent, "entity type to query")
	cmd.Flags().IntVar(&minSeasons, "min-seasons", 2, "minimum number of seasons")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to return")

	return cmd
}

func validEntityType(entityType string) bool {
	for _, t := range ger.EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}
