package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/config"
	"github.com/fabulaworks/chronicle/internal/ger"
	"github.com/fabulaworks/chronicle/internal/store"
)

// RootOptions holds global flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Log        *logrus.Logger
}

// NewRootCommand creates the chronicle root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Log: logrus.New()}

	cmd := &cobra.Command{
		Use:   "chronicle",
		Short: "Narrative knowledge graph importer and analytics",
		Long: `Chronicle loads season-level narrative exports into a relational content
store, reconciles entities across seasons through the global identity
registry, and computes character analytics over the imported graph.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if opts.Verbose {
				opts.Log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "chronicle.toml", "path to the config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewComputeTiersCommand(opts))
	cmd.AddCommand(NewComputeLayoutCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))
	cmd.AddCommand(NewCleanupCommand(opts))
	cmd.AddCommand(NewDeduplicateCommand(opts))
	cmd.AddCommand(NewPurgeCommand(opts))
	cmd.AddCommand(NewRecurringCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.ConfigPath)
}

func (o *RootOptions) openStore(cfg *config.Config) (*gorm.DB, error) {
	return store.Open(cfg.Database.DSN)
}

// connectRegistry returns nil when the registry is unreachable. Commands that
// merely benefit from it degrade; commands that require it check for nil.
func (o *RootOptions) connectRegistry(ctx context.Context, cfg *config.Config) ger.Resolver {
	client, err := ger.Connect(ctx, cfg.GER.URI, cfg.GER.User, cfg.GER.Password, cfg.GER.Database)
	if err != nil {
		o.Log.WithError(err).Warn("identity registry unreachable")
		return nil
	}
	return client
}
