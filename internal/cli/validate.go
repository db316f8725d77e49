package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabulaworks/chronicle/internal/snapshot"
)

// detailLimit caps how many per-check detail lines the report prints.
const detailLimit = 10

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	var (
		checkRichness bool
		strict        bool
	)

	cmd := &cobra.Command{
		Use:     "validate <snapshot-dir>",
		Aliases: []string{"validate-snapshot"},
		Short:   "Check a snapshot for integrity problems before importing",
		Long: `Validate runs referential-integrity and completeness checks over an export
directory without touching the database. Dangling references and missing
required fields are errors; unknown enum values and missing descriptions
are warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			checks := snap.Validate()

			totalErrors, totalWarnings := 0, 0
			for _, name := range snapshot.CheckNames {
				result := checks[name]
				totalErrors += result.Errors
				totalWarnings += result.Warnings

				status := "ok"
				if result.Errors > 0 {
					status = fmt.Sprintf("%d errors, %d warnings", result.Errors, result.Warnings)
				} else if result.Warnings > 0 {
					status = fmt.Sprintf("%d warnings", result.Warnings)
				}
				fmt.Fprintf(out, "%-15s %s\n", name, status)
				details := result.Details
				if len(details) > detailLimit {
					details = details[:detailLimit]
				}
				for _, detail := range details {
					fmt.Fprintf(out, "  - %s\n", detail)
				}
				if len(result.Details) > detailLimit {
					fmt.Fprintf(out, "  ... and %d more\n", len(result.Details)-detailLimit)
				}
			}

			if checkRichness {
				printRichness(cmd, snap)
			}

			if totalErrors > 0 {
				fmt.Fprintf(out, "\nValidation found %d errors, %d warnings\n", totalErrors, totalWarnings)
				if strict {
					return fmt.Errorf("validation failed: %d errors, %d warnings", totalErrors, totalWarnings)
				}
				return nil
			}
			fmt.Fprintln(out, "\nSnapshot is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkRichness, "check-richness", false, "report participation detail coverage")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when errors are found")

	return cmd
}

func printRichness(cmd *cobra.Command, snap *snapshot.Snapshot) {
	out := cmd.OutOrStdout()
	report := snap.AnalyzeRichness()

	fmt.Fprintf(out, "\nParticipation richness: %d/%d rich (%.1f%%)\n",
		report.Rich, report.Total, report.RichPercentage)
	for _, field := range snapshot.RichnessFields {
		fc := report.FieldCoverage[field]
		fmt.Fprintf(out, "  %-18s %6d (%.1f%%)\n", field, fc.Count, fc.Percentage)
	}
}
