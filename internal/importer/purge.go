package importer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/store"
)

// ErrPurgeNotConfirmed is returned when a destructive purge is requested
// without the confirm flag.
var ErrPurgeNotConfirmed = errors.New("purge requires confirmation")

// ErrPurgeConflictingFlags is returned when dry-run and confirm are combined.
var ErrPurgeConflictingFlags = errors.New("purge dry-run and confirm are mutually exclusive")

// PurgeOptions controls what a purge removes.
type PurgeOptions struct {
	// DryRun reports counts without deleting anything.
	DryRun bool
	// Confirm must be set for a real purge.
	Confirm bool
	// KeepStructure preserves series, seasons, episodes, section indexes,
	// and the site config.
	KeepStructure bool
}

type purgeStep struct {
	Label string
	Model any
}

func purgeSteps(keepStructure bool) []purgeStep {
	// edge rows first, then entities, then structure
	steps := []purgeStep{
		{"Participation", &store.Participation{}},
		{"ObjectInvolvement", &store.ObjectInvolvement{}},
		{"LocationInvolvement", &store.LocationInvolvement{}},
		{"OrganizationInvolvement", &store.OrganizationInvolvement{}},
		{"NarrativeConnection", &store.NarrativeConnection{}},
		{"Event", &store.Event{}},
		{"Character", &store.Character{}},
		{"Organization", &store.Organization{}},
		{"Object", &store.Object{}},
		{"Location", &store.Location{}},
		{"Theme", &store.Theme{}},
		{"ConflictArc", &store.ConflictArc{}},
	}
	if !keepStructure {
		steps = append(steps,
			purgeStep{"Episode", &store.Episode{}},
			purgeStep{"Season", &store.Season{}},
			purgeStep{"SectionIndex", &store.SectionIndex{}},
			purgeStep{"Series", &store.Series{}},
			purgeStep{"SiteConfig", &store.SiteConfig{}},
		)
	}
	return steps
}

// Purge deletes all narrative data. With DryRun it only reports what would
// go; otherwise Confirm is required.
func Purge(ctx context.Context, db *gorm.DB, log *logrus.Logger, opts PurgeOptions) (map[string]int64, error) {
	if opts.DryRun && opts.Confirm {
		return nil, ErrPurgeConflictingFlags
	}
	if !opts.DryRun && !opts.Confirm {
		return nil, ErrPurgeNotConfirmed
	}

	db = db.WithContext(ctx)
	counts := map[string]int64{}
	steps := purgeSteps(opts.KeepStructure)

	for _, step := range steps {
		var count int64
		if err := db.Model(step.Model).Count(&count).Error; err != nil {
			return nil, err
		}
		counts[step.Label] = count
	}

	if opts.DryRun {
		log.Info("dry run: nothing deleted")
		return counts, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// m2m join rows have no model; clear them alongside events
		if err := tx.Exec("DELETE FROM event_themes").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM event_arcs").Error; err != nil {
			return err
		}
		for _, step := range steps {
			if err := tx.Where("1 = 1").Delete(step.Model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	log.WithFields(logrus.Fields{"deleted": total, "keep_structure": opts.KeepStructure}).
		Info("purge complete")
	return counts, nil
}
