package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/ger"
	"github.com/fabulaworks/chronicle/internal/store"
)

// BackfillGlobalIDs stamps registry global_ids onto rows imported before the
// registry knew them. Only rows with an empty global_id are touched.
func BackfillGlobalIDs(ctx context.Context, db *gorm.DB, resolver ger.Resolver, log *logrus.Logger, database string, dryRun bool) (map[string]int, error) {
	if resolver == nil {
		return nil, fmt.Errorf("no identity registry configured")
	}
	if !resolver.Available(ctx) {
		return nil, fmt.Errorf("identity registry unavailable")
	}

	mapping, err := resolver.PreloadGlobalIDs(ctx, database, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load registry mappings: %w", err)
	}
	log.WithFields(logrus.Fields{"database": database, "mappings": len(mapping)}).
		Info("loaded registry mappings")

	db = db.WithContext(ctx)
	updated := map[string]int{}

	for _, step := range []struct {
		Label string
		Model any
	}{
		{"Theme", &store.Theme{}},
		{"ConflictArc", &store.ConflictArc{}},
		{"Location", &store.Location{}},
		{"Character", &store.Character{}},
		{"Organization", &store.Organization{}},
		{"Object", &store.Object{}},
	} {
		n, err := backfillModel(db, step.Model, mapping, dryRun)
		if err != nil {
			return updated, err
		}
		updated[step.Label] = n
		log.WithFields(logrus.Fields{"model": step.Label, "updated": n, "dry_run": dryRun}).
			Info("backfilled global_ids")
	}
	return updated, nil
}

func backfillModel(db *gorm.DB, model any, mapping map[string]string, dryRun bool) (int, error) {
	type row struct {
		ID         uint
		FabulaUUID string
	}
	var rows []row
	if err := db.Model(model).Select("id", "fabula_uuid").
		Where("global_id = '' OR global_id IS NULL").Find(&rows).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, r := range rows {
		globalID, ok := mapping[r.FabulaUUID]
		if !ok {
			continue
		}
		if !dryRun {
			if err := db.Model(model).Where("id = ?", r.ID).
				Update("global_id", globalID).Error; err != nil {
				return updated, err
			}
		}
		updated++
	}
	return updated, nil
}
