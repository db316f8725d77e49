package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/store"
)

// Deduplicator merges entities that ended up as multiple rows under the same
// canonical name and removes duplicate edge rows. The row with the lowest id
// is kept as canonical.
type Deduplicator struct {
	DB     *gorm.DB
	Log    *logrus.Logger
	DryRun bool
}

// Run merges duplicate entities first, then removes edge rows that share a
// natural key. Returns (entities merged, edge rows deleted).
func (d *Deduplicator) Run(ctx context.Context) (int64, int64, error) {
	db := d.DB.WithContext(ctx)

	var merged int64
	for _, merge := range []func(*gorm.DB) (int64, error){
		d.mergeCharacters,
		d.mergeOrganizations,
		d.mergeObjects,
		d.mergeLocations,
	} {
		n, err := merge(db)
		if err != nil {
			return merged, 0, err
		}
		merged += n
	}

	var deleted int64
	for _, edge := range []struct {
		label string
		model any
		key   string
	}{
		{"participations", &store.Participation{}, "event_id, character_id"},
		{"object involvements", &store.ObjectInvolvement{}, "event_id, object_id"},
		{"location involvements", &store.LocationInvolvement{}, "event_id, location_id"},
		{"organization involvements", &store.OrganizationInvolvement{}, "event_id, organization_id"},
	} {
		n, err := d.cleanupEdgeDuplicates(db, edge.model, edge.label, edge.key)
		if err != nil {
			return merged, deleted, err
		}
		deleted += n
	}

	d.Log.WithFields(logrus.Fields{"merged": merged, "deleted": deleted, "dry_run": d.DryRun}).
		Info("duplicate cleanup complete")
	return merged, deleted, nil
}

// duplicateGroups returns canonical-name groups with more than one row as
// (keep id, duplicate ids) pairs, ordered for deterministic output.
func duplicateGroups(db *gorm.DB, model any) (map[uint][]uint, []uint, error) {
	type row struct {
		ID            uint
		CanonicalName string
	}
	var rows []row
	if err := db.Model(model).Select("id", "canonical_name").Order("id").Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	firstByName := map[string]uint{}
	groups := map[uint][]uint{}
	for _, r := range rows {
		keep, seen := firstByName[r.CanonicalName]
		if !seen {
			firstByName[r.CanonicalName] = r.ID
			continue
		}
		groups[keep] = append(groups[keep], r.ID)
	}

	keeps := make([]uint, 0, len(groups))
	for keep := range groups {
		keeps = append(keeps, keep)
	}
	sort.Slice(keeps, func(i, j int) bool { return keeps[i] < keeps[j] })
	return groups, keeps, nil
}

// migrateEdges re-points an edge table column from dup to keep, deleting the
// rows that would collide with an edge the canonical row already has.
func migrateEdges(db *gorm.DB, model any, column string, keep, dup uint) error {
	type edge struct {
		ID      uint
		EventID uint
	}
	var dupEdges []edge
	if err := db.Model(model).Select("id", "event_id").
		Where(column+" = ?", dup).Find(&dupEdges).Error; err != nil {
		return err
	}

	for _, e := range dupEdges {
		var count int64
		if err := db.Model(model).
			Where("event_id = ? AND "+column+" = ?", e.EventID, keep).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if err := db.Where("id = ?", e.ID).Delete(model).Error; err != nil {
				return err
			}
		} else {
			if err := db.Model(model).Where("id = ?", e.ID).
				Update(column, keep).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Deduplicator) mergeCharacters(db *gorm.DB) (int64, error) {
	groups, keeps, err := duplicateGroups(db, &store.Character{})
	if err != nil {
		return 0, err
	}

	var merged int64
	for _, keep := range keeps {
		for _, dup := range groups[keep] {
			d.Log.WithFields(logrus.Fields{"keep": keep, "duplicate": dup}).Debug("merging character")
			if !d.DryRun {
				if err := migrateEdges(db, &store.Participation{}, "character_id", keep, dup); err != nil {
					return merged, err
				}
				if err := db.Model(&store.Object{}).Where("owner_character_id = ?", dup).
					Update("owner_character_id", keep).Error; err != nil {
					return merged, err
				}
				if err := db.Where("id = ?", dup).Delete(&store.Character{}).Error; err != nil {
					return merged, err
				}
			}
			merged++
		}
	}
	return merged, nil
}

func (d *Deduplicator) mergeOrganizations(db *gorm.DB) (int64, error) {
	groups, keeps, err := duplicateGroups(db, &store.Organization{})
	if err != nil {
		return 0, err
	}

	var merged int64
	for _, keep := range keeps {
		for _, dup := range groups[keep] {
			d.Log.WithFields(logrus.Fields{"keep": keep, "duplicate": dup}).Debug("merging organization")
			if !d.DryRun {
				if err := migrateEdges(db, &store.OrganizationInvolvement{}, "organization_id", keep, dup); err != nil {
					return merged, err
				}
				if err := db.Model(&store.Character{}).Where("affiliated_organization_id = ?", dup).
					Update("affiliated_organization_id", keep).Error; err != nil {
					return merged, err
				}
				if err := db.Model(&store.Object{}).Where("owner_organization_id = ?", dup).
					Update("owner_organization_id", keep).Error; err != nil {
					return merged, err
				}
				if err := db.Where("id = ?", dup).Delete(&store.Organization{}).Error; err != nil {
					return merged, err
				}
			}
			merged++
		}
	}
	return merged, nil
}

func (d *Deduplicator) mergeObjects(db *gorm.DB) (int64, error) {
	groups, keeps, err := duplicateGroups(db, &store.Object{})
	if err != nil {
		return 0, err
	}

	var merged int64
	for _, keep := range keeps {
		for _, dup := range groups[keep] {
			d.Log.WithFields(logrus.Fields{"keep": keep, "duplicate": dup}).Debug("merging object")
			if !d.DryRun {
				if err := migrateEdges(db, &store.ObjectInvolvement{}, "object_id", keep, dup); err != nil {
					return merged, err
				}
				if err := db.Where("id = ?", dup).Delete(&store.Object{}).Error; err != nil {
					return merged, err
				}
			}
			merged++
		}
	}
	return merged, nil
}

func (d *Deduplicator) mergeLocations(db *gorm.DB) (int64, error) {
	groups, keeps, err := duplicateGroups(db, &store.Location{})
	if err != nil {
		return 0, err
	}

	var merged int64
	for _, keep := range keeps {
		for _, dup := range groups[keep] {
			d.Log.WithFields(logrus.Fields{"keep": keep, "duplicate": dup}).Debug("merging location")
			if !d.DryRun {
				if err := migrateEdges(db, &store.LocationInvolvement{}, "location_id", keep, dup); err != nil {
					return merged, err
				}
				if err := db.Model(&store.Event{}).Where("location_id = ?", dup).
					Update("location_id", keep).Error; err != nil {
					return merged, err
				}
				if err := db.Model(&store.Location{}).Where("parent_id = ?", dup).
					Update("parent_id", keep).Error; err != nil {
					return merged, err
				}
				if err := db.Where("id = ?", dup).Delete(&store.Location{}).Error; err != nil {
					return merged, err
				}
			}
			merged++
		}
	}
	return merged, nil
}

// cleanupEdgeDuplicates removes rows sharing a natural key, keeping the
// lowest id in each group.
func (d *Deduplicator) cleanupEdgeDuplicates(db *gorm.DB, model any, label, key string) (int64, error) {
	var rows []map[string]any
	if err := db.Model(model).
		Select("id, " + key).Order("id").Find(&rows).Error; err != nil {
		return 0, err
	}

	cols := strings.Split(key, ", ")
	seen := map[string]struct{}{}
	var toDelete []any
	for _, r := range rows {
		k := fmt.Sprintf("%v|%v", r[cols[0]], r[cols[1]])
		if _, ok := seen[k]; ok {
			toDelete = append(toDelete, r["id"])
			continue
		}
		seen[k] = struct{}{}
	}

	if len(toDelete) == 0 {
		return 0, nil
	}
	d.Log.WithFields(logrus.Fields{"extra": len(toDelete)}).Infof("duplicate %s", label)
	if d.DryRun {
		return int64(len(toDelete)), nil
	}
	res := db.Where("id IN ?", toDelete).Delete(model)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
