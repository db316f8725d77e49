package importer

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

// Cleaner deletes rows that are no longer present in the canonical export.
// Children go before parents so nothing ends up referencing a deleted row.
type Cleaner struct {
	DB     *gorm.DB
	Log    *logrus.Logger
	DryRun bool
}

// RemoveDeprecated deletes every row whose fabula_uuid is absent from the
// snapshot. Returns the total number of rows deleted, dependent rows
// included. With DryRun nothing is deleted and the total reflects entity
// rows only.
func (c *Cleaner) RemoveDeprecated(ctx context.Context, snap *snapshot.Snapshot) (int64, error) {
	canonical := canonicalSets(snap)

	db := c.DB.WithContext(ctx)
	var total int64

	deleted, err := c.deleteDeprecatedEvents(db, canonical["events"])
	if err != nil {
		return total, err
	}
	total += deleted

	for _, step := range []struct {
		label     string
		model     any
		canonical map[string]struct{}
		dependent func(db *gorm.DB, ids []uint) (int64, error)
	}{
		{"episodes", &store.Episode{}, canonical["episodes"], nil},
		{"seasons", &store.Season{}, canonical["seasons"], nil},
		{"series", &store.Series{}, canonical["series"], nil},
		{"characters", &store.Character{}, canonical["characters"], cleanCharacterEdges},
		{"organizations", &store.Organization{}, canonical["organizations"], cleanOrganizationEdges},
		{"objects", &store.Object{}, canonical["objects"], cleanObjectEdges},
		{"locations", &store.Location{}, canonical["locations"], cleanLocationEdges},
		{"themes", &store.Theme{}, canonical["themes"], cleanThemeEdges},
		{"arcs", &store.ConflictArc{}, canonical["arcs"], cleanArcEdges},
	} {
		deleted, err := c.deleteMissing(db, step.model, step.label, step.canonical, step.dependent)
		if err != nil {
			return total, err
		}
		total += deleted
	}

	c.Log.WithFields(logrus.Fields{"deleted": total, "dry_run": c.DryRun}).Info("cleanup complete")
	return total, nil
}

// canonicalSets collects the fabula_uuids the snapshot still contains, per
// entity kind.
func canonicalSets(snap *snapshot.Snapshot) map[string]map[string]struct{} {
	sets := map[string]map[string]struct{}{}
	add := func(kind, uuid string) {
		if uuid == "" {
			return
		}
		if sets[kind] == nil {
			sets[kind] = map[string]struct{}{}
		}
		sets[kind][uuid] = struct{}{}
	}
	for _, kind := range []string{
		"series", "seasons", "episodes", "events", "characters",
		"organizations", "objects", "locations", "themes", "arcs",
	} {
		if sets[kind] == nil {
			sets[kind] = map[string]struct{}{}
		}
	}

	for _, series := range snap.Series {
		add("series", series.FabulaUUID)
		for _, season := range series.Seasons {
			add("seasons", season.FabulaUUID)
			for _, episode := range season.Episodes {
				add("episodes", episode.FabulaUUID)
			}
		}
	}
	for _, event := range snap.Events {
		add("events", event.FabulaUUID)
	}
	for _, character := range snap.Characters {
		add("characters", character.FabulaUUID)
	}
	for _, org := range snap.Organizations {
		add("organizations", org.FabulaUUID)
	}
	for _, obj := range snap.Objects {
		add("objects", obj.FabulaUUID)
	}
	for _, location := range snap.Locations {
		add("locations", location.FabulaUUID)
	}
	for _, theme := range snap.Themes {
		add("themes", theme.FabulaUUID)
	}
	for _, arc := range snap.Arcs {
		add("arcs", arc.FabulaUUID)
	}
	return sets
}

// deleteDeprecatedEvents removes deprecated events together with the edge
// rows hanging off them.
func (c *Cleaner) deleteDeprecatedEvents(db *gorm.DB, canonical map[string]struct{}) (int64, error) {
	var events []store.Event
	if err := db.Find(&events).Error; err != nil {
		return 0, err
	}

	var deprecatedIDs []uint
	for _, event := range events {
		if _, ok := canonical[event.FabulaUUID]; !ok {
			deprecatedIDs = append(deprecatedIDs, event.ID)
		}
	}
	c.Log.WithFields(logrus.Fields{
		"canonical":  len(canonical),
		"total":      len(events),
		"deprecated": len(deprecatedIDs),
	}).Info("cleaning events")
	if len(deprecatedIDs) == 0 || c.DryRun {
		return int64(len(deprecatedIDs)), nil
	}

	var total int64
	for _, dependent := range []any{
		&store.Participation{},
		&store.ObjectInvolvement{},
		&store.LocationInvolvement{},
		&store.OrganizationInvolvement{},
	} {
		res := db.Where("event_id IN ?", deprecatedIDs).Delete(dependent)
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
	}
	res := db.Where("from_event_id IN ? OR to_event_id IN ?", deprecatedIDs, deprecatedIDs).
		Delete(&store.NarrativeConnection{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	if err := db.Exec("DELETE FROM event_themes WHERE event_id IN ?", deprecatedIDs).Error; err != nil {
		return total, err
	}
	if err := db.Exec("DELETE FROM event_arcs WHERE event_id IN ?", deprecatedIDs).Error; err != nil {
		return total, err
	}

	res = db.Where("id IN ?", deprecatedIDs).Delete(&store.Event{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected
	return total, nil
}

func (c *Cleaner) deleteMissing(db *gorm.DB, model any, label string, canonical map[string]struct{},
	dependent func(db *gorm.DB, ids []uint) (int64, error)) (int64, error) {
	type row struct {
		ID         uint
		FabulaUUID string
	}
	var rows []row
	if err := db.Model(model).Select("id", "fabula_uuid").Find(&rows).Error; err != nil {
		return 0, err
	}

	var deprecatedIDs []uint
	for _, r := range rows {
		if r.FabulaUUID == "" {
			continue
		}
		if _, ok := canonical[r.FabulaUUID]; !ok {
			deprecatedIDs = append(deprecatedIDs, r.ID)
		}
	}
	c.Log.WithFields(logrus.Fields{
		"canonical":  len(canonical),
		"total":      len(rows),
		"deprecated": len(deprecatedIDs),
	}).Infof("cleaning %s", label)
	if len(deprecatedIDs) == 0 || c.DryRun {
		return int64(len(deprecatedIDs)), nil
	}

	var total int64
	if dependent != nil {
		n, err := dependent(db, deprecatedIDs)
		if err != nil {
			return total, err
		}
		total += n
	}

	res := db.Where("id IN ?", deprecatedIDs).Delete(model)
	if res.Error != nil {
		return total, res.Error
	}
	return total + res.RowsAffected, nil
}

func cleanCharacterEdges(db *gorm.DB, ids []uint) (int64, error) {
	res := db.Where("character_id IN ?", ids).Delete(&store.Participation{})
	if res.Error != nil {
		return 0, res.Error
	}
	err := db.Model(&store.Object{}).Where("owner_character_id IN ?", ids).
		Update("owner_character_id", nil).Error
	return res.RowsAffected, err
}

func cleanOrganizationEdges(db *gorm.DB, ids []uint) (int64, error) {
	res := db.Where("organization_id IN ?", ids).Delete(&store.OrganizationInvolvement{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := db.Model(&store.Character{}).Where("affiliated_organization_id IN ?", ids).
		Update("affiliated_organization_id", nil).Error; err != nil {
		return res.RowsAffected, err
	}
	err := db.Model(&store.Object{}).Where("owner_organization_id IN ?", ids).
		Update("owner_organization_id", nil).Error
	return res.RowsAffected, err
}

func cleanObjectEdges(db *gorm.DB, ids []uint) (int64, error) {
	res := db.Where("object_id IN ?", ids).Delete(&store.ObjectInvolvement{})
	return res.RowsAffected, res.Error
}

func cleanLocationEdges(db *gorm.DB, ids []uint) (int64, error) {
	res := db.Where("location_id IN ?", ids).Delete(&store.LocationInvolvement{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := db.Model(&store.Event{}).Where("location_id IN ?", ids).
		Update("location_id", nil).Error; err != nil {
		return res.RowsAffected, err
	}
	err := db.Model(&store.Location{}).Where("parent_id IN ?", ids).
		Update("parent_id", nil).Error
	return res.RowsAffected, err
}

func cleanThemeEdges(db *gorm.DB, ids []uint) (int64, error) {
	return 0, db.Exec("DELETE FROM event_themes WHERE theme_id IN ?", ids).Error
}

func cleanArcEdges(db *gorm.DB, ids []uint) (int64, error) {
	return 0, db.Exec("DELETE FROM event_arcs WHERE conflict_arc_id IN ?", ids).Error
}
