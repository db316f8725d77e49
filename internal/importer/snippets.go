package importer

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

func (rs *runState) importThemes(records []snapshot.ThemeRecord) error {
	for _, rec := range records {
		if !rs.checkRequired("Theme", rec.FabulaUUID, "name", rec.Name) {
			continue
		}

		var theme *store.Theme
		crossSeason := false

		if rec.GlobalID != "" {
			if cached, ok := rs.themesByGlobalID[rec.GlobalID]; ok {
				theme = cached
				crossSeason = true
			}
		}
		if theme == nil {
			var existing store.Theme
			err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&existing).Error
			if err == nil {
				theme = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if theme != nil {
			theme.Name = truncateField(rec.Name, 255)
			theme.Description = rec.Description
			if rec.GlobalID != "" {
				theme.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(theme).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("Theme")
			}
			rs.stats.recordUpdated("Theme")
		} else {
			theme = &store.Theme{
				FabulaUUID:  rec.FabulaUUID,
				GlobalID:    rec.GlobalID,
				Name:        truncateField(rec.Name, 255),
				Description: rec.Description,
			}
			if err := rs.tx.Create(theme).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("Theme")
		}

		rs.themes[rec.FabulaUUID] = theme
		if rec.GlobalID != "" {
			rs.themesByGlobalID[rec.GlobalID] = theme
		}
	}
	return nil
}

func (rs *runState) importArcs(records []snapshot.ArcRecord) error {
	for _, rec := range records {
		title := rec.Title
		if title == "" {
			title = rec.Description
		}
		if !rs.checkRequired("ConflictArc", rec.FabulaUUID, "title", title) {
			continue
		}

		arcType := rec.ArcType
		if arcType == "" {
			arcType = "INTERPERSONAL"
		}

		var arc *store.ConflictArc
		crossSeason := false

		if rec.GlobalID != "" {
			if cached, ok := rs.arcsByGlobalID[rec.GlobalID]; ok {
				arc = cached
				crossSeason = true
			}
		}
		if arc == nil {
			var existing store.ConflictArc
			err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&existing).Error
			if err == nil {
				arc = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if arc != nil {
			arc.Title = truncateField(rec.Title, 255)
			arc.Description = rec.Description
			arc.ArcType = arcType
			if rec.GlobalID != "" {
				arc.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(arc).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("ConflictArc")
			}
			rs.stats.recordUpdated("ConflictArc")
		} else {
			arc = &store.ConflictArc{
				FabulaUUID:  rec.FabulaUUID,
				GlobalID:    rec.GlobalID,
				Title:       truncateField(rec.Title, 255),
				Description: rec.Description,
				ArcType:     arcType,
			}
			if err := rs.tx.Create(arc).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("ConflictArc")
		}

		rs.arcs[rec.FabulaUUID] = arc
		if rec.GlobalID != "" {
			rs.arcsByGlobalID[rec.GlobalID] = arc
		}
	}
	return nil
}

// importLocations runs two passes: all rows first, then parent links, so a
// child can reference a parent that appears later in the file.
func (rs *runState) importLocations(records []snapshot.LocationRecord) error {
	for _, rec := range records {
		if !rs.checkRequired("Location", rec.FabulaUUID, "canonical_name", rec.CanonicalName) {
			continue
		}

		var location *store.Location
		crossSeason := false

		if rec.GlobalID != "" {
			if cached, ok := rs.locationsByGlobalID[rec.GlobalID]; ok {
				location = cached
				crossSeason = true
			}
		}
		if location == nil {
			var existing store.Location
			err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&existing).Error
			if err == nil {
				location = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if location != nil {
			location.CanonicalName = truncateField(rec.CanonicalName, 255)
			location.Description = rec.Description
			location.LocationType = truncateField(rec.LocationType, 64)
			if rec.GlobalID != "" {
				location.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(location).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("Location")
			}
			rs.stats.recordUpdated("Location")
		} else {
			location = &store.Location{
				FabulaUUID:    rec.FabulaUUID,
				GlobalID:      rec.GlobalID,
				CanonicalName: truncateField(rec.CanonicalName, 255),
				Slug:          makeUniqueSlug(slugify(rec.CanonicalName), rec.FabulaUUID),
				Description:   rec.Description,
				LocationType:  truncateField(rec.LocationType, 64),
			}
			if err := rs.tx.Create(location).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("Location")
		}

		rs.locations[rec.FabulaUUID] = location
		if rec.GlobalID != "" {
			rs.locationsByGlobalID[rec.GlobalID] = location
		}
	}

	// second pass: parent links
	for _, rec := range records {
		if rec.ParentLocationUUID == "" {
			continue
		}
		location := rs.locations[rec.FabulaUUID]
		parent, ok := rs.locations[rec.ParentLocationUUID]
		if location == nil || !ok {
			continue
		}
		location.ParentID = &parent.ID
		if err := rs.tx.Save(location).Error; err != nil {
			return err
		}
	}
	return nil
}
