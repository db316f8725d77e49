package importer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

func (rs *runState) importEvents(records []snapshot.EventRecord) error {
	for _, rec := range records {
		if !rs.checkRequired("Event", rec.FabulaUUID, "fabula_uuid", rec.FabulaUUID) {
			continue
		}

		episode, ok := rs.episodes[rec.EpisodeUUID]
		if !ok {
			rs.stats.recordError("episode not found for event %s", rec.FabulaUUID)
			continue
		}

		var locationID *uint
		if rec.LocationUUID != "" {
			if location, ok := rs.locations[rec.LocationUUID]; ok {
				locationID = &location.ID
			}
		}

		title := rec.Title
		if title == "" {
			title = fmt.Sprintf("Event %d.%d", rec.SceneSequence, rec.SequenceInScene)
		}

		var event store.Event
		err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&event).Error
		switch {
		case err == nil:
			event.Title = truncateField(title, 255)
			event.EpisodeID = episode.ID
			event.SceneSequence = rec.SceneSequence
			event.SequenceInScene = rec.SequenceInScene
			event.Description = rec.Description
			event.KeyDialogue = store.JSONStrings(rec.KeyDialogue)
			event.IsFlashback = rec.IsFlashback
			event.LocationID = locationID
			if err := rs.tx.Save(&event).Error; err != nil {
				return err
			}
			rs.stats.recordUpdated("Event")
		case errors.Is(err, gorm.ErrRecordNotFound):
			baseSlug := slugify(fmt.Sprintf("%s-%d-%d", episode.Slug, rec.SceneSequence, rec.SequenceInScene))
			event = store.Event{
				FabulaUUID:      rec.FabulaUUID,
				EpisodeID:       episode.ID,
				Title:           truncateField(title, 255),
				Slug:            makeUniqueSlug(baseSlug, rec.FabulaUUID),
				SceneSequence:   rec.SceneSequence,
				SequenceInScene: rec.SequenceInScene,
				Description:     rec.Description,
				KeyDialogue:     store.JSONStrings(rec.KeyDialogue),
				IsFlashback:     rec.IsFlashback,
				LocationID:      locationID,
			}
			if err := rs.tx.Create(&event).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("Event")
		default:
			return err
		}

		// theme and arc links replace whatever a prior import set
		themes := make([]store.Theme, 0, len(rec.ThemeUUIDs))
		for _, themeUUID := range rec.ThemeUUIDs {
			if theme, ok := rs.themes[themeUUID]; ok {
				themes = append(themes, *theme)
			}
		}
		if err := rs.tx.Model(&event).Association("Themes").Replace(themes); err != nil {
			return err
		}

		arcs := make([]store.ConflictArc, 0, len(rec.ArcUUIDs))
		for _, arcUUID := range rec.ArcUUIDs {
			if arc, ok := rs.arcs[arcUUID]; ok {
				arcs = append(arcs, *arc)
			}
		}
		if err := rs.tx.Model(&event).Association("Arcs").Replace(arcs); err != nil {
			return err
		}

		stored := event
		rs.events[rec.FabulaUUID] = &stored
	}
	return nil
}

func (rs *runState) importParticipations(records []snapshot.EventRecord) error {
	for _, rec := range records {
		event, ok := rs.events[rec.FabulaUUID]
		if !ok {
			continue
		}

		for _, part := range rec.Participations {
			character, ok := rs.characters[part.CharacterUUID]
			if !ok {
				rs.stats.recordError("character %s not found for participation", part.CharacterUUID)
				continue
			}

			var row store.Participation
			err := rs.tx.Where("event_id = ? AND character_id = ?", event.ID, character.ID).First(&row).Error
			switch {
			case err == nil:
				row.EmotionalState = truncateField(part.EmotionalState, 255)
				row.Goals = store.JSONStrings(part.Goals)
				row.WhatHappened = part.WhatHappened
				row.ObservedStatus = truncateField(part.ObservedStatus, 255)
				row.Beliefs = store.JSONStrings(part.Beliefs)
				row.ObservedTraits = store.JSONStrings(part.ObservedTraits)
				row.Importance = truncateField(part.Importance, 32)
				if err := rs.tx.Save(&row).Error; err != nil {
					return err
				}
				rs.stats.recordUpdated("Participation")
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = store.Participation{
					EventID:        event.ID,
					CharacterID:    character.ID,
					EmotionalState: truncateField(part.EmotionalState, 255),
					Goals:          store.JSONStrings(part.Goals),
					WhatHappened:   part.WhatHappened,
					ObservedStatus: truncateField(part.ObservedStatus, 255),
					Beliefs:        store.JSONStrings(part.Beliefs),
					ObservedTraits: store.JSONStrings(part.ObservedTraits),
					Importance:     truncateField(part.Importance, 32),
				}
				if err := rs.tx.Create(&row).Error; err != nil {
					return err
				}
				rs.stats.recordCreated("Participation")
			default:
				return err
			}
		}
	}
	return nil
}

func (rs *runState) importObjectInvolvements(records []snapshot.EventRecord) error {
	for _, rec := range records {
		event, ok := rs.events[rec.FabulaUUID]
		if !ok {
			continue
		}

		for _, inv := range rec.ObjectInvolvements {
			obj, ok := rs.objects[inv.ObjectUUID]
			if !ok {
				rs.stats.recordError("object %s not found for involvement", inv.ObjectUUID)
				continue
			}

			var row store.ObjectInvolvement
			err := rs.tx.Where("event_id = ? AND object_id = ?", event.ID, obj.ID).First(&row).Error
			switch {
			case err == nil:
				row.Description = inv.DescriptionOfInvolvement
				row.StatusBeforeEvent = truncateField(inv.StatusBeforeEvent, 255)
				row.StatusAfterEvent = truncateField(inv.StatusAfterEvent, 255)
				if err := rs.tx.Save(&row).Error; err != nil {
					return err
				}
				rs.stats.recordUpdated("ObjectInvolvement")
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = store.ObjectInvolvement{
					EventID:           event.ID,
					ObjectID:          obj.ID,
					Description:       inv.DescriptionOfInvolvement,
					StatusBeforeEvent: truncateField(inv.StatusBeforeEvent, 255),
					StatusAfterEvent:  truncateField(inv.StatusAfterEvent, 255),
				}
				if err := rs.tx.Create(&row).Error; err != nil {
					return err
				}
				rs.stats.recordCreated("ObjectInvolvement")
			default:
				return err
			}
		}
	}
	return nil
}

func (rs *runState) importLocationInvolvements(records []snapshot.EventRecord) error {
	for _, rec := range records {
		event, ok := rs.events[rec.FabulaUUID]
		if !ok {
			continue
		}

		for _, inv := range rec.LocationInvolvements {
			location, ok := rs.locations[inv.LocationUUID]
			if !ok {
				rs.stats.recordError("location %s not found for involvement", inv.LocationUUID)
				continue
			}

			var row store.LocationInvolvement
			err := rs.tx.Where("event_id = ? AND location_id = ?", event.ID, location.ID).First(&row).Error
			switch {
			case err == nil:
				row.Description = inv.DescriptionOfInvolvement
				row.ObservedAtmosphere = truncateField(inv.ObservedAtmosphere, 255)
				row.FunctionalRole = truncateField(inv.FunctionalRole, 255)
				row.SymbolicSignificance = inv.SymbolicSignificance
				row.AccessRestrictions = truncateField(inv.AccessRestrictions, 255)
				row.KeyEnvironmentalDetails = store.JSONStrings(inv.KeyEnvironmentalDetails)
				if err := rs.tx.Save(&row).Error; err != nil {
					return err
				}
				rs.stats.recordUpdated("LocationInvolvement")
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = store.LocationInvolvement{
					EventID:                 event.ID,
					LocationID:              location.ID,
					Description:             inv.DescriptionOfInvolvement,
					ObservedAtmosphere:      truncateField(inv.ObservedAtmosphere, 255),
					FunctionalRole:          truncateField(inv.FunctionalRole, 255),
					SymbolicSignificance:    inv.SymbolicSignificance,
					AccessRestrictions:      truncateField(inv.AccessRestrictions, 255),
					KeyEnvironmentalDetails: store.JSONStrings(inv.KeyEnvironmentalDetails),
				}
				if err := rs.tx.Create(&row).Error; err != nil {
					return err
				}
				rs.stats.recordCreated("LocationInvolvement")
			default:
				return err
			}
		}
	}
	return nil
}

func (rs *runState) importOrganizationInvolvements(records []snapshot.EventRecord) error {
	for _, rec := range records {
		event, ok := rs.events[rec.FabulaUUID]
		if !ok {
			continue
		}

		for _, inv := range rec.OrganizationInvolvements {
			org, ok := rs.organizations[inv.OrganizationUUID]
			if !ok {
				rs.stats.recordError("organization %s not found for involvement", inv.OrganizationUUID)
				continue
			}

			var row store.OrganizationInvolvement
			err := rs.tx.Where("event_id = ? AND organization_id = ?", event.ID, org.ID).First(&row).Error
			switch {
			case err == nil:
				row.Description = inv.DescriptionOfInvolvement
				row.ActiveRepresentation = inv.ActiveRepresentation
				row.PowerDynamics = inv.PowerDynamics
				row.OrganizationalGoals = store.JSONStrings(inv.OrganizationalGoals)
				row.InfluenceMechanisms = store.JSONStrings(inv.InfluenceMechanisms)
				row.InstitutionalImpact = inv.InstitutionalImpact
				row.InternalDynamics = inv.InternalDynamics
				if err := rs.tx.Save(&row).Error; err != nil {
					return err
				}
				rs.stats.recordUpdated("OrganizationInvolvement")
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = store.OrganizationInvolvement{
					EventID:              event.ID,
					OrganizationID:       org.ID,
					Description:          inv.DescriptionOfInvolvement,
					ActiveRepresentation: inv.ActiveRepresentation,
					PowerDynamics:        inv.PowerDynamics,
					OrganizationalGoals:  store.JSONStrings(inv.OrganizationalGoals),
					InfluenceMechanisms:  store.JSONStrings(inv.InfluenceMechanisms),
					InstitutionalImpact:  inv.InstitutionalImpact,
					InternalDynamics:     inv.InternalDynamics,
				}
				if err := rs.tx.Create(&row).Error; err != nil {
					return err
				}
				rs.stats.recordCreated("OrganizationInvolvement")
			default:
				return err
			}
		}
	}
	return nil
}

func (rs *runState) importConnections(records []snapshot.ConnectionRecord) error {
	// existing connections with a global_id, for cross-season matching
	byGlobalID := map[string]*store.NarrativeConnection{}
	var existing []store.NarrativeConnection
	if err := rs.tx.Where("global_id <> ''").Find(&existing).Error; err != nil {
		return err
	}
	for i := range existing {
		byGlobalID[existing[i].GlobalID] = &existing[i]
	}

	for _, rec := range records {
		fromEvent, fromOK := rs.events[rec.FromEventUUID]
		toEvent, toOK := rs.events[rec.ToEventUUID]
		if !fromOK || !toOK {
			rs.stats.recordError("events not found for connection: %s -> %s", rec.FromEventUUID, rec.ToEventUUID)
			continue
		}

		strength := rec.Strength
		if strength == "" {
			strength = "medium"
		}
		fabulaUUID := rec.FabulaUUID
		if fabulaUUID == "" {
			fabulaUUID = uuid.NewString()
		}

		var conn *store.NarrativeConnection
		crossSeason := false
		if rec.GlobalID != "" {
			if cached, ok := byGlobalID[rec.GlobalID]; ok {
				conn = cached
				crossSeason = true
			}
		}
		if conn == nil {
			var row store.NarrativeConnection
			err := rs.tx.Where("from_event_id = ? AND to_event_id = ? AND connection_type = ?",
				fromEvent.ID, toEvent.ID, rec.ConnectionType).First(&row).Error
			if err == nil {
				conn = &row
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if conn != nil {
			conn.Strength = truncateField(strength, 16)
			conn.Description = rec.Description
			if rec.FabulaUUID != "" {
				conn.FabulaUUID = rec.FabulaUUID
			}
			if rec.GlobalID != "" {
				conn.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(conn).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("NarrativeConnection")
			}
			rs.stats.recordUpdated("NarrativeConnection")
		} else {
			conn = &store.NarrativeConnection{
				FabulaUUID:     fabulaUUID,
				GlobalID:       rec.GlobalID,
				FromEventID:    fromEvent.ID,
				ToEventID:      toEvent.ID,
				ConnectionType: truncateField(rec.ConnectionType, 32),
				Strength:       truncateField(strength, 16),
				Description:    rec.Description,
			}
			if err := rs.tx.Create(conn).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("NarrativeConnection")
		}

		if rec.GlobalID != "" {
			byGlobalID[rec.GlobalID] = conn
		}
	}
	return nil
}
