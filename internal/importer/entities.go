package importer

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

func (rs *runState) importOrganizations(records []snapshot.OrganizationRecord) error {
	for _, rec := range records {
		if !rs.checkRequired("Organization", rec.FabulaUUID, "canonical_name", rec.CanonicalName) {
			continue
		}

		var org *store.Organization
		crossSeason := false

		if rec.GlobalID != "" {
			if cached, ok := rs.organizationsByGlobalID[rec.GlobalID]; ok {
				org = cached
				crossSeason = true
			}
		}
		if org == nil {
			var existing store.Organization
			err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&existing).Error
			if err == nil {
				org = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if org != nil {
			org.CanonicalName = truncateField(rec.CanonicalName, 255)
			org.Description = rec.Description
			org.SphereOfInfluence = truncateField(rec.SphereOfInfluence, 255)
			if rec.GlobalID != "" {
				org.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(org).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("Organization")
			}
			rs.stats.recordUpdated("Organization")
		} else {
			org = &store.Organization{
				FabulaUUID:        rec.FabulaUUID,
				GlobalID:          rec.GlobalID,
				CanonicalName:     truncateField(rec.CanonicalName, 255),
				Slug:              makeUniqueSlug(slugify(rec.CanonicalName), rec.FabulaUUID),
				Description:       rec.Description,
				SphereOfInfluence: truncateField(rec.SphereOfInfluence, 255),
			}
			if err := rs.tx.Create(org).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("Organization")
		}

		rs.organizations[rec.FabulaUUID] = org
		if rec.GlobalID != "" {
			rs.organizationsByGlobalID[rec.GlobalID] = org
		}
	}
	return nil
}

func (rs *runState) importCharacters(records []snapshot.CharacterRecord) error {
	for _, rec := range records {
		if !rs.checkRequired("Character", rec.FabulaUUID, "canonical_name", rec.CanonicalName) {
			continue
		}

		var character *store.Character
		crossSeason := false

		if rec.GlobalID != "" {
			if cached, ok := rs.charactersByGlobalID[rec.GlobalID]; ok {
				character = cached
				crossSeason = true
			}
		}
		if character == nil {
			var existing store.Character
			err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&existing).Error
			if err == nil {
				character = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		var orgID *uint
		if rec.AffiliatedOrganizationUUID != "" {
			if org, ok := rs.organizations[rec.AffiliatedOrganizationUUID]; ok {
				orgID = &org.ID
			}
		}

		if character != nil {
			character.CanonicalName = truncateField(rec.CanonicalName, 255)
			character.TitleRole = truncateField(rec.TitleRole, 255)
			character.Description = rec.Description
			character.Traits = store.JSONStrings(rec.Traits)
			character.Aliases = store.JSONStrings(rec.Aliases)
			character.CharacterType = normalizeCharacterType(rec.CharacterType)
			character.SphereOfInfluence = truncateField(rec.SphereOfInfluence, 255)
			character.AppearanceCount = rec.AppearanceCount
			character.AffiliatedOrganizationID = orgID
			if rec.GlobalID != "" {
				character.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(character).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("Character")
			}
			rs.stats.recordUpdated("Character")
		} else {
			character = &store.Character{
				FabulaUUID:               rec.FabulaUUID,
				GlobalID:                 rec.GlobalID,
				CanonicalName:            truncateField(rec.CanonicalName, 255),
				Slug:                     makeUniqueSlug(slugify(rec.CanonicalName), rec.FabulaUUID),
				TitleRole:                truncateField(rec.TitleRole, 255),
				Description:              rec.Description,
				Traits:                   store.JSONStrings(rec.Traits),
				Aliases:                  store.JSONStrings(rec.Aliases),
				CharacterType:            normalizeCharacterType(rec.CharacterType),
				SphereOfInfluence:        truncateField(rec.SphereOfInfluence, 255),
				AppearanceCount:          rec.AppearanceCount,
				AffiliatedOrganizationID: orgID,
			}
			if err := rs.tx.Create(character).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("Character")
		}

		rs.characters[rec.FabulaUUID] = character
		if rec.GlobalID != "" {
			rs.charactersByGlobalID[rec.GlobalID] = character
		}
	}
	return nil
}

// importObjects runs after characters and organizations so owner references
// resolve. When a record names both, the character owner wins.
func (rs *runState) importObjects(records []snapshot.ObjectRecord) error {
	for _, rec := range records {
		if !rs.checkRequired("Object", rec.FabulaUUID, "canonical_name", rec.CanonicalName) {
			continue
		}

		var obj *store.Object
		crossSeason := false

		if rec.GlobalID != "" {
			if cached, ok := rs.objectsByGlobalID[rec.GlobalID]; ok {
				obj = cached
				crossSeason = true
			}
		}
		if obj == nil {
			var existing store.Object
			err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&existing).Error
			if err == nil {
				obj = &existing
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		var ownerCharacterID, ownerOrganizationID *uint
		if rec.OwnerCharacterUUID != "" {
			if owner, ok := rs.characters[rec.OwnerCharacterUUID]; ok {
				ownerCharacterID = &owner.ID
			}
		}
		if ownerCharacterID == nil && rec.OwnerOrganizationUUID != "" {
			if owner, ok := rs.organizations[rec.OwnerOrganizationUUID]; ok {
				ownerOrganizationID = &owner.ID
			}
		}

		if obj != nil {
			obj.CanonicalName = truncateField(rec.CanonicalName, 255)
			obj.Description = rec.Description
			obj.Purpose = rec.Purpose
			obj.Significance = rec.Significance
			obj.OwnerCharacterID = ownerCharacterID
			obj.OwnerOrganizationID = ownerOrganizationID
			if rec.GlobalID != "" {
				obj.GlobalID = rec.GlobalID
			}
			if err := rs.tx.Save(obj).Error; err != nil {
				return err
			}
			if crossSeason {
				rs.stats.recordCrossSeasonMatch("Object")
			}
			rs.stats.recordUpdated("Object")
		} else {
			obj = &store.Object{
				FabulaUUID:          rec.FabulaUUID,
				GlobalID:            rec.GlobalID,
				CanonicalName:       truncateField(rec.CanonicalName, 255),
				Slug:                makeUniqueSlug(slugify(rec.CanonicalName), rec.FabulaUUID),
				Description:         rec.Description,
				Purpose:             rec.Purpose,
				Significance:        rec.Significance,
				OwnerCharacterID:    ownerCharacterID,
				OwnerOrganizationID: ownerOrganizationID,
			}
			if err := rs.tx.Create(obj).Error; err != nil {
				return err
			}
			rs.stats.recordCreated("Object")
		}

		rs.objects[rec.FabulaUUID] = obj
		if rec.GlobalID != "" {
			rs.objectsByGlobalID[rec.GlobalID] = obj
		}
	}
	return nil
}
