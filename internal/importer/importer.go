package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/ger"
	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

// Importer loads a snapshot into the content store. Runs are idempotent:
// rows are looked up by global_id first (cross-season match), then by
// fabula_uuid, and only created when neither finds one.
type Importer struct {
	DB       *gorm.DB
	Resolver ger.Resolver
	Log      *logrus.Logger

	// SourceDatabase is the season database name used for registry lookups
	// when the snapshot manifest does not name one.
	SourceDatabase string

	// PrimarySeries picks the series that becomes the site root when the
	// snapshot holds more than one.
	PrimarySeries string

	// DryRun executes every phase inside the transaction and rolls it back
	// instead of committing.
	DryRun bool
}

func New(db *gorm.DB, resolver ger.Resolver, log *logrus.Logger) *Importer {
	return &Importer{DB: db, Resolver: resolver, Log: log}
}

// Run imports the snapshot in dependency order inside one transaction.
// Per-record problems (dangling references, unknown episodes) are recorded in
// the returned stats and skipped; only infrastructure failures abort the run.
func (im *Importer) Run(ctx context.Context, snap *snapshot.Snapshot) (*Stats, error) {
	stats := NewStats()

	im.resolveMissingGlobalIDs(ctx, snap)

	tx := im.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	rs := newRunState(tx, stats, im.Log)

	if err := rs.loadGlobalIDCaches(); err != nil {
		return stats, fmt.Errorf("failed to load global_id caches: %w", err)
	}

	im.Log.Info("phase 1: importing themes, arcs, and locations")
	if err := rs.importThemes(snap.Themes); err != nil {
		return stats, err
	}
	if err := rs.importArcs(snap.Arcs); err != nil {
		return stats, err
	}
	if err := rs.importLocations(snap.Locations); err != nil {
		return stats, err
	}

	im.Log.Info("phase 2: building the series tree")
	primary, err := rs.importSeriesTree(snap.Series, im.PrimarySeries)
	if err != nil {
		return stats, err
	}

	im.Log.Info("phase 3: importing organizations, characters, and objects")
	if err := rs.importOrganizations(snap.Organizations); err != nil {
		return stats, err
	}
	if err := rs.importCharacters(snap.Characters); err != nil {
		return stats, err
	}
	if err := rs.importObjects(snap.Objects); err != nil {
		return stats, err
	}

	im.Log.Info("phase 4: importing events")
	if err := rs.importEvents(snap.Events); err != nil {
		return stats, err
	}

	im.Log.Info("phase 5: importing participations")
	if err := rs.importParticipations(snap.Events); err != nil {
		return stats, err
	}

	im.Log.Info("phase 6: importing involvements")
	if err := rs.importObjectInvolvements(snap.Events); err != nil {
		return stats, err
	}
	if err := rs.importLocationInvolvements(snap.Events); err != nil {
		return stats, err
	}
	if err := rs.importOrganizationInvolvements(snap.Events); err != nil {
		return stats, err
	}

	im.Log.Info("phase 7: importing narrative connections")
	if err := rs.importConnections(snap.Connections); err != nil {
		return stats, err
	}

	im.Log.Info("phase 8: configuring the site root")
	if err := rs.configureSite(primary); err != nil {
		return stats, err
	}

	if im.DryRun {
		im.Log.Info("dry run: rolling back")
		return stats, nil
	}

	if err := tx.Commit().Error; err != nil {
		return stats, fmt.Errorf("failed to commit import: %w", err)
	}
	committed = true
	return stats, nil
}

// resolveMissingGlobalIDs fills empty global_ids from the identity registry.
// Registry unavailability degrades to local-only matching, never a failure.
func (im *Importer) resolveMissingGlobalIDs(ctx context.Context, snap *snapshot.Snapshot) {
	if im.Resolver == nil {
		return
	}
	if !im.Resolver.Available(ctx) {
		im.Log.Warn("identity registry unavailable, falling back to local-only matching")
		return
	}

	database := snap.Manifest.SourceDatabase
	if database == "" {
		database = im.SourceDatabase
	}
	if database == "" {
		im.Log.Warn("no source database configured, skipping registry resolution")
		return
	}

	mapping, err := im.Resolver.PreloadGlobalIDs(ctx, database, "")
	if err != nil {
		im.Log.WithError(err).Warn("registry preload failed, falling back to local-only matching")
		return
	}

	filled := 0
	fill := func(globalID *string, localUUID string) {
		if *globalID == "" {
			if resolved, ok := mapping[localUUID]; ok {
				*globalID = resolved
				filled++
			}
		}
	}
	for i := range snap.Themes {
		fill(&snap.Themes[i].GlobalID, snap.Themes[i].FabulaUUID)
	}
	for i := range snap.Arcs {
		fill(&snap.Arcs[i].GlobalID, snap.Arcs[i].FabulaUUID)
	}
	for i := range snap.Locations {
		fill(&snap.Locations[i].GlobalID, snap.Locations[i].FabulaUUID)
	}
	for i := range snap.Characters {
		fill(&snap.Characters[i].GlobalID, snap.Characters[i].FabulaUUID)
	}
	for i := range snap.Organizations {
		fill(&snap.Organizations[i].GlobalID, snap.Organizations[i].FabulaUUID)
	}
	for i := range snap.Objects {
		fill(&snap.Objects[i].GlobalID, snap.Objects[i].FabulaUUID)
	}

	im.Log.WithFields(logrus.Fields{"database": database, "filled": filled}).
		Info("resolved global_ids from identity registry")
}

// configureSite points the default site at the primary series.
func (rs *runState) configureSite(primary *store.Series) error {
	if primary == nil {
		rs.log.Info("no series imported, skipping site configuration")
		return nil
	}

	var site store.SiteConfig
	err := rs.tx.Where("is_default_site = ?", true).First(&site).Error
	switch {
	case err == nil:
		if site.RootSeriesID == primary.ID && site.SiteName == primary.Title {
			return nil
		}
		site.RootSeriesID = primary.ID
		site.SiteName = primary.Title
		if err := rs.tx.Save(&site).Error; err != nil {
			return err
		}
		rs.stats.recordUpdated("SiteConfig")
	case errors.Is(err, gorm.ErrRecordNotFound):
		site = store.SiteConfig{
			Hostname:      "*",
			SiteName:      primary.Title,
			RootSeriesID:  primary.ID,
			IsDefaultSite: true,
		}
		if err := rs.tx.Create(&site).Error; err != nil {
			return err
		}
		rs.stats.recordCreated("SiteConfig")
	default:
		return err
	}
	return nil
}
