package importer

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/store"
)

// runState carries everything one import run needs: the transaction, the run
// stats, and lookup caches keyed by season-local uuid plus the global_id
// caches that drive cross-season matching.
type runState struct {
	tx    *gorm.DB
	stats *Stats
	log   *logrus.Logger

	themes        map[string]*store.Theme
	arcs          map[string]*store.ConflictArc
	locations     map[string]*store.Location
	organizations map[string]*store.Organization
	objects       map[string]*store.Object
	characters    map[string]*store.Character
	episodes      map[string]*store.Episode
	events        map[string]*store.Event

	themesByGlobalID        map[string]*store.Theme
	arcsByGlobalID          map[string]*store.ConflictArc
	locationsByGlobalID     map[string]*store.Location
	organizationsByGlobalID map[string]*store.Organization
	objectsByGlobalID       map[string]*store.Object
	charactersByGlobalID    map[string]*store.Character
}

func newRunState(tx *gorm.DB, stats *Stats, log *logrus.Logger) *runState {
	return &runState{
		tx:    tx,
		stats: stats,
		log:   log,

		themes:        map[string]*store.Theme{},
		arcs:          map[string]*store.ConflictArc{},
		locations:     map[string]*store.Location{},
		organizations: map[string]*store.Organization{},
		objects:       map[string]*store.Object{},
		characters:    map[string]*store.Character{},
		episodes:      map[string]*store.Episode{},
		events:        map[string]*store.Event{},

		themesByGlobalID:        map[string]*store.Theme{},
		arcsByGlobalID:          map[string]*store.ConflictArc{},
		locationsByGlobalID:     map[string]*store.Location{},
		organizationsByGlobalID: map[string]*store.Organization{},
		objectsByGlobalID:       map[string]*store.Object{},
		charactersByGlobalID:    map[string]*store.Character{},
	}
}

// loadGlobalIDCaches preloads rows that already carry a global_id so a new
// season's records can update the prior season's row instead of duplicating
// it.
func (rs *runState) loadGlobalIDCaches() error {
	var themes []store.Theme
	if err := rs.tx.Where("global_id <> ''").Find(&themes).Error; err != nil {
		return err
	}
	for i := range themes {
		rs.themesByGlobalID[themes[i].GlobalID] = &themes[i]
	}

	var arcs []store.ConflictArc
	if err := rs.tx.Where("global_id <> ''").Find(&arcs).Error; err != nil {
		return err
	}
	for i := range arcs {
		rs.arcsByGlobalID[arcs[i].GlobalID] = &arcs[i]
	}

	var locations []store.Location
	if err := rs.tx.Where("global_id <> ''").Find(&locations).Error; err != nil {
		return err
	}
	for i := range locations {
		rs.locationsByGlobalID[locations[i].GlobalID] = &locations[i]
	}

	var organizations []store.Organization
	if err := rs.tx.Where("global_id <> ''").Find(&organizations).Error; err != nil {
		return err
	}
	for i := range organizations {
		rs.organizationsByGlobalID[organizations[i].GlobalID] = &organizations[i]
	}

	var objects []store.Object
	if err := rs.tx.Where("global_id <> ''").Find(&objects).Error; err != nil {
		return err
	}
	for i := range objects {
		rs.objectsByGlobalID[objects[i].GlobalID] = &objects[i]
	}

	var characters []store.Character
	if err := rs.tx.Where("global_id <> ''").Find(&characters).Error; err != nil {
		return err
	}
	for i := range characters {
		rs.charactersByGlobalID[characters[i].GlobalID] = &characters[i]
	}

	total := len(rs.themesByGlobalID) + len(rs.arcsByGlobalID) + len(rs.locationsByGlobalID) +
		len(rs.organizationsByGlobalID) + len(rs.objectsByGlobalID) + len(rs.charactersByGlobalID)
	rs.log.WithField("entities", total).Debug("loaded global_id caches for cross-season resolution")
	return nil
}
