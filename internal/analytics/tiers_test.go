package analytics

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/config"
	"github.com/fabulaworks/chronicle/internal/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// seedCast creates three episodes, four events, and three characters:
//
//	alice appears in every event (episodes 1, 2, 3)
//	bob shares events with alice in episodes 1 and 2
//	carol shares one event with alice in episode 1
func seedCast(t *testing.T, db *gorm.DB) (alice, bob, carol store.Character) {
	t.Helper()

	series := store.Series{FabulaUUID: "series-1", Title: "Test Series", Slug: "test-series"}
	require.NoError(t, db.Create(&series).Error)
	season := store.Season{FabulaUUID: "season-1", SeriesID: series.ID, SeasonNumber: 1, Title: "Season 1", Slug: "season-1"}
	require.NoError(t, db.Create(&season).Error)

	var episodes []store.Episode
	for i := 1; i <= 3; i++ {
		episode := store.Episode{
			FabulaUUID:    fmt.Sprintf("episode-%d", i),
			SeasonID:      season.ID,
			EpisodeNumber: i,
			Title:         fmt.Sprintf("Episode %d", i),
			Slug:          fmt.Sprintf("episode-%d", i),
		}
		require.NoError(t, db.Create(&episode).Error)
		episodes = append(episodes, episode)
	}

	var events []store.Event
	for i, episodeIdx := range []int{0, 1, 2, 0} {
		event := store.Event{
			FabulaUUID: fmt.Sprintf("event-%d", i+1),
			EpisodeID:  episodes[episodeIdx].ID,
			Title:      fmt.Sprintf("Event %d", i+1),
			Slug:       fmt.Sprintf("event-%d", i+1),
		}
		require.NoError(t, db.Create(&event).Error)
		events = append(events, event)
	}

	alice = store.Character{FabulaUUID: "char-alice", CanonicalName: "Alice", Slug: "alice"}
	bob = store.Character{FabulaUUID: "char-bob", CanonicalName: "Bob", Slug: "bob", ImportanceTier: TierAnchor}
	carol = store.Character{FabulaUUID: "char-carol", CanonicalName: "Carol", Slug: "carol"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)
	require.NoError(t, db.Create(&carol).Error)

	for _, p := range []store.Participation{
		{EventID: events[0].ID, CharacterID: alice.ID},
		{EventID: events[0].ID, CharacterID: bob.ID},
		{EventID: events[1].ID, CharacterID: alice.ID},
		{EventID: events[1].ID, CharacterID: bob.ID},
		{EventID: events[2].ID, CharacterID: alice.ID},
		{EventID: events[3].ID, CharacterID: alice.ID},
		{EventID: events[3].ID, CharacterID: carol.ID},
	} {
		require.NoError(t, db.Create(&p).Error)
	}
	return alice, bob, carol
}

func tierTestConfig() config.TierConfig {
	return config.TierConfig{
		AnchorMinEpisodes:      3,
		AnchorMinRelationships: 10,
		PlanetMinEpisodes:      2,
		PlanetMinRelationships: 5,
	}
}

func TestComputeTiers(t *testing.T) {
	db := newTestDB(t)
	alice, bob, carol := seedCast(t, db)

	stats, err := ComputeTiers(context.Background(), db, tierTestConfig(), testLogger(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Anchors)
	assert.Equal(t, 1, stats.Planets)
	assert.Equal(t, 1, stats.Asteroids)
	// alice starts blank and becomes anchor, bob was seeded anchor and drops
	// to planet, carol stays asteroid
	assert.Equal(t, 1, stats.Promoted)
	assert.Equal(t, 1, stats.Demoted)
	assert.Equal(t, 1, stats.Unchanged)

	var gotAlice store.Character
	require.NoError(t, db.First(&gotAlice, alice.ID).Error)
	assert.Equal(t, TierAnchor, gotAlice.ImportanceTier)
	assert.Equal(t, 4, gotAlice.AppearanceCount)
	assert.Equal(t, 3, gotAlice.EpisodeCount)
	assert.Equal(t, 2, gotAlice.RelationshipCount)

	var gotBob store.Character
	require.NoError(t, db.First(&gotBob, bob.ID).Error)
	assert.Equal(t, TierPlanet, gotBob.ImportanceTier)
	assert.Equal(t, 2, gotBob.AppearanceCount)
	assert.Equal(t, 2, gotBob.EpisodeCount)
	assert.Equal(t, 1, gotBob.RelationshipCount)

	var gotCarol store.Character
	require.NoError(t, db.First(&gotCarol, carol.ID).Error)
	assert.Equal(t, TierAsteroid, gotCarol.ImportanceTier)
	assert.Equal(t, 1, gotCarol.AppearanceCount)
	assert.Equal(t, 1, gotCarol.EpisodeCount)
	assert.Equal(t, 1, gotCarol.RelationshipCount)
}

func TestComputeTiersDryRun(t *testing.T) {
	db := newTestDB(t)
	alice, _, _ := seedCast(t, db)

	stats, err := ComputeTiers(context.Background(), db, tierTestConfig(), testLogger(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Anchors)

	var got store.Character
	require.NoError(t, db.First(&got, alice.ID).Error)
	assert.Empty(t, got.ImportanceTier)
	assert.Zero(t, got.AppearanceCount)
}

func TestClassifyTierRelationshipThreshold(t *testing.T) {
	cfg := tierTestConfig()

	// either axis clearing its threshold is enough
	assert.Equal(t, TierAnchor, classifyTier(cfg, characterCounts{Episodes: 1, Relationships: 10}))
	assert.Equal(t, TierPlanet, classifyTier(cfg, characterCounts{Episodes: 1, Relationships: 5}))
	assert.Equal(t, TierAsteroid, classifyTier(cfg, characterCounts{Episodes: 1, Relationships: 4}))
	assert.Equal(t, TierAnchor, classifyTier(cfg, characterCounts{Episodes: 3}))
}

func TestBuildCooccurrence(t *testing.T) {
	db := newTestDB(t)
	alice, bob, carol := seedCast(t, db)

	g, err := BuildCooccurrence(db)
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 3)
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 2.0, g.Weight(alice.ID, bob.ID))
	assert.Equal(t, 1.0, g.Weight(alice.ID, carol.ID))
	assert.Zero(t, g.Weight(bob.ID, carol.ID))
}

func TestBuildCooccurrenceKeepsIsolatedNodes(t *testing.T) {
	db := newTestDB(t)
	loner := store.Character{FabulaUUID: "char-loner", CanonicalName: "Loner", Slug: "loner"}
	require.NoError(t, db.Create(&loner).Error)

	g, err := BuildCooccurrence(db)
	require.NoError(t, err)
	assert.Equal(t, []uint{loner.ID}, g.Nodes)
	assert.Zero(t, g.EdgeCount())
}
