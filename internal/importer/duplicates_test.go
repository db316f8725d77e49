package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/store"
)

// seedDuplicates creates two characters sharing a canonical name, with edges
// on both, plus a doubled participation row on the canonical one.
func seedDuplicates(t *testing.T, db *gorm.DB) (keep, dup store.Character, eventA, eventB store.Event) {
	t.Helper()

	series := store.Series{FabulaUUID: "series-1", Title: "S", Slug: "s"}
	require.NoError(t, db.Create(&series).Error)
	season := store.Season{FabulaUUID: "season-1", SeriesID: series.ID, SeasonNumber: 1, Title: "Season 1", Slug: "season-1"}
	require.NoError(t, db.Create(&season).Error)
	episode := store.Episode{FabulaUUID: "episode-1", SeasonID: season.ID, EpisodeNumber: 1, Title: "E1", Slug: "e1"}
	require.NoError(t, db.Create(&episode).Error)

	eventA = store.Event{FabulaUUID: "event-a", EpisodeID: episode.ID, Title: "A", Slug: "a"}
	eventB = store.Event{FabulaUUID: "event-b", EpisodeID: episode.ID, Title: "B", Slug: "b"}
	require.NoError(t, db.Create(&eventA).Error)
	require.NoError(t, db.Create(&eventB).Error)

	keep = store.Character{FabulaUUID: "char-keep", CanonicalName: "Toby Ziegler", Slug: "toby"}
	require.NoError(t, db.Create(&keep).Error)
	dup = store.Character{FabulaUUID: "char-dup", CanonicalName: "Toby Ziegler", Slug: "toby-2"}
	require.NoError(t, db.Create(&dup).Error)

	// keep already participates in event A; the duplicate has rows in both
	require.NoError(t, db.Create(&store.Participation{EventID: eventA.ID, CharacterID: keep.ID}).Error)
	require.NoError(t, db.Create(&store.Participation{EventID: eventA.ID, CharacterID: dup.ID}).Error)
	require.NoError(t, db.Create(&store.Participation{EventID: eventB.ID, CharacterID: dup.ID}).Error)
	return keep, dup, eventA, eventB
}

func TestDeduplicatorMergesCharacters(t *testing.T) {
	db := newTestDB(t)
	keep, dup, eventA, eventB := seedDuplicates(t, db)

	// an object owned by the duplicate must follow the merge
	obj := store.Object{FabulaUUID: "obj-1", CanonicalName: "Draft Speech", Slug: "draft-speech", OwnerCharacterID: &dup.ID}
	require.NoError(t, db.Create(&obj).Error)

	d := &Deduplicator{DB: db, Log: testLogger()}
	merged, deleted, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, merged)
	assert.EqualValues(t, 0, deleted)

	assert.EqualValues(t, 1, countRows(t, db, &store.Character{}))
	var remaining store.Character
	require.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, keep.ID, remaining.ID)

	// the colliding event-A row is dropped, the event-B row re-pointed
	assert.EqualValues(t, 2, countRows(t, db, &store.Participation{}))
	var moved store.Participation
	require.NoError(t, db.Where("event_id = ?", eventB.ID).First(&moved).Error)
	assert.Equal(t, keep.ID, moved.CharacterID)
	var kept store.Participation
	require.NoError(t, db.Where("event_id = ?", eventA.ID).First(&kept).Error)
	assert.Equal(t, keep.ID, kept.CharacterID)

	require.NoError(t, db.First(&obj, obj.ID).Error)
	require.NotNil(t, obj.OwnerCharacterID)
	assert.Equal(t, keep.ID, *obj.OwnerCharacterID)
}

func TestDeduplicatorDryRun(t *testing.T) {
	db := newTestDB(t)
	seedDuplicates(t, db)

	d := &Deduplicator{DB: db, Log: testLogger(), DryRun: true}
	merged, deleted, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, merged)
	assert.EqualValues(t, 0, deleted)

	assert.EqualValues(t, 2, countRows(t, db, &store.Character{}))
	assert.EqualValues(t, 3, countRows(t, db, &store.Participation{}))
}

func TestDeduplicatorMergesLocations(t *testing.T) {
	db := newTestDB(t)

	keep := store.Location{FabulaUUID: "loc-keep", CanonicalName: "Situation Room", Slug: "sitroom"}
	require.NoError(t, db.Create(&keep).Error)
	dup := store.Location{FabulaUUID: "loc-dup", CanonicalName: "Situation Room", Slug: "sitroom-2"}
	require.NoError(t, db.Create(&dup).Error)
	child := store.Location{FabulaUUID: "loc-child", CanonicalName: "Annex", Slug: "annex", ParentID: &dup.ID}
	require.NoError(t, db.Create(&child).Error)

	d := &Deduplicator{DB: db, Log: testLogger()}
	merged, _, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, merged)

	require.NoError(t, db.First(&child, child.ID).Error)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, keep.ID, *child.ParentID)
}
