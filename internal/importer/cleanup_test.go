package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

func TestRemoveDeprecated(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())

	snap := testSnapshot()
	_, err := im.Run(context.Background(), snap)
	require.NoError(t, err)

	// drop event-2 and char-2 from the canonical export
	snap.Events = snap.Events[:1]
	snap.Events[0].Participations = snap.Events[0].Participations[:1]
	snap.Characters = snap.Characters[:1]

	cleaner := &Cleaner{DB: db, Log: testLogger()}
	deleted, err := cleaner.RemoveDeprecated(context.Background(), snap)
	require.NoError(t, err)

	// event-2, its participation, the connection touching it, and char-2
	assert.EqualValues(t, 1, countRows(t, db, &store.Event{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.Character{}))
	assert.EqualValues(t, 0, countRows(t, db, &store.NarrativeConnection{}))
	assert.Greater(t, deleted, int64(0))

	var event store.Event
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, "event-1", event.FabulaUUID)

	// event-2's participation went with the event, char-2's with the character
	assert.EqualValues(t, 1, countRows(t, db, &store.Participation{}))
	var part store.Participation
	require.NoError(t, db.First(&part).Error)
	var kept store.Character
	require.NoError(t, db.First(&kept).Error)
	assert.Equal(t, kept.ID, part.CharacterID)
}

func TestRemoveDeprecatedKeepsCanonicalRows(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())

	snap := testSnapshot()
	_, err := im.Run(context.Background(), snap)
	require.NoError(t, err)

	deleted, err := (&Cleaner{DB: db, Log: testLogger()}).RemoveDeprecated(context.Background(), snap)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	assert.EqualValues(t, 2, countRows(t, db, &store.Event{}))
	assert.EqualValues(t, 2, countRows(t, db, &store.Character{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.Series{}))
}

func TestRemoveDeprecatedSeriesTree(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())

	require.NoError(t, errOnly(im.Run(context.Background(), testSnapshot())))

	var season store.Season
	require.NoError(t, db.First(&season).Error)
	stale := store.Episode{FabulaUUID: "episode-stale", SeasonID: season.ID, EpisodeNumber: 99, Title: "Stale", Slug: "stale"}
	require.NoError(t, db.Create(&stale).Error)

	deleted, err := (&Cleaner{DB: db, Log: testLogger()}).RemoveDeprecated(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.EqualValues(t, 1, countRows(t, db, &store.Episode{}))
}

func errOnly(_ *Stats, err error) error { return err }

func TestRemoveDeprecatedDryRun(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())

	snap := testSnapshot()
	require.NoError(t, errOnly(im.Run(context.Background(), snap)))

	snap.Characters = snap.Characters[:1]
	deleted, err := (&Cleaner{DB: db, Log: testLogger(), DryRun: true}).
		RemoveDeprecated(context.Background(), snap)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.EqualValues(t, 2, countRows(t, db, &store.Character{}))
	assert.EqualValues(t, 3, countRows(t, db, &store.Participation{}))
}

func TestSnapshotDedupeDropsRepeats(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())

	snap := testSnapshot()
	// a repeated character sharing the first one's global identity
	snap.Characters[0].GlobalID = "global-josh"
	snap.Characters = append(snap.Characters, snapshot.CharacterRecord{
		FabulaUUID:    "char-1-again",
		GlobalID:      "global-josh",
		CanonicalName: "Joshua Lyman",
	})

	// the loader normally dedupes; here the import itself must still end up
	// with a single row because both records resolve through the same cache
	_, err := im.Run(context.Background(), snap)
	require.NoError(t, err)
	assert.EqualValues(t, 2, countRows(t, db, &store.Character{}))

	var character store.Character
	require.NoError(t, db.Where("global_id = ?", "global-josh").First(&character).Error)
	assert.Equal(t, "Joshua Lyman", character.CanonicalName)
}
