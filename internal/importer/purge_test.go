package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabulaworks/chronicle/internal/store"
)

func TestPurgeRequiresConfirmation(t *testing.T) {
	db := newTestDB(t)
	_, err := Purge(context.Background(), db, testLogger(), PurgeOptions{})
	assert.ErrorIs(t, err, ErrPurgeNotConfirmed)
}

func TestPurgeRejectsDryRunWithConfirm(t *testing.T) {
	db := newTestDB(t)
	_, err := Purge(context.Background(), db, testLogger(), PurgeOptions{DryRun: true, Confirm: true})
	assert.ErrorIs(t, err, ErrPurgeConflictingFlags)
}

func TestPurgeDryRunCountsOnly(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())
	require.NoError(t, errOnly(im.Run(context.Background(), testSnapshot())))

	counts, err := Purge(context.Background(), db, testLogger(), PurgeOptions{DryRun: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["Character"])
	assert.EqualValues(t, 2, counts["Event"])
	assert.EqualValues(t, 1, counts["Series"])

	assert.EqualValues(t, 2, countRows(t, db, &store.Character{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.Series{}))
}

func TestPurgeDeletesEverything(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())
	require.NoError(t, errOnly(im.Run(context.Background(), testSnapshot())))

	counts, err := Purge(context.Background(), db, testLogger(), PurgeOptions{Confirm: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts["Participation"])

	for _, model := range []any{
		&store.Participation{},
		&store.Event{},
		&store.Character{},
		&store.Organization{},
		&store.Object{},
		&store.Location{},
		&store.Theme{},
		&store.ConflictArc{},
		&store.Episode{},
		&store.Season{},
		&store.Series{},
		&store.SiteConfig{},
	} {
		assert.EqualValues(t, 0, countRows(t, db, model))
	}

	var joinRows int64
	require.NoError(t, db.Table("event_themes").Count(&joinRows).Error)
	assert.EqualValues(t, 0, joinRows)
}

func TestPurgeKeepStructure(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())
	require.NoError(t, errOnly(im.Run(context.Background(), testSnapshot())))

	_, err := Purge(context.Background(), db, testLogger(), PurgeOptions{Confirm: true, KeepStructure: true})
	require.NoError(t, err)

	assert.EqualValues(t, 0, countRows(t, db, &store.Character{}))
	assert.EqualValues(t, 0, countRows(t, db, &store.Event{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.Series{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.Season{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.Episode{}))
	assert.EqualValues(t, 1, countRows(t, db, &store.SiteConfig{}))
}
