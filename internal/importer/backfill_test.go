package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabulaworks/chronicle/internal/store"
)

func TestBackfillGlobalIDs(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())
	require.NoError(t, errOnly(im.Run(context.Background(), testSnapshot())))

	// char-2 already carries a global_id the registry disagrees with
	require.NoError(t, db.Model(&store.Character{}).Where("fabula_uuid = ?", "char-2").
		Update("global_id", "global-existing").Error)

	resolver := &fakeResolver{
		available: true,
		mapping: map[string]string{
			"char-1":  "global-josh",
			"char-2":  "global-other",
			"theme-1": "global-duty",
		},
	}
	updated, err := BackfillGlobalIDs(context.Background(), db, resolver, testLogger(), "westwing.s01", false)
	require.NoError(t, err)
	assert.Equal(t, 1, updated["Character"])
	assert.Equal(t, 1, updated["Theme"])
	assert.Equal(t, 0, updated["Location"])

	var filled store.Character
	require.NoError(t, db.Where("fabula_uuid = ?", "char-1").First(&filled).Error)
	assert.Equal(t, "global-josh", filled.GlobalID)

	// rows that already had a global_id are left alone
	var untouched store.Character
	require.NoError(t, db.Where("fabula_uuid = ?", "char-2").First(&untouched).Error)
	assert.Equal(t, "global-existing", untouched.GlobalID)
}

func TestBackfillGlobalIDsDryRun(t *testing.T) {
	db := newTestDB(t)
	im := New(db, nil, testLogger())
	require.NoError(t, errOnly(im.Run(context.Background(), testSnapshot())))

	resolver := &fakeResolver{available: true, mapping: map[string]string{"char-1": "global-josh"}}
	updated, err := BackfillGlobalIDs(context.Background(), db, resolver, testLogger(), "westwing.s01", true)
	require.NoError(t, err)
	assert.Equal(t, 1, updated["Character"])

	var character store.Character
	require.NoError(t, db.Where("fabula_uuid = ?", "char-1").First(&character).Error)
	assert.Empty(t, character.GlobalID)
}

func TestBackfillGlobalIDsRequiresRegistry(t *testing.T) {
	db := newTestDB(t)

	_, err := BackfillGlobalIDs(context.Background(), db, nil, testLogger(), "westwing.s01", false)
	assert.Error(t, err)

	_, err = BackfillGlobalIDs(context.Background(), db, &fakeResolver{available: false}, testLogger(), "westwing.s01", false)
	assert.Error(t, err)
}
