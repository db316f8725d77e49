package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeMinimalSnapshot lays down a complete export directory; individual tests
// overwrite the files they care about.
func writeMinimalSnapshot(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "manifest.yaml", "source_database: westwing.s01\nseries_count: 1\n")
	writeFile(t, dir, "series.yaml", `
fabula_uuid: series-1
title: The West Wing
seasons:
  - fabula_uuid: season-1
    season_number: 1
    episodes:
      - fabula_uuid: episode-1
        episode_number: 1
        title: Pilot
`)
	writeFile(t, dir, "themes.yaml", "themes:\n  - fabula_uuid: theme-1\n    name: Duty\n")
	writeFile(t, dir, "arcs.yaml", "- fabula_uuid: arc-1\n  title: Re-election\n  arc_type: SOCIETAL\n")
	writeFile(t, dir, "locations.yaml", "locations:\n  - fabula_uuid: loc-1\n    canonical_name: Oval Office\n")
	writeFile(t, dir, "characters.yaml", "characters:\n  - fabula_uuid: char-1\n    canonical_name: Jed Bartlet\n")
	writeFile(t, dir, "connections.yaml", "connections: []\n")
	writeFile(t, dir, "events/e01.yaml", `
episode_uuid: episode-1
events:
  - fabula_uuid: event-1
    title: Cold open
    scene_sequence: 1
    participations:
      - character_uuid: char-1
        emotional_state: resolute
`)
}

func TestLoadMinimalSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)

	snap, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "westwing.s01", snap.Manifest.SourceDatabase)
	require.Len(t, snap.Series, 1)
	assert.Equal(t, "The West Wing", snap.Series[0].Title)
	require.Len(t, snap.Series[0].Seasons, 1)
	require.Len(t, snap.Series[0].Seasons[0].Episodes, 1)

	assert.Len(t, snap.Themes, 1)
	assert.Len(t, snap.Arcs, 1)
	assert.Len(t, snap.Locations, 1)
	assert.Len(t, snap.Characters, 1)
	assert.Empty(t, snap.Connections)

	require.Len(t, snap.Events, 1)
	assert.Equal(t, "event-1", snap.Events[0].FabulaUUID)
	assert.Equal(t, "episode-1", snap.Events[0].EpisodeUUID)
}

func TestLoadAcceptsBareAndWrappedLists(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	// themes wrapped in writeMinimalSnapshot, arcs bare; flip themes to bare
	writeFile(t, dir, "themes.yaml", "- fabula_uuid: theme-1\n  name: Duty\n- fabula_uuid: theme-2\n  name: Loyalty\n")

	snap, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, snap.Themes, 2)
	assert.Len(t, snap.Arcs, 1)
}

func TestLoadLegacyUUIDKeys(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	writeFile(t, dir, "themes.yaml", "themes:\n  - theme_uuid: theme-legacy\n    name: Honor\n")
	writeFile(t, dir, "characters.yaml", "characters:\n  - agent_uuid: char-legacy\n    canonical_name: Leo McGarry\n")
	writeFile(t, dir, "events/e01.yaml", `
episode_uuid: episode-1
events:
  - event_uuid: event-legacy
    title: Cold open
    participations:
      - agent_uuid: char-legacy
`)

	snap, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "theme-legacy", snap.Themes[0].FabulaUUID)
	assert.Equal(t, "char-legacy", snap.Characters[0].FabulaUUID)
	require.Len(t, snap.Events, 1)
	assert.Equal(t, "event-legacy", snap.Events[0].FabulaUUID)
	require.Len(t, snap.Events[0].Participations, 1)
	assert.Equal(t, "char-legacy", snap.Events[0].Participations[0].CharacterUUID)
}

func TestLoadSeriesSingleOrList(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	writeFile(t, dir, "series.yaml", `
- fabula_uuid: series-1
  title: The West Wing
- fabula_uuid: series-2
  title: Studio 60
`)

	snap, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, snap.Series, 2)
	assert.Equal(t, "Studio 60", snap.Series[1].Title)
}

func TestLoadEventShardsInheritEpisode(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	writeFile(t, dir, "events/e02.yaml", `
episode_uuid: episode-2
events:
  - fabula_uuid: event-2
    title: Walk and talk
  - fabula_uuid: event-3
    title: Press briefing
    episode_uuid: episode-override
`)

	snap, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, snap.Events, 3)

	// shards are read in name order
	assert.Equal(t, "event-1", snap.Events[0].FabulaUUID)
	assert.Equal(t, "episode-2", snap.Events[1].EpisodeUUID)
	assert.Equal(t, "episode-override", snap.Events[2].EpisodeUUID)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "characters.yaml")))

	_, err := Load(dir)
	require.Error(t, err)

	var missing *MissingSourceError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Path, "characters.yaml")
}

func TestLoadOptionalFilesAbsent(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)

	snap, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, snap.Organizations)
	assert.Empty(t, snap.Objects)
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	writeFile(t, dir, "characters.yaml", `
characters:
  - fabula_uuid: char-1
    global_id: G1
    canonical_name: Jed Bartlet
    affiliated_organization_uuid: org-1
  - fabula_uuid: char-1b
    global_id: G1
    canonical_name: Jed Bartlet
    affiliated_organization_uuid: org-2
  - fabula_uuid: char-2
    canonical_name: Josh Lyman
  - fabula_uuid: char-2
    canonical_name: Josh Lyman
`)

	snap, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, snap.Characters, 2)
	assert.Equal(t, "char-1", snap.Characters[0].FabulaUUID)
	assert.Equal(t, "org-1", snap.Characters[0].AffiliatedOrganizationUUID)
	assert.Equal(t, "char-2", snap.Characters[1].FabulaUUID)
	assert.Equal(t, 2, snap.DuplicatesDropped["characters"])
}

func TestDedupeDropsRepeatedLocalID(t *testing.T) {
	dir := t.TempDir()
	writeMinimalSnapshot(t, dir)
	// one local row exported twice under different global identities
	writeFile(t, dir, "characters.yaml", `
characters:
  - fabula_uuid: char-1
    global_id: G1
    canonical_name: Jed Bartlet
  - fabula_uuid: char-1
    global_id: G2
    canonical_name: Jed Bartlet
`)

	snap, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, snap.Characters, 1)
	assert.Equal(t, "G1", snap.Characters[0].GlobalID)
	assert.Equal(t, 1, snap.DuplicatesDropped["characters"])
}
