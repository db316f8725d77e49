package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshotFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeExportDir lays down a loadable export directory; tests overwrite the
// files they care about.
func writeExportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "manifest.yaml", "source_database: westwing.s01\nseries_count: 1\n")
	writeSnapshotFile(t, dir, "series.yaml", `
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
	writeSnapshotFile(t, dir, "themes.yaml", "themes:\n  - fabula_uuid: theme-1\n    name: Duty\n")
	writeSnapshotFile(t, dir, "arcs.yaml", "arcs:\n  - fabula_uuid: arc-1\n    title: Re-election\n")
	writeSnapshotFile(t, dir, "locations.yaml", "locations:\n  - fabula_uuid: loc-1\n    canonical_name: Oval Office\n")
	writeSnapshotFile(t, dir, "characters.yaml", "characters:\n  - fabula_uuid: char-1\n    canonical_name: Jed Bartlet\n")
	writeSnapshotFile(t, dir, "connections.yaml", "connections: []\n")
	writeSnapshotFile(t, dir, "events/e01.yaml", `
episode_uuid: episode-1
events:
  - fabula_uuid: event-1
    title: Cold open
    description: The president rides a bicycle into a tree.
    participations:
      - character_uuid: char-1
`)
	return dir
}

func runValidate(t *testing.T, args ...string) (string, error) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cmd := NewValidateCommand(&RootOptions{Log: log})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeDanglingConnection(t *testing.T, dir string) {
	t.Helper()
	writeSnapshotFile(t, dir, "connections.yaml", `
connections:
  - fabula_uuid: conn-1
    from_event_uuid: event-1
    to_event_uuid: event-ghost
    connection_type: CAUSAL
`)
}

func TestValidateReportsErrorsWithoutFailing(t *testing.T) {
	dir := writeExportDir(t)
	writeDanglingConnection(t, dir)

	out, err := runValidate(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "event-ghost")
	assert.Contains(t, out, "Validation found 1 errors")
}

func TestValidateStrictFailsOnErrors(t *testing.T) {
	dir := writeExportDir(t)
	writeDanglingConnection(t, dir)

	_, err := runValidate(t, "--strict", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateStrictToleratesWarnings(t *testing.T) {
	dir := writeExportDir(t)
	// unknown arc type is a warning, not an error
	writeSnapshotFile(t, dir, "arcs.yaml", "arcs:\n  - fabula_uuid: arc-1\n    title: Re-election\n    arc_type: MYSTERIOUS\n")

	out, err := runValidate(t, "--strict", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot is valid")
}

func TestValidateBoundsDetailOutput(t *testing.T) {
	dir := writeExportDir(t)
	var b strings.Builder
	b.WriteString("characters:\n")
	for i := 0; i < detailLimit+3; i++ {
		fmt.Fprintf(&b, "  - fabula_uuid: char-%02d\n", i)
	}
	writeSnapshotFile(t, dir, "characters.yaml", b.String())

	out, err := runValidate(t, dir)
	require.NoError(t, err)
	assert.Equal(t, detailLimit, strings.Count(out, "missing canonical_name"))
	assert.Contains(t, out, "... and 3 more")
}
