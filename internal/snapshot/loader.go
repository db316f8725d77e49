package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// MissingSourceError reports a required snapshot file that is absent from the
// export directory.
type MissingSourceError struct {
	Path string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("required snapshot file not found: %s", e.Path)
}

// Load reads a full export directory into a Snapshot. Entity lists are
// accepted both bare ([...]) and wrapped ({themes: [...]}), legacy per-type
// uuid keys are folded into fabula_uuid, and in-batch duplicates are dropped
// keeping the first occurrence. organizations.yaml and objects.yaml are
// optional; everything else is required.
func Load(dir string) (*Snapshot, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("snapshot directory does not exist: %s", dir)
	}

	snap := &Snapshot{Dir: dir, DuplicatesDropped: map[string]int{}}

	if err := readYAML(filepath.Join(dir, "manifest.yaml"), &snap.Manifest, true); err != nil {
		return nil, err
	}

	series, err := loadSeries(filepath.Join(dir, "series.yaml"))
	if err != nil {
		return nil, err
	}
	snap.Series = series

	if snap.Themes, err = loadList[ThemeRecord](filepath.Join(dir, "themes.yaml"), "themes", true); err != nil {
		return nil, err
	}
	if snap.Arcs, err = loadList[ArcRecord](filepath.Join(dir, "arcs.yaml"), "arcs", true); err != nil {
		return nil, err
	}
	if snap.Locations, err = loadList[LocationRecord](filepath.Join(dir, "locations.yaml"), "locations", true); err != nil {
		return nil, err
	}
	if snap.Characters, err = loadList[CharacterRecord](filepath.Join(dir, "characters.yaml"), "characters", true); err != nil {
		return nil, err
	}
	if snap.Organizations, err = loadList[OrganizationRecord](filepath.Join(dir, "organizations.yaml"), "organizations", false); err != nil {
		return nil, err
	}
	if snap.Objects, err = loadList[ObjectRecord](filepath.Join(dir, "objects.yaml"), "objects", false); err != nil {
		return nil, err
	}
	if snap.Connections, err = loadList[ConnectionRecord](filepath.Join(dir, "connections.yaml"), "connections", true); err != nil {
		return nil, err
	}
	if snap.Events, err = loadEvents(filepath.Join(dir, "events")); err != nil {
		return nil, err
	}

	for i := range snap.Series {
		snap.Series[i].normalize()
	}
	for i := range snap.Themes {
		snap.Themes[i].normalize()
	}
	for i := range snap.Arcs {
		snap.Arcs[i].normalize()
	}
	for i := range snap.Locations {
		snap.Locations[i].normalize()
	}
	for i := range snap.Characters {
		snap.Characters[i].normalize()
	}
	for i := range snap.Organizations {
		snap.Organizations[i].normalize()
	}
	for i := range snap.Objects {
		snap.Objects[i].normalize()
	}
	for i := range snap.Connections {
		snap.Connections[i].normalize()
	}

	snap.dedupe()
	return snap, nil
}

func readYAML(path string, out any, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return &MissingSourceError{Path: path}
			}
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadList decodes a file that holds a list of records either bare or wrapped
// under the given key.
func loadList[T any](path, wrapperKey string, required bool) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return nil, &MissingSourceError{Path: path}
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := decodeList[T](data, wrapperKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}

func decodeList[T any](data []byte, wrapperKey string) ([]T, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var out []T
		if err := doc.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value == wrapperKey {
				var out []T
				if err := doc.Content[i+1].Decode(&out); err != nil {
					return nil, err
				}
				return out, nil
			}
		}
		return nil, fmt.Errorf("expected a list or a mapping with key '%s'", wrapperKey)
	default:
		return nil, fmt.Errorf("expected a list or a mapping with key '%s'", wrapperKey)
	}
}

// loadSeries accepts a single series document, a bare list of series, or a
// list wrapped under a 'series' key.
func loadSeries(path string) ([]SeriesRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingSourceError{Path: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var out []SeriesRecord
		if err := doc.Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return out, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value == "series" && doc.Content[i+1].Kind == yaml.SequenceNode {
				var out []SeriesRecord
				if err := doc.Content[i+1].Decode(&out); err != nil {
					return nil, fmt.Errorf("failed to parse %s: %w", path, err)
				}
				return out, nil
			}
		}
		var single SeriesRecord
		if err := doc.Decode(&single); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return []SeriesRecord{single}, nil
	default:
		return nil, fmt.Errorf("failed to parse %s: unexpected document shape", path)
	}
}

// loadEvents reads every events/*.yaml shard in name order, flattening each
// shard's event list. Events missing an episode_uuid inherit the shard's.
func loadEvents(dir string) ([]EventRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingSourceError{Path: dir}
		}
		return nil, fmt.Errorf("failed to read events directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var events []EventRecord
	for _, name := range names {
		path := filepath.Join(dir, name)
		var shard episodeEventsFile
		if err := readYAML(path, &shard, true); err != nil {
			return nil, err
		}
		for i := range shard.Events {
			shard.Events[i].normalize(shard.EpisodeUUID)
		}
		events = append(events, shard.Events...)
	}
	return events, nil
}
