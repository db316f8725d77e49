package snapshot

// Some exports produce duplicate rows for the same entity (join fan-out on
// the export side, e.g. one character row per organization affiliation).
// Duplicates are collapsed before import, keeping the first occurrence. A
// record is a duplicate when either its global_id or its fabula_uuid was
// already seen in the batch; the two identity sets are tracked independently
// so one local row cannot slip through twice under different global ids.

func dedupeRecords[T identified](records []T, category string, dropped map[string]int) []T {
	if len(records) == 0 {
		return records
	}
	seenGlobal := make(map[string]struct{}, len(records))
	seenLocal := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		globalID, localID := rec.identity()
		_, dupGlobal := seenGlobal[globalID]
		_, dupLocal := seenLocal[localID]
		if (globalID != "" && dupGlobal) || (localID != "" && dupLocal) {
			dropped[category]++
			continue
		}
		if globalID != "" {
			seenGlobal[globalID] = struct{}{}
		}
		if localID != "" {
			seenLocal[localID] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}

func (s *Snapshot) dedupe() {
	if s.DuplicatesDropped == nil {
		s.DuplicatesDropped = map[string]int{}
	}
	s.Themes = dedupeRecords(s.Themes, "themes", s.DuplicatesDropped)
	s.Arcs = dedupeRecords(s.Arcs, "arcs", s.DuplicatesDropped)
	s.Locations = dedupeRecords(s.Locations, "locations", s.DuplicatesDropped)
	s.Characters = dedupeRecords(s.Characters, "characters", s.DuplicatesDropped)
	s.Organizations = dedupeRecords(s.Organizations, "organizations", s.DuplicatesDropped)
	s.Objects = dedupeRecords(s.Objects, "objects", s.DuplicatesDropped)
}
