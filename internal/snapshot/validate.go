package snapshot

import "fmt"

// Valid enum values carried over from the export contract. Unknown values are
// warnings, not errors, so a newer export still imports.
var (
	validArcTypes = map[string]struct{}{
		"INTERNAL": {}, "INTERPERSONAL": {}, "SOCIETAL": {},
		"ENVIRONMENTAL": {}, "TECHNOLOGICAL": {},
	}
	validConnectionTypes = map[string]struct{}{
		"CAUSAL": {}, "FORESHADOWING": {}, "THEMATIC_PARALLEL": {},
		"CHARACTER_CONTINUITY": {}, "ESCALATION": {}, "CALLBACK": {},
		"EMOTIONAL_ECHO": {}, "SYMBOLIC_PARALLEL": {}, "TEMPORAL": {},
		"NARRATIVELY_FOLLOWS": {},
	}
	validStrengths = map[string]struct{}{
		"strong": {}, "medium": {}, "weak": {},
	}
)

// CheckResult holds the outcome of one validation check.
type CheckResult struct {
	Errors   int
	Warnings int
	Details  []string
}

func (r *CheckResult) errorf(format string, args ...any) {
	r.Errors++
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

func (r *CheckResult) warnf(format string, args ...any) {
	r.Warnings++
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// CheckNames lists validation checks in report order.
var CheckNames = []string{
	"Characters", "Locations", "Themes", "Arcs", "Events", "Participations", "Connections",
}

// Validate runs referential-integrity and completeness checks over a loaded
// snapshot. Missing required fields and dangling references are errors;
// unknown enum values and missing descriptions are warnings.
func (s *Snapshot) Validate() map[string]*CheckResult {
	locationUUIDs := uuidSet(len(s.Locations))
	for _, l := range s.Locations {
		locationUUIDs.add(l.FabulaUUID)
	}
	themeUUIDs := uuidSet(len(s.Themes))
	for _, t := range s.Themes {
		themeUUIDs.add(t.FabulaUUID)
	}
	arcUUIDs := uuidSet(len(s.Arcs))
	for _, a := range s.Arcs {
		arcUUIDs.add(a.FabulaUUID)
	}
	characterUUIDs := uuidSet(len(s.Characters))
	for _, c := range s.Characters {
		characterUUIDs.add(c.FabulaUUID)
	}
	eventUUIDs := uuidSet(len(s.Events))
	for _, e := range s.Events {
		eventUUIDs.add(e.FabulaUUID)
	}

	return map[string]*CheckResult{
		"Characters":     s.validateCharacters(),
		"Locations":      s.validateLocations(),
		"Themes":         s.validateThemes(),
		"Arcs":           s.validateArcs(),
		"Events":         s.validateEvents(locationUUIDs, themeUUIDs, arcUUIDs),
		"Participations": s.validateParticipations(characterUUIDs),
		"Connections":    s.validateConnections(eventUUIDs),
	}
}

type stringSet map[string]struct{}

func uuidSet(size int) stringSet { return make(stringSet, size) }

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s *Snapshot) validateCharacters() *CheckResult {
	res := &CheckResult{}
	for _, c := range s.Characters {
		if c.FabulaUUID == "" {
			res.errorf("Character missing fabula_uuid")
		}
		if c.CanonicalName == "" {
			res.errorf("Character %s missing canonical_name", c.FabulaUUID)
		}
	}
	return res
}

func (s *Snapshot) validateLocations() *CheckResult {
	res := &CheckResult{}
	for _, l := range s.Locations {
		if l.FabulaUUID == "" {
			res.errorf("Location missing fabula_uuid")
		}
		if l.CanonicalName == "" {
			res.errorf("Location %s missing canonical_name", l.FabulaUUID)
		}
	}
	return res
}

func (s *Snapshot) validateThemes() *CheckResult {
	res := &CheckResult{}
	for _, t := range s.Themes {
		if t.FabulaUUID == "" {
			res.errorf("Theme missing fabula_uuid")
		}
		if t.Name == "" {
			res.errorf("Theme %s missing name", t.FabulaUUID)
		}
	}
	return res
}

func (s *Snapshot) validateArcs() *CheckResult {
	res := &CheckResult{}
	for _, a := range s.Arcs {
		if a.FabulaUUID == "" {
			res.errorf("Arc missing fabula_uuid")
		}
		if a.Title == "" && a.Description == "" {
			res.errorf("Arc %s missing title/description", a.FabulaUUID)
		}
		if a.ArcType != "" {
			if _, ok := validArcTypes[a.ArcType]; !ok {
				res.warnf("Arc %s has unknown type: %s", a.FabulaUUID, a.ArcType)
			}
		}
	}
	return res
}

func (s *Snapshot) validateEvents(locations, themes, arcs stringSet) *CheckResult {
	res := &CheckResult{}
	for _, e := range s.Events {
		if e.FabulaUUID == "" {
			res.errorf("Event missing fabula_uuid")
			continue
		}
		if e.Title == "" {
			res.warnf("Event %s missing title", e.FabulaUUID)
		}
		if e.Description == "" {
			res.warnf("Event %s missing description", e.FabulaUUID)
		}
		if e.LocationUUID != "" && !locations.has(e.LocationUUID) {
			res.errorf("Event %s references unknown location: %s", e.FabulaUUID, e.LocationUUID)
		}
		for _, themeUUID := range e.ThemeUUIDs {
			if !themes.has(themeUUID) {
				res.errorf("Event %s references unknown theme: %s", e.FabulaUUID, themeUUID)
			}
		}
		for _, arcUUID := range e.ArcUUIDs {
			if !arcs.has(arcUUID) {
				res.errorf("Event %s references unknown arc: %s", e.FabulaUUID, arcUUID)
			}
		}
	}
	return res
}

func (s *Snapshot) validateParticipations(characters stringSet) *CheckResult {
	res := &CheckResult{}
	for _, e := range s.Events {
		for _, p := range e.Participations {
			if p.CharacterUUID == "" {
				res.errorf("Event %s: participation missing character_uuid", e.FabulaUUID)
				continue
			}
			if !characters.has(p.CharacterUUID) {
				res.errorf("Event %s: unknown character %s", e.FabulaUUID, p.CharacterUUID)
			}
		}
	}
	return res
}

func (s *Snapshot) validateConnections(events stringSet) *CheckResult {
	res := &CheckResult{}
	for _, c := range s.Connections {
		uuid := c.FabulaUUID
		if uuid == "" {
			uuid = "unknown"
		}

		if c.FromEventUUID == "" {
			res.errorf("Connection %s missing from_event_uuid", uuid)
		} else if !events.has(c.FromEventUUID) {
			res.errorf("Connection %s from unknown event: %s", uuid, c.FromEventUUID)
		}

		if c.ToEventUUID == "" {
			res.errorf("Connection %s missing to_event_uuid", uuid)
		} else if !events.has(c.ToEventUUID) {
			res.errorf("Connection %s to unknown event: %s", uuid, c.ToEventUUID)
		}

		if c.ConnectionType == "" {
			res.errorf("Connection %s missing connection_type", uuid)
		} else if _, ok := validConnectionTypes[c.ConnectionType]; !ok {
			res.warnf("Connection %s has unknown type: %s", uuid, c.ConnectionType)
		}

		if c.Strength != "" {
			if _, ok := validStrengths[c.Strength]; !ok {
				res.warnf("Connection %s has unknown strength: %s", uuid, c.Strength)
			}
		}

		if c.Description == "" {
			res.warnf("Connection %s missing description", uuid)
		}
	}
	return res
}

// FieldCoverage reports how often one participation field is populated.
type FieldCoverage struct {
	Count      int
	Percentage float64
}

// RichnessReport summarizes how much narrative detail participations carry.
// A participation is rich when it records an emotional state or at least one
// goal.
type RichnessReport struct {
	Total          int
	Rich           int
	Sparse         int
	RichPercentage float64
	FieldCoverage  map[string]FieldCoverage
}

// RichnessFields lists participation fields in report order.
var RichnessFields = []string{
	"emotional_state", "goals", "what_happened", "observed_status", "beliefs", "observed_traits",
}

func (s *Snapshot) AnalyzeRichness() RichnessReport {
	total := 0
	rich := 0
	counts := map[string]int{}

	for _, e := range s.Events {
		for _, p := range e.Participations {
			total++
			if p.EmotionalState != "" {
				counts["emotional_state"]++
			}
			if len(p.Goals) > 0 {
				counts["goals"]++
			}
			if p.WhatHappened != "" {
				counts["what_happened"]++
			}
			if p.ObservedStatus != "" {
				counts["observed_status"]++
			}
			if len(p.Beliefs) > 0 {
				counts["beliefs"]++
			}
			if len(p.ObservedTraits) > 0 {
				counts["observed_traits"]++
			}
			if p.EmotionalState != "" || len(p.Goals) > 0 {
				rich++
			}
		}
	}

	coverage := make(map[string]FieldCoverage, len(RichnessFields))
	for _, field := range RichnessFields {
		fc := FieldCoverage{Count: counts[field]}
		if total > 0 {
			fc.Percentage = float64(counts[field]) / float64(total) * 100
		}
		coverage[field] = fc
	}

	report := RichnessReport{
		Total:         total,
		Rich:          rich,
		Sparse:        total - rich,
		FieldCoverage: coverage,
	}
	if total > 0 {
		report.RichPercentage = float64(rich) / float64(total) * 100
	}
	return report
}
