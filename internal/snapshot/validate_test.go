package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() *Snapshot {
	return &Snapshot{
		Themes:     []ThemeRecord{{FabulaUUID: "theme-1", Name: "Duty"}},
		Arcs:       []ArcRecord{{FabulaUUID: "arc-1", Title: "Re-election", ArcType: "SOCIETAL"}},
		Locations:  []LocationRecord{{FabulaUUID: "loc-1", CanonicalName: "Oval Office"}},
		Characters: []CharacterRecord{{FabulaUUID: "char-1", CanonicalName: "Jed Bartlet"}},
		Events: []EventRecord{{
			FabulaUUID:   "event-1",
			Title:        "Cold open",
			Description:  "The senior staff assembles.",
			LocationUUID: "loc-1",
			ThemeUUIDs:   []string{"theme-1"},
			ArcUUIDs:     []string{"arc-1"},
			Participations: []ParticipationRecord{
				{CharacterUUID: "char-1", EmotionalState: "resolute"},
			},
		}},
		Connections: []ConnectionRecord{{
			FabulaUUID:     "conn-1",
			FromEventUUID:  "event-1",
			ToEventUUID:    "event-1",
			ConnectionType: "CAUSAL",
			Strength:       "strong",
			Description:    "Self loop for testing.",
		}},
	}
}

func totalErrors(results map[string]*CheckResult) int {
	total := 0
	for _, r := range results {
		total += r.Errors
	}
	return total
}

func TestValidateCleanSnapshot(t *testing.T) {
	results := validSnapshot().Validate()
	assert.Equal(t, 0, totalErrors(results))
	for _, name := range CheckNames {
		require.Contains(t, results, name)
	}
}

func TestValidateDanglingReferences(t *testing.T) {
	snap := validSnapshot()
	snap.Events[0].LocationUUID = "loc-missing"
	snap.Events[0].ThemeUUIDs = []string{"theme-missing"}
	snap.Events[0].Participations[0].CharacterUUID = "char-missing"
	snap.Connections[0].ToEventUUID = "event-missing"

	results := snap.Validate()
	assert.Equal(t, 2, results["Events"].Errors)
	assert.Equal(t, 1, results["Participations"].Errors)
	assert.Equal(t, 1, results["Connections"].Errors)
}

func TestValidateMissingRequiredFields(t *testing.T) {
	snap := validSnapshot()
	snap.Characters[0].CanonicalName = ""
	snap.Themes[0].Name = ""
	snap.Connections[0].ConnectionType = ""

	results := snap.Validate()
	assert.Equal(t, 1, results["Characters"].Errors)
	assert.Equal(t, 1, results["Themes"].Errors)
	assert.Equal(t, 1, results["Connections"].Errors)
}

func TestValidateUnknownEnumsAreWarnings(t *testing.T) {
	snap := validSnapshot()
	snap.Arcs[0].ArcType = "COSMIC"
	snap.Connections[0].ConnectionType = "VIBES"
	snap.Connections[0].Strength = "overwhelming"

	results := snap.Validate()
	assert.Equal(t, 0, totalErrors(results))
	assert.Equal(t, 1, results["Arcs"].Warnings)
	assert.Equal(t, 2, results["Connections"].Warnings)
}

func TestAnalyzeRichness(t *testing.T) {
	snap := validSnapshot()
	snap.Events[0].Participations = []ParticipationRecord{
		{CharacterUUID: "char-1", EmotionalState: "resolute"},
		{CharacterUUID: "char-1", Goals: []string{"pass the bill"}},
		{CharacterUUID: "char-1", WhatHappened: "observed from the doorway"},
		{CharacterUUID: "char-1"},
	}

	report := snap.AnalyzeRichness()
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Rich)
	assert.Equal(t, 2, report.Sparse)
	assert.InDelta(t, 50.0, report.RichPercentage, 0.001)
	assert.Equal(t, 1, report.FieldCoverage["emotional_state"].Count)
	assert.Equal(t, 1, report.FieldCoverage["goals"].Count)
	assert.Equal(t, 1, report.FieldCoverage["what_happened"].Count)
	assert.Equal(t, 0, report.FieldCoverage["beliefs"].Count)
}

func TestAnalyzeRichnessEmpty(t *testing.T) {
	report := (&Snapshot{}).AnalyzeRichness()
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0.0, report.RichPercentage)
}
