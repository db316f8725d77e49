package importer

import (
	"fmt"
	"sort"
	"strings"
)

// Stats tracks what one import run did, per model.
type Stats struct {
	Created            map[string]int
	Updated            map[string]int
	CrossSeasonMatched map[string]int
	Errors             []string
}

func NewStats() *Stats {
	return &Stats{
		Created:            map[string]int{},
		Updated:            map[string]int{},
		CrossSeasonMatched: map[string]int{},
	}
}

func (s *Stats) recordCreated(model string) { s.Created[model]++ }
func (s *Stats) recordUpdated(model string) { s.Updated[model]++ }

// recordCrossSeasonMatch counts an entity matched to a prior season through
// its global_id rather than its season-local uuid.
func (s *Stats) recordCrossSeasonMatch(model string) { s.CrossSeasonMatched[model]++ }

func (s *Stats) recordError(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary renders the run report.
func (s *Stats) Summary() string {
	var b strings.Builder
	b.WriteString("=== Import Summary ===\n")

	if len(s.Created) > 0 {
		b.WriteString("\nCreated:\n")
		for _, model := range sortedKeys(s.Created) {
			fmt.Fprintf(&b, "  %s: %d\n", model, s.Created[model])
		}
	}
	if len(s.Updated) > 0 {
		b.WriteString("\nUpdated:\n")
		for _, model := range sortedKeys(s.Updated) {
			fmt.Fprintf(&b, "  %s: %d\n", model, s.Updated[model])
		}
	}
	if len(s.CrossSeasonMatched) > 0 {
		b.WriteString("\nCross-Season Matched:\n")
		for _, model := range sortedKeys(s.CrossSeasonMatched) {
			fmt.Fprintf(&b, "  %s: %d\n", model, s.CrossSeasonMatched[model])
		}
	}
	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors: %d\n", len(s.Errors))
		shown := s.Errors
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, e := range shown {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		if len(s.Errors) > 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(s.Errors)-10)
		}
	}
	return b.String()
}
