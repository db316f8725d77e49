package analytics

import (
	"sort"

	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/store"
)

// Graph is a weighted undirected co-occurrence graph over characters.
// An edge's weight is the number of events the two characters share.
type Graph struct {
	Nodes []uint // sorted character ids
	Adj   map[uint]map[uint]float64
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, neighbors := range g.Adj {
		total += len(neighbors)
	}
	return total / 2
}

// Weight returns the edge weight between a and b, zero when no edge exists.
func (g *Graph) Weight(a, b uint) float64 {
	return g.Adj[a][b]
}

// Neighbors returns a's neighbors in ascending id order, so callers that
// accumulate floats over them get reproducible sums.
func (g *Graph) Neighbors(a uint) []uint {
	out := make([]uint, 0, len(g.Adj[a]))
	for b := range g.Adj[a] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Graph) addEdge(a, b uint, weight float64) {
	if a == b {
		return
	}
	g.Adj[a][b] += weight
	g.Adj[b][a] += weight
}

// BuildCooccurrence loads every character and participation row and links
// characters that appear in the same event. Characters with no participations
// stay in the graph as isolated nodes.
func BuildCooccurrence(db *gorm.DB) (*Graph, error) {
	type idRow struct {
		ID uint
	}
	var characters []idRow
	if err := db.Model(&store.Character{}).Select("id").Order("id").Find(&characters).Error; err != nil {
		return nil, err
	}

	g := &Graph{
		Nodes: make([]uint, 0, len(characters)),
		Adj:   make(map[uint]map[uint]float64, len(characters)),
	}
	for _, c := range characters {
		g.Nodes = append(g.Nodes, c.ID)
		g.Adj[c.ID] = map[uint]float64{}
	}

	type partRow struct {
		EventID     uint
		CharacterID uint
	}
	var participations []partRow
	if err := db.Model(&store.Participation{}).Select("event_id", "character_id").
		Find(&participations).Error; err != nil {
		return nil, err
	}

	byEvent := map[uint][]uint{}
	for _, p := range participations {
		if _, ok := g.Adj[p.CharacterID]; !ok {
			continue
		}
		byEvent[p.EventID] = append(byEvent[p.EventID], p.CharacterID)
	}

	for _, members := range byEvent {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.addEdge(members[i], members[j], 1)
			}
		}
	}
	return g, nil
}
