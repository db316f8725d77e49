package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCliques builds two tight 4-node cliques joined by a single weak bridge.
func twoCliques() *Graph {
	g := &Graph{Adj: map[uint]map[uint]float64{}}
	for id := uint(1); id <= 8; id++ {
		g.Nodes = append(g.Nodes, id)
		g.Adj[id] = map[uint]float64{}
	}
	clique := func(members []uint) {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.addEdge(members[i], members[j], 5)
			}
		}
	}
	clique([]uint{1, 2, 3, 4})
	clique([]uint{5, 6, 7, 8})
	g.addEdge(4, 5, 1)
	return g
}

func TestDetectCommunitiesSplitsCliques(t *testing.T) {
	g := twoCliques()
	communities := DetectCommunities(g, 42)
	require.Len(t, communities, 8)

	first := communities[1]
	for _, id := range []uint{2, 3, 4} {
		assert.Equal(t, first, communities[id], "node %d", id)
	}
	second := communities[5]
	for _, id := range []uint{6, 7, 8} {
		assert.Equal(t, second, communities[id], "node %d", id)
	}
	assert.NotEqual(t, first, second)

	// ids are numbered by smallest member
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestDetectCommunitiesDeterministic(t *testing.T) {
	g := twoCliques()
	first := DetectCommunities(g, 42)
	second := DetectCommunities(g, 42)
	assert.Equal(t, first, second)
}

func TestDetectCommunitiesIsolatedNodes(t *testing.T) {
	g := &Graph{
		Nodes: []uint{10, 20},
		Adj:   map[uint]map[uint]float64{10: {}, 20: {}},
	}
	communities := DetectCommunities(g, 42)
	assert.Equal(t, map[uint]int{10: 0, 20: 1}, communities)
}

func TestDetectCommunitiesEmptyGraph(t *testing.T) {
	g := &Graph{Adj: map[uint]map[uint]float64{}}
	assert.Empty(t, DetectCommunities(g, 42))
}
