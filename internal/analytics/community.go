package analytics

import (
	"math/rand"
	"sort"
)

// DetectCommunities partitions the graph with Louvain modularity
// optimisation. Node visit order is shuffled with the given seed, so the same
// graph and seed always yield the same partition. Community ids are numbered
// by the smallest character id they contain.
func DetectCommunities(g *Graph, seed int64) map[uint]int {
	n := len(g.Nodes)
	result := make(map[uint]int, n)
	if n == 0 {
		return result
	}

	index := make(map[uint]int, n)
	for i, node := range g.Nodes {
		index[node] = i
	}

	// working graph, rebuilt after each aggregation pass
	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = map[int]float64{}
	}
	for _, a := range g.Nodes {
		for b, weight := range g.Adj[a] {
			adj[index[a]][index[b]] = weight
		}
	}

	// membership[i] is the community of original node i in the current level
	membership := make([]int, n)
	for i := range membership {
		membership[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	for {
		community, improved := localMove(adj, rng)
		if !improved {
			break
		}
		for i := range membership {
			membership[i] = community[membership[i]]
		}
		adj = aggregate(adj, community)
		if len(adj) == len(community) {
			break
		}
	}

	// renumber communities by their smallest member
	smallest := map[int]uint{}
	for i, node := range g.Nodes {
		c := membership[i]
		if current, ok := smallest[c]; !ok || node < current {
			smallest[c] = node
		}
	}
	order := make([]int, 0, len(smallest))
	for c := range smallest {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool { return smallest[order[i]] < smallest[order[j]] })
	renumber := make(map[int]int, len(order))
	for rank, c := range order {
		renumber[c] = rank
	}

	for i, node := range g.Nodes {
		result[node] = renumber[membership[i]]
	}
	return result
}

// localMove runs the first Louvain phase: greedily move nodes between
// communities while modularity improves. Returns the community of each node
// and whether anything moved.
func localMove(adj []map[int]float64, rng *rand.Rand) ([]int, bool) {
	n := len(adj)
	community := make([]int, n)
	degree := make([]float64, n)
	communityWeight := make([]float64, n)
	var total float64
	for i, neighbors := range adj {
		community[i] = i
		for _, j := range sortedNeighbors(neighbors) {
			degree[i] += neighbors[j]
			if j == i {
				degree[i] += neighbors[j] // self loops count twice
			}
		}
		communityWeight[i] = degree[i]
		total += degree[i]
	}
	if total == 0 {
		return community, false
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	improved := false
	for moved := true; moved; {
		moved = false
		for _, i := range order {
			current := community[i]
			communityWeight[current] -= degree[i]

			// weight from i into each neighboring community, summed in
			// sorted neighbor order so runs are reproducible
			linkWeight := map[int]float64{current: 0}
			for _, j := range sortedNeighbors(adj[i]) {
				if j == i {
					continue
				}
				linkWeight[community[j]] += adj[i][j]
			}

			best := current
			bestGain := linkWeight[current] - communityWeight[current]*degree[i]/total
			candidates := make([]int, 0, len(linkWeight))
			for c := range linkWeight {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)
			for _, c := range candidates {
				gain := linkWeight[c] - communityWeight[c]*degree[i]/total
				if gain > bestGain+1e-12 {
					bestGain = gain
					best = c
				}
			}

			communityWeight[best] += degree[i]
			if best != current {
				community[i] = best
				moved = true
				improved = true
			}
		}
	}

	// compact community ids
	compact := map[int]int{}
	for i := range community {
		if _, ok := compact[community[i]]; !ok {
			compact[community[i]] = len(compact)
		}
		community[i] = compact[community[i]]
	}
	return community, improved
}

// aggregate condenses each community into a single node, summing edge
// weights. Intra-community weight becomes a self loop.
func aggregate(adj []map[int]float64, community []int) []map[int]float64 {
	count := 0
	for _, c := range community {
		if c+1 > count {
			count = c + 1
		}
	}
	condensed := make([]map[int]float64, count)
	for i := range condensed {
		condensed[i] = map[int]float64{}
	}
	for i, neighbors := range adj {
		for _, j := range sortedNeighbors(neighbors) {
			w := neighbors[j]
			a, b := community[i], community[j]
			if i == j {
				condensed[a][b] += w
			} else if i < j {
				condensed[a][b] += w
				if a != b {
					condensed[b][a] += w
				}
			}
		}
	}
	return condensed
}

func sortedNeighbors(m map[int]float64) []int {
	out := make([]int, 0, len(m))
	for j := range m {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}
