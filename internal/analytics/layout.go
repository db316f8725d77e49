package analytics

import (
	"context"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/config"
	"github.com/fabulaworks/chronicle/internal/store"
)

// Position is a point in the 3D layout space.
type Position [3]float64

// LayoutStats summarises a layout run.
type LayoutStats struct {
	Nodes       int
	Edges       int
	Communities int
	Updated     int
}

// SpringLayout places the graph's nodes in 3D with a force-directed
// (Fruchterman-Reingold) layout. Heavier edges pull harder, so tightly
// connected characters cluster together. The same seed always produces the
// same layout.
func SpringLayout(g *Graph, iterations int, seed int64) map[uint]Position {
	n := len(g.Nodes)
	pos := make(map[uint]Position, n)
	if n == 0 {
		return pos
	}

	rng := rand.New(rand.NewSource(seed))
	points := make([]Position, n)
	index := make(map[uint]int, n)
	for i, node := range g.Nodes {
		index[node] = i
		points[i] = Position{rng.Float64(), rng.Float64(), rng.Float64()}
	}
	if n == 1 {
		pos[g.Nodes[0]] = Position{}
		return pos
	}

	// optimal pairwise distance in the unit cube
	k := 1.0 / math.Sqrt(float64(n))
	temperature := 0.1
	cooling := temperature / float64(iterations+1)

	disp := make([]Position, n)
	for iter := 0; iter < iterations; iter++ {
		for i := range disp {
			disp[i] = Position{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				delta, dist := difference(points[i], points[j])
				repulse := k * k / dist
				for axis := 0; axis < 3; axis++ {
					push := delta[axis] / dist * repulse
					disp[i][axis] += push
					disp[j][axis] -= push
				}
			}
		}

		for _, a := range g.Nodes {
			i := index[a]
			for _, b := range g.Neighbors(a) {
				j := index[b]
				if j <= i {
					continue
				}
				delta, dist := difference(points[i], points[j])
				attract := g.Adj[a][b] * dist * dist / k
				for axis := 0; axis < 3; axis++ {
					pull := delta[axis] / dist * attract
					disp[i][axis] -= pull
					disp[j][axis] += pull
				}
			}
		}

		for i := 0; i < n; i++ {
			length := math.Sqrt(disp[i][0]*disp[i][0] + disp[i][1]*disp[i][1] + disp[i][2]*disp[i][2])
			if length < 1e-9 {
				continue
			}
			step := math.Min(length, temperature)
			for axis := 0; axis < 3; axis++ {
				points[i][axis] += disp[i][axis] / length * step
			}
		}
		temperature -= cooling
	}

	for node, i := range index {
		pos[node] = points[i]
	}
	return pos
}

func difference(a, b Position) (Position, float64) {
	delta := Position{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
	dist := math.Sqrt(delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2])
	if dist < 1e-9 {
		dist = 1e-9
	}
	return delta, dist
}

// Rescale maps each axis independently onto [-scale, scale]. An axis with no
// variance collapses to zero.
func Rescale(positions map[uint]Position, scale float64) {
	if len(positions) == 0 {
		return
	}
	for axis := 0; axis < 3; axis++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for _, p := range positions {
			minVal = math.Min(minVal, p[axis])
			maxVal = math.Max(maxVal, p[axis])
		}
		span := maxVal - minVal
		for node, p := range positions {
			if span <= 1e-10 {
				p[axis] = 0
			} else {
				p[axis] = 2*scale*(p[axis]-minVal)/span - scale
			}
			positions[node] = p
		}
	}
}

// ComputeLayout builds the co-occurrence graph, lays it out, and stores the
// coordinates on each character. When detectCommunities is set, community ids
// are assigned in the same pass.
func ComputeLayout(ctx context.Context, db *gorm.DB, cfg config.LayoutConfig, log *logrus.Logger, detectCommunities, dryRun bool) (*LayoutStats, error) {
	db = db.WithContext(ctx)

	g, err := BuildCooccurrence(db)
	if err != nil {
		return nil, err
	}
	stats := &LayoutStats{Nodes: len(g.Nodes), Edges: g.EdgeCount()}
	log.WithFields(logrus.Fields{"nodes": stats.Nodes, "edges": stats.Edges}).
		Info("built co-occurrence graph")
	if stats.Nodes == 0 {
		return stats, nil
	}

	positions := SpringLayout(g, cfg.Iterations, cfg.Seed)
	Rescale(positions, cfg.Scale)

	var communities map[uint]int
	if detectCommunities {
		communities = DetectCommunities(g, cfg.Seed)
		seen := map[int]struct{}{}
		for _, id := range communities {
			seen[id] = struct{}{}
		}
		stats.Communities = len(seen)
		log.WithField("communities", stats.Communities).Info("detected communities")
	}

	for _, node := range g.Nodes {
		p := positions[node]
		updates := map[string]any{
			"graph_x": p[0],
			"graph_y": p[1],
			"graph_z": p[2],
		}
		if detectCommunities {
			community := communities[node]
			updates["graph_community"] = &community
		}
		if !dryRun {
			if err := db.Model(&store.Character{}).Where("id = ?", node).
				Updates(updates).Error; err != nil {
				return stats, err
			}
		}
		stats.Updated++
	}

	log.WithFields(logrus.Fields{"updated": stats.Updated, "dry_run": dryRun}).
		Info("layout complete")
	return stats, nil
}
