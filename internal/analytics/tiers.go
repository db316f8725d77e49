package analytics

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/config"
	"github.com/fabulaworks/chronicle/internal/store"
)

// Importance tiers, from most to least central.
const (
	TierAnchor   = "anchor"
	TierPlanet   = "planet"
	TierAsteroid = "asteroid"
)

var tierRank = map[string]int{
	TierAsteroid: 0,
	TierPlanet:   1,
	TierAnchor:   2,
}

// TierStats summarises a tier computation run.
type TierStats struct {
	Total     int
	Anchors   int
	Planets   int
	Asteroids int
	Promoted  int
	Demoted   int
	Unchanged int
}

// characterCounts holds the activity counters a tier is derived from.
type characterCounts struct {
	Appearances   int
	Episodes      int
	Relationships int
}

// classifyTier maps activity counters to a tier. A character anchors the
// story when it clears either anchor threshold; the planet thresholds work
// the same way one level down.
func classifyTier(cfg config.TierConfig, counts characterCounts) string {
	switch {
	case counts.Episodes >= cfg.AnchorMinEpisodes || counts.Relationships >= cfg.AnchorMinRelationships:
		return TierAnchor
	case counts.Episodes >= cfg.PlanetMinEpisodes || counts.Relationships >= cfg.PlanetMinRelationships:
		return TierPlanet
	default:
		return TierAsteroid
	}
}

// ComputeTiers recomputes appearance, episode, and relationship counts for
// every character and assigns importance tiers from them. With dryRun the
// database is left untouched and only the stats are returned.
func ComputeTiers(ctx context.Context, db *gorm.DB, cfg config.TierConfig, log *logrus.Logger, dryRun bool) (*TierStats, error) {
	db = db.WithContext(ctx)

	type characterRow struct {
		ID             uint
		CanonicalName  string
		ImportanceTier string
	}
	var characters []characterRow
	if err := db.Model(&store.Character{}).
		Select("id", "canonical_name", "importance_tier").Order("id").
		Find(&characters).Error; err != nil {
		return nil, err
	}

	type eventRow struct {
		ID        uint
		EpisodeID uint
	}
	var events []eventRow
	if err := db.Model(&store.Event{}).Select("id", "episode_id").Find(&events).Error; err != nil {
		return nil, err
	}
	episodeByEvent := make(map[uint]uint, len(events))
	for _, e := range events {
		episodeByEvent[e.ID] = e.EpisodeID
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

	appearances := map[uint]int{}
	episodes := map[uint]map[uint]struct{}{}
	castByEvent := map[uint][]uint{}
	for _, p := range participations {
		appearances[p.CharacterID]++
		if episodeID, ok := episodeByEvent[p.EventID]; ok {
			if episodes[p.CharacterID] == nil {
				episodes[p.CharacterID] = map[uint]struct{}{}
			}
			episodes[p.CharacterID][episodeID] = struct{}{}
		}
		castByEvent[p.EventID] = append(castByEvent[p.EventID], p.CharacterID)
	}

	relationships := map[uint]map[uint]struct{}{}
	for _, cast := range castByEvent {
		for _, a := range cast {
			for _, b := range cast {
				if a == b {
					continue
				}
				if relationships[a] == nil {
					relationships[a] = map[uint]struct{}{}
				}
				relationships[a][b] = struct{}{}
			}
		}
	}

	stats := &TierStats{Total: len(characters)}
	for _, c := range characters {
		counts := characterCounts{
			Appearances:   appearances[c.ID],
			Episodes:      len(episodes[c.ID]),
			Relationships: len(relationships[c.ID]),
		}
		tier := classifyTier(cfg, counts)

		switch tier {
		case TierAnchor:
			stats.Anchors++
		case TierPlanet:
			stats.Planets++
		default:
			stats.Asteroids++
		}

		previous := c.ImportanceTier
		if previous == "" {
			previous = TierAsteroid
		}
		switch {
		case tierRank[tier] > tierRank[previous]:
			stats.Promoted++
			log.WithFields(logrus.Fields{"character": c.CanonicalName, "from": previous, "to": tier}).
				Debug("tier promoted")
		case tierRank[tier] < tierRank[previous]:
			stats.Demoted++
			log.WithFields(logrus.Fields{"character": c.CanonicalName, "from": previous, "to": tier}).
				Debug("tier demoted")
		default:
			stats.Unchanged++
		}

		if dryRun {
			continue
		}
		err := db.Model(&store.Character{}).Where("id = ?", c.ID).Updates(map[string]any{
			"appearance_count":   counts.Appearances,
			"episode_count":      counts.Episodes,
			"relationship_count": counts.Relationships,
			"importance_tier":    tier,
		}).Error
		if err != nil {
			return stats, err
		}
	}

	log.WithFields(logrus.Fields{
		"total":     stats.Total,
		"anchors":   stats.Anchors,
		"planets":   stats.Planets,
		"asteroids": stats.Asteroids,
		"promoted":  stats.Promoted,
		"demoted":   stats.Demoted,
		"dry_run":   dryRun,
	}).Info("tier computation complete")
	return stats, nil
}
