package importer

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fabulaworks/chronicle/internal/snapshot"
	"github.com/fabulaworks/chronicle/internal/store"
)

// Section kinds created under each series.
var sectionKinds = []struct {
	Kind  string
	Title string
}{
	{"characters", "Characters"},
	{"organizations", "Organizations"},
	{"objects", "Objects"},
	{"events", "Events"},
}

// importSeriesTree imports every series with its seasons, episodes, and
// section containers, and returns the primary series: the one titled
// primaryTitle, or the first one imported.
func (rs *runState) importSeriesTree(records []snapshot.SeriesRecord, primaryTitle string) (*store.Series, error) {
	var primary *store.Series

	for _, rec := range records {
		series, err := rs.importSeries(rec)
		if err != nil {
			return nil, err
		}
		if rec.Title == primaryTitle || primary == nil {
			primary = series
		}
	}
	return primary, nil
}

func (rs *runState) importSeries(rec snapshot.SeriesRecord) (*store.Series, error) {
	var series store.Series
	err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&series).Error
	switch {
	case err == nil:
		series.Title = truncateField(rec.Title, 255)
		series.Description = rec.Description
		if err := rs.tx.Save(&series).Error; err != nil {
			return nil, err
		}
		rs.stats.recordUpdated("Series")
	case errors.Is(err, gorm.ErrRecordNotFound):
		series = store.Series{
			FabulaUUID:  rec.FabulaUUID,
			Title:       truncateField(rec.Title, 255),
			Slug:        slugify(rec.Title),
			Description: rec.Description,
		}
		if err := rs.tx.Create(&series).Error; err != nil {
			return nil, err
		}
		rs.stats.recordCreated("Series")
	default:
		return nil, err
	}

	for _, seasonRec := range rec.Seasons {
		if err := rs.importSeason(seasonRec, &series); err != nil {
			return nil, err
		}
	}

	for _, section := range sectionKinds {
		if err := rs.ensureSectionIndex(&series, section.Kind, section.Title); err != nil {
			return nil, err
		}
	}
	return &series, nil
}

func (rs *runState) importSeason(rec snapshot.SeasonRecord, series *store.Series) error {
	var season store.Season
	err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&season).Error
	switch {
	case err == nil:
		season.SeasonNumber = rec.SeasonNumber
		season.Description = rec.Description
		if err := rs.tx.Save(&season).Error; err != nil {
			return err
		}
		rs.stats.recordUpdated("Season")
	case errors.Is(err, gorm.ErrRecordNotFound):
		season = store.Season{
			FabulaUUID:   rec.FabulaUUID,
			SeriesID:     series.ID,
			SeasonNumber: rec.SeasonNumber,
			Title:        fmt.Sprintf("Season %d", rec.SeasonNumber),
			Slug:         fmt.Sprintf("season-%d", rec.SeasonNumber),
			Description:  rec.Description,
		}
		if err := rs.tx.Create(&season).Error; err != nil {
			return err
		}
		rs.stats.recordCreated("Season")
	default:
		return err
	}

	for _, episodeRec := range rec.Episodes {
		if err := rs.importEpisode(episodeRec, &season); err != nil {
			return err
		}
	}
	return nil
}

func (rs *runState) importEpisode(rec snapshot.EpisodeRecord, season *store.Season) error {
	var episode store.Episode
	err := rs.tx.Where("fabula_uuid = ?", rec.FabulaUUID).First(&episode).Error
	switch {
	case err == nil:
		episode.Title = truncateField(rec.Title, 255)
		episode.EpisodeNumber = rec.EpisodeNumber
		episode.Logline = rec.Logline
		episode.HighLevelSummary = rec.HighLevelSummary
		episode.DominantTone = truncateField(rec.DominantTone, 255)
		if err := rs.tx.Save(&episode).Error; err != nil {
			return err
		}
		rs.stats.recordUpdated("Episode")
	case errors.Is(err, gorm.ErrRecordNotFound):
		episode = store.Episode{
			FabulaUUID:       rec.FabulaUUID,
			SeasonID:         season.ID,
			EpisodeNumber:    rec.EpisodeNumber,
			Title:            truncateField(rec.Title, 255),
			Slug:             slugify(fmt.Sprintf("s%de%d-%s", season.SeasonNumber, rec.EpisodeNumber, rec.Title)),
			Logline:          rec.Logline,
			HighLevelSummary: rec.HighLevelSummary,
			DominantTone:     truncateField(rec.DominantTone, 255),
		}
		if err := rs.tx.Create(&episode).Error; err != nil {
			return err
		}
		rs.stats.recordCreated("Episode")
	default:
		return err
	}

	rs.episodes[rec.FabulaUUID] = &episode
	return nil
}

func (rs *runState) ensureSectionIndex(series *store.Series, kind, title string) error {
	var section store.SectionIndex
	err := rs.tx.Where("series_id = ? AND kind = ?", series.ID, kind).First(&section).Error
	switch {
	case err == nil:
		rs.stats.recordUpdated("SectionIndex")
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		section = store.SectionIndex{
			SeriesID: series.ID,
			Kind:     kind,
			Title:    title,
			Slug:     kind,
		}
		if err := rs.tx.Create(&section).Error; err != nil {
			return err
		}
		rs.stats.recordCreated("SectionIndex")
		return nil
	default:
		return err
	}
}
