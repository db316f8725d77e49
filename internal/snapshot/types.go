package snapshot

// Record types for one loaded snapshot. The loader normalizes every file shape
// into these structs up front; nothing downstream re-examines raw YAML.
//
// Every entity record carries a season-local fabula_uuid (the import's natural
// key) and an optional global_id assigned by the cross-season identity store.
// Older exports used per-type uuid keys (theme_uuid, agent_uuid, ...); those
// are accepted as fallbacks and folded into FabulaUUID at load time.

type Manifest struct {
	FabulaVersion  string `yaml:"fabula_version"`
	ExportDate     string `yaml:"export_date"`
	SourceDatabase string `yaml:"source_database"`
	GERDatabase    string `yaml:"ger_database"`
	GEREnabled     bool   `yaml:"ger_enabled"`
	SeriesCount    int    `yaml:"series_count"`
	SeasonCount    int    `yaml:"season_count"`
	EpisodeCount   int    `yaml:"episode_count"`
	EventCount     int    `yaml:"event_count"`
	CharacterCount int    `yaml:"character_count"`
	Notes          string `yaml:"notes"`
}

type SeriesRecord struct {
	FabulaUUID  string         `yaml:"fabula_uuid"`
	LegacyUUID  string         `yaml:"series_uuid"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Seasons     []SeasonRecord `yaml:"seasons"`
}

type SeasonRecord struct {
	FabulaUUID   string          `yaml:"fabula_uuid"`
	LegacyUUID   string          `yaml:"season_uuid"`
	SeasonNumber int             `yaml:"season_number"`
	Description  string          `yaml:"description"`
	Episodes     []EpisodeRecord `yaml:"episodes"`
}

type EpisodeRecord struct {
	FabulaUUID       string `yaml:"fabula_uuid"`
	LegacyUUID       string `yaml:"episode_uuid"`
	EpisodeNumber    int    `yaml:"episode_number"`
	Title            string `yaml:"title"`
	Logline          string `yaml:"logline"`
	HighLevelSummary string `yaml:"high_level_summary"`
	DominantTone     string `yaml:"dominant_tone"`
}

type ThemeRecord struct {
	FabulaUUID  string `yaml:"fabula_uuid"`
	LegacyUUID  string `yaml:"theme_uuid"`
	GlobalID    string `yaml:"global_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ArcRecord struct {
	FabulaUUID  string `yaml:"fabula_uuid"`
	LegacyUUID  string `yaml:"arc_uuid"`
	GlobalID    string `yaml:"global_id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ArcType     string `yaml:"arc_type"`
}

type LocationRecord struct {
	FabulaUUID         string `yaml:"fabula_uuid"`
	LegacyUUID         string `yaml:"location_uuid"`
	GlobalID           string `yaml:"global_id"`
	CanonicalName      string `yaml:"canonical_name"`
	Description        string `yaml:"description"`
	LocationType       string `yaml:"location_type"`
	ParentLocationUUID string `yaml:"parent_location_uuid"`
}

type CharacterRecord struct {
	FabulaUUID                 string   `yaml:"fabula_uuid"`
	LegacyUUID                 string   `yaml:"agent_uuid"`
	GlobalID                   string   `yaml:"global_id"`
	CanonicalName              string   `yaml:"canonical_name"`
	TitleRole                  string   `yaml:"title_role"`
	Description                string   `yaml:"description"`
	Traits                     []string `yaml:"traits"`
	Aliases                    []string `yaml:"aliases"`
	Nicknames                  []string `yaml:"nicknames"`
	CharacterType              string   `yaml:"character_type"`
	SphereOfInfluence          string   `yaml:"sphere_of_influence"`
	AppearanceCount            int      `yaml:"appearance_count"`
	AffiliatedOrganizationUUID string   `yaml:"affiliated_organization_uuid"`
}

type OrganizationRecord struct {
	FabulaUUID        string `yaml:"fabula_uuid"`
	LegacyUUID        string `yaml:"org_uuid"`
	GlobalID          string `yaml:"global_id"`
	CanonicalName     string `yaml:"canonical_name"`
	Description       string `yaml:"description"`
	SphereOfInfluence string `yaml:"sphere_of_influence"`
}

type ObjectRecord struct {
	FabulaUUID            string `yaml:"fabula_uuid"`
	LegacyUUID            string `yaml:"object_uuid"`
	GlobalID              string `yaml:"global_id"`
	CanonicalName         string `yaml:"canonical_name"`
	Description           string `yaml:"description"`
	Purpose               string `yaml:"purpose"`
	Significance          string `yaml:"significance"`
	OwnerCharacterUUID    string `yaml:"potential_owner_uuid"`
	OwnerOrganizationUUID string `yaml:"owner_organization_uuid"`
}

type ParticipationRecord struct {
	CharacterUUID  string   `yaml:"character_uuid"`
	LegacyUUID     string   `yaml:"agent_uuid"`
	EmotionalState string   `yaml:"emotional_state"`
	Goals          []string `yaml:"goals"`
	WhatHappened   string   `yaml:"what_happened"`
	ObservedStatus string   `yaml:"observed_status"`
	Beliefs        []string `yaml:"beliefs"`
	ObservedTraits []string `yaml:"observed_traits"`
	Importance     string   `yaml:"importance"`
}

type ObjectInvolvementRecord struct {
	ObjectUUID               string `yaml:"object_uuid"`
	DescriptionOfInvolvement string `yaml:"description_of_involvement"`
	StatusBeforeEvent        string `yaml:"status_before_event"`
	StatusAfterEvent         string `yaml:"status_after_event"`
}

type LocationInvolvementRecord struct {
	LocationUUID             string   `yaml:"location_uuid"`
	DescriptionOfInvolvement string   `yaml:"description_of_involvement"`
	ObservedAtmosphere       string   `yaml:"observed_atmosphere"`
	FunctionalRole           string   `yaml:"functional_role"`
	SymbolicSignificance     string   `yaml:"symbolic_significance"`
	AccessRestrictions       string   `yaml:"access_restrictions"`
	KeyEnvironmentalDetails  []string `yaml:"key_environmental_details"`
}

type OrganizationInvolvementRecord struct {
	OrganizationUUID         string   `yaml:"organization_uuid"`
	DescriptionOfInvolvement string   `yaml:"description_of_involvement"`
	ActiveRepresentation     string   `yaml:"active_representation"`
	PowerDynamics            string   `yaml:"power_dynamics"`
	OrganizationalGoals      []string `yaml:"organizational_goals"`
	InfluenceMechanisms      []string `yaml:"influence_mechanisms"`
	InstitutionalImpact      string   `yaml:"institutional_impact"`
	InternalDynamics         string   `yaml:"internal_dynamics"`
}

type EventRecord struct {
	FabulaUUID               string                          `yaml:"fabula_uuid"`
	LegacyUUID               string                          `yaml:"event_uuid"`
	EpisodeUUID              string                          `yaml:"episode_uuid"`
	Title                    string                          `yaml:"title"`
	SceneSequence            int                             `yaml:"scene_sequence"`
	SequenceInScene          int                             `yaml:"sequence_in_scene"`
	Description              string                          `yaml:"description"`
	KeyDialogue              []string                        `yaml:"key_dialogue"`
	IsFlashback              bool                            `yaml:"is_flashback"`
	LocationUUID             string                          `yaml:"location_uuid"`
	ThemeUUIDs               []string                        `yaml:"theme_uuids"`
	ArcUUIDs                 []string                        `yaml:"arc_uuids"`
	Participations           []ParticipationRecord           `yaml:"participations"`
	ObjectInvolvements       []ObjectInvolvementRecord       `yaml:"object_involvements"`
	LocationInvolvements     []LocationInvolvementRecord     `yaml:"location_involvements"`
	OrganizationInvolvements []OrganizationInvolvementRecord `yaml:"organization_involvements"`
}

type ConnectionRecord struct {
	FabulaUUID     string `yaml:"fabula_uuid"`
	LegacyUUID     string `yaml:"connection_uuid"`
	GlobalID       string `yaml:"global_id"`
	FromEventUUID  string `yaml:"from_event_uuid"`
	ToEventUUID    string `yaml:"to_event_uuid"`
	ConnectionType string `yaml:"connection_type"`
	Strength       string `yaml:"strength"`
	Description    string `yaml:"description"`
}

// episodeEventsFile is the on-disk shape of one events/ shard: the episode the
// file belongs to plus that episode's ordered event list.
type episodeEventsFile struct {
	EpisodeUUID string        `yaml:"episode_uuid"`
	Events      []EventRecord `yaml:"events"`
}

// Snapshot holds everything loaded from one export directory.
type Snapshot struct {
	Dir           string
	Manifest      Manifest
	Series        []SeriesRecord
	Themes        []ThemeRecord
	Arcs          []ArcRecord
	Locations     []LocationRecord
	Characters    []CharacterRecord
	Organizations []OrganizationRecord
	Objects       []ObjectRecord
	Events        []EventRecord
	Connections   []ConnectionRecord

	// DuplicatesDropped counts in-batch duplicate records removed per category.
	DuplicatesDropped map[string]int
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *SeriesRecord) normalize() {
	r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID)
	for i := range r.Seasons {
		r.Seasons[i].normalize()
	}
}

func (r *SeasonRecord) normalize() {
	r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID)
	for i := range r.Episodes {
		r.Episodes[i].normalize()
	}
}

func (r *EpisodeRecord) normalize() {
	r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID)
}

func (r *ThemeRecord) normalize()        { r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID) }
func (r *ArcRecord) normalize()          { r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID) }
func (r *LocationRecord) normalize()     { r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID) }
func (r *OrganizationRecord) normalize() { r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID) }
func (r *ObjectRecord) normalize()       { r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID) }
func (r *ConnectionRecord) normalize()   { r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID) }

func (r *CharacterRecord) normalize() {
	r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID)
	if len(r.Aliases) == 0 {
		r.Aliases = r.Nicknames
	}
}

func (r *EventRecord) normalize(defaultEpisodeUUID string) {
	r.FabulaUUID = firstNonEmpty(r.FabulaUUID, r.LegacyUUID)
	r.EpisodeUUID = firstNonEmpty(r.EpisodeUUID, defaultEpisodeUUID)
	for i := range r.Participations {
		p := &r.Participations[i]
		p.CharacterUUID = firstNonEmpty(p.CharacterUUID, p.LegacyUUID)
	}
}

// identified is implemented by every record that can be deduplicated by its
// (global_id, fabula_uuid) identity pair.
type identified interface {
	identity() (globalID, localID string)
}

func (r ThemeRecord) identity() (string, string)        { return r.GlobalID, r.FabulaUUID }
func (r ArcRecord) identity() (string, string)          { return r.GlobalID, r.FabulaUUID }
func (r LocationRecord) identity() (string, string)     { return r.GlobalID, r.FabulaUUID }
func (r CharacterRecord) identity() (string, string)    { return r.GlobalID, r.FabulaUUID }
func (r OrganizationRecord) identity() (string, string) { return r.GlobalID, r.FabulaUUID }
func (r ObjectRecord) identity() (string, string)       { return r.GlobalID, r.FabulaUUID }
