package store

import (
	"time"

	"gorm.io/datatypes"
)

// Relational content store for the narrative graph. Every imported row keeps
// its season-local fabula_uuid as the natural key and, when the identity
// store knows the entity, a cross-season global_id. String columns that hold
// export text are capped at 255; the importer truncates before writing.

type Series struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID  string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	Title       string    `gorm:"column:title;type:varchar(255);not null"`
	Slug        string    `gorm:"column:slug;type:varchar(255);uniqueIndex;not null"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Series) TableName() string { return "series" }

// SectionIndex is a container row under a series grouping one entity kind
// (characters, organizations, objects, events).
type SectionIndex struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement"`
	SeriesID uint   `gorm:"column:series_id;not null;uniqueIndex:uq_section_series_kind"`
	Kind     string `gorm:"column:kind;type:varchar(32);not null;uniqueIndex:uq_section_series_kind"`
	Title    string `gorm:"column:title;type:varchar(255);not null"`
	Slug     string `gorm:"column:slug;type:varchar(255);not null"`
}

func (SectionIndex) TableName() string { return "section_indexes" }

type Season struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID   string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	SeriesID     uint      `gorm:"column:series_id;not null;index"`
	SeasonNumber int       `gorm:"column:season_number;not null"`
	Title        string    `gorm:"column:title;type:varchar(255);not null"`
	Slug         string    `gorm:"column:slug;type:varchar(255);not null"`
	Description  string    `gorm:"column:description;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Season) TableName() string { return "seasons" }

type Episode struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID       string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	SeasonID         uint      `gorm:"column:season_id;not null;index"`
	EpisodeNumber    int       `gorm:"column:episode_number;not null"`
	Title            string    `gorm:"column:title;type:varchar(255);not null"`
	Slug             string    `gorm:"column:slug;type:varchar(255);not null"`
	Logline          string    `gorm:"column:logline;type:text"`
	HighLevelSummary string    `gorm:"column:high_level_summary;type:text"`
	DominantTone     string    `gorm:"column:dominant_tone;type:varchar(255)"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (Episode) TableName() string { return "episodes" }

type Theme struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID  string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	GlobalID    string    `gorm:"column:global_id;type:varchar(64);index"`
	Name        string    `gorm:"column:name;type:varchar(255);not null"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Theme) TableName() string { return "themes" }

type ConflictArc struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID  string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	GlobalID    string    `gorm:"column:global_id;type:varchar(64);index"`
	Title       string    `gorm:"column:title;type:varchar(255);not null"`
	Description string    `gorm:"column:description;type:text"`
	ArcType     string    `gorm:"column:arc_type;type:varchar(32)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (ConflictArc) TableName() string { return "conflict_arcs" }

type Location struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID    string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	GlobalID      string    `gorm:"column:global_id;type:varchar(64);index"`
	CanonicalName string    `gorm:"column:canonical_name;type:varchar(255);not null"`
	Slug          string    `gorm:"column:slug;type:varchar(255);not null"`
	Description   string    `gorm:"column:description;type:text"`
	LocationType  string    `gorm:"column:location_type;type:varchar(64)"`
	ParentID      *uint     `gorm:"column:parent_id;index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (Location) TableName() string { return "locations" }

type Organization struct {
	ID                uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID        string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	GlobalID          string    `gorm:"column:global_id;type:varchar(64);index"`
	CanonicalName     string    `gorm:"column:canonical_name;type:varchar(255);not null"`
	Slug              string    `gorm:"column:slug;type:varchar(255);not null"`
	Description       string    `gorm:"column:description;type:text"`
	SphereOfInfluence string    `gorm:"column:sphere_of_influence;type:varchar(255)"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Organization) TableName() string { return "organizations" }

type Object struct {
	ID                  uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID          string    `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	GlobalID            string    `gorm:"column:global_id;type:varchar(64);index"`
	CanonicalName       string    `gorm:"column:canonical_name;type:varchar(255);not null"`
	Slug                string    `gorm:"column:slug;type:varchar(255);not null"`
	Description         string    `gorm:"column:description;type:text"`
	Purpose             string    `gorm:"column:purpose;type:text"`
	Significance        string    `gorm:"column:significance;type:text"`
	OwnerCharacterID    *uint     `gorm:"column:owner_character_id;index"`
	OwnerOrganizationID *uint     `gorm:"column:owner_organization_id;index"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (Object) TableName() string { return "objects" }

type Character struct {
	ID                       uint           `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID               string         `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	GlobalID                 string         `gorm:"column:global_id;type:varchar(64);index"`
	CanonicalName            string         `gorm:"column:canonical_name;type:varchar(255);not null"`
	Slug                     string         `gorm:"column:slug;type:varchar(255);not null"`
	TitleRole                string         `gorm:"column:title_role;type:varchar(255)"`
	Description              string         `gorm:"column:description;type:text"`
	Traits                   datatypes.JSON `gorm:"column:traits;type:jsonb"`
	Aliases                  datatypes.JSON `gorm:"column:aliases;type:jsonb"`
	CharacterType            string         `gorm:"column:character_type;type:varchar(16);default:recurring"`
	SphereOfInfluence        string         `gorm:"column:sphere_of_influence;type:varchar(255)"`
	AffiliatedOrganizationID *uint          `gorm:"column:affiliated_organization_id;index"`

	// Analytics columns maintained by compute-tiers and compute-layout.
	AppearanceCount   int     `gorm:"column:appearance_count;default:0"`
	EpisodeCount      int     `gorm:"column:episode_count;default:0"`
	RelationshipCount int     `gorm:"column:relationship_count;default:0"`
	ImportanceTier    string  `gorm:"column:importance_tier;type:varchar(16)"`
	GraphX            float64 `gorm:"column:graph_x;default:0"`
	GraphY            float64 `gorm:"column:graph_y;default:0"`
	GraphZ            float64 `gorm:"column:graph_z;default:0"`
	GraphCommunity    *int    `gorm:"column:graph_community"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Character) TableName() string { return "characters" }

type Event struct {
	ID              uint           `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID      string         `gorm:"column:fabula_uuid;type:varchar(64);uniqueIndex;not null"`
	EpisodeID       uint           `gorm:"column:episode_id;not null;index"`
	Title           string         `gorm:"column:title;type:varchar(255);not null"`
	Slug            string         `gorm:"column:slug;type:varchar(255);not null"`
	SceneSequence   int            `gorm:"column:scene_sequence;default:0"`
	SequenceInScene int            `gorm:"column:sequence_in_scene;default:0"`
	Description     string         `gorm:"column:description;type:text"`
	KeyDialogue     datatypes.JSON `gorm:"column:key_dialogue;type:jsonb"`
	IsFlashback     bool           `gorm:"column:is_flashback;default:false"`
	LocationID      *uint          `gorm:"column:location_id;index"`

	Themes []Theme       `gorm:"many2many:event_themes"`
	Arcs   []ConflictArc `gorm:"many2many:event_arcs"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Event) TableName() string { return "events" }

// Participation records one character's role in one event.
type Participation struct {
	ID             uint           `gorm:"column:id;primaryKey;autoIncrement"`
	EventID        uint           `gorm:"column:event_id;not null;uniqueIndex:uq_participation_event_character"`
	CharacterID    uint           `gorm:"column:character_id;not null;uniqueIndex:uq_participation_event_character"`
	EmotionalState string         `gorm:"column:emotional_state;type:varchar(255)"`
	Goals          datatypes.JSON `gorm:"column:goals;type:jsonb"`
	WhatHappened   string         `gorm:"column:what_happened;type:text"`
	ObservedStatus string         `gorm:"column:observed_status;type:varchar(255)"`
	Beliefs        datatypes.JSON `gorm:"column:beliefs;type:jsonb"`
	ObservedTraits datatypes.JSON `gorm:"column:observed_traits;type:jsonb"`
	Importance     string         `gorm:"column:importance;type:varchar(32)"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
}

func (Participation) TableName() string { return "participations" }

type ObjectInvolvement struct {
	ID                uint      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID           uint      `gorm:"column:event_id;not null;uniqueIndex:uq_object_involvement"`
	ObjectID          uint      `gorm:"column:object_id;not null;uniqueIndex:uq_object_involvement"`
	Description       string    `gorm:"column:description;type:text"`
	StatusBeforeEvent string    `gorm:"column:status_before_event;type:varchar(255)"`
	StatusAfterEvent  string    `gorm:"column:status_after_event;type:varchar(255)"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (ObjectInvolvement) TableName() string { return "object_involvements" }

type LocationInvolvement struct {
	ID                      uint           `gorm:"column:id;primaryKey;autoIncrement"`
	EventID                 uint           `gorm:"column:event_id;not null;uniqueIndex:uq_location_involvement"`
	LocationID              uint           `gorm:"column:location_id;not null;uniqueIndex:uq_location_involvement"`
	Description             string         `gorm:"column:description;type:text"`
	ObservedAtmosphere      string         `gorm:"column:observed_atmosphere;type:varchar(255)"`
	FunctionalRole          string         `gorm:"column:functional_role;type:varchar(255)"`
	SymbolicSignificance    string         `gorm:"column:symbolic_significance;type:text"`
	AccessRestrictions      string         `gorm:"column:access_restrictions;type:varchar(255)"`
	KeyEnvironmentalDetails datatypes.JSON `gorm:"column:key_environmental_details;type:jsonb"`
	CreatedAt               time.Time      `gorm:"column:created_at"`
	UpdatedAt               time.Time      `gorm:"column:updated_at"`
}

func (LocationInvolvement) TableName() string { return "location_involvements" }

type OrganizationInvolvement struct {
	ID                   uint           `gorm:"column:id;primaryKey;autoIncrement"`
	EventID              uint           `gorm:"column:event_id;not null;uniqueIndex:uq_organization_involvement"`
	OrganizationID       uint           `gorm:"column:organization_id;not null;uniqueIndex:uq_organization_involvement"`
	Description          string         `gorm:"column:description;type:text"`
	ActiveRepresentation string         `gorm:"column:active_representation;type:text"`
	PowerDynamics        string         `gorm:"column:power_dynamics;type:text"`
	OrganizationalGoals  datatypes.JSON `gorm:"column:organizational_goals;type:jsonb"`
	InfluenceMechanisms  datatypes.JSON `gorm:"column:influence_mechanisms;type:jsonb"`
	InstitutionalImpact  string         `gorm:"column:institutional_impact;type:text"`
	InternalDynamics     string         `gorm:"column:internal_dynamics;type:text"`
	CreatedAt            time.Time      `gorm:"column:created_at"`
	UpdatedAt            time.Time      `gorm:"column:updated_at"`
}

func (OrganizationInvolvement) TableName() string { return "organization_involvements" }

type NarrativeConnection struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement"`
	FabulaUUID     string    `gorm:"column:fabula_uuid;type:varchar(64);index"`
	GlobalID       string    `gorm:"column:global_id;type:varchar(64);index"`
	FromEventID    uint      `gorm:"column:from_event_id;not null;index"`
	ToEventID      uint      `gorm:"column:to_event_id;not null;index"`
	ConnectionType string    `gorm:"column:connection_type;type:varchar(32);not null"`
	Strength       string    `gorm:"column:strength;type:varchar(16)"`
	Description    string    `gorm:"column:description;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (NarrativeConnection) TableName() string { return "narrative_connections" }

// SiteConfig points the default site at the primary series.
type SiteConfig struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Hostname      string    `gorm:"column:hostname;type:varchar(255);default:*"`
	SiteName      string    `gorm:"column:site_name;type:varchar(255)"`
	RootSeriesID  uint      `gorm:"column:root_series_id;not null"`
	IsDefaultSite bool      `gorm:"column:is_default_site;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (SiteConfig) TableName() string { return "site_configs" }
