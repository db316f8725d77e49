package ger

// Entity types tracked by the global entity registry. Characters map to the
// registry's Agent type.
const (
	EntityTypeAgent        = "Agent"
	EntityTypeLocation     = "Location"
	EntityTypeObject       = "Object"
	EntityTypeOrganization = "Organization"
	EntityTypeTheme        = "Theme"
	EntityTypeConflictArc  = "ConflictArc"
)

// EntityTypes lists registry entity types in report order.
var EntityTypes = []string{
	EntityTypeAgent,
	EntityTypeLocation,
	EntityTypeObject,
	EntityTypeOrganization,
	EntityTypeTheme,
	EntityTypeConflictArc,
}

// GlobalEntity is one GlobalEntityRef node.
type GlobalEntity struct {
	GlobalID           string
	EntityType         string
	CanonicalName      string
	Description        string
	Aliases            []string
	VerificationStatus string
	Seasons            []int
	SeasonCount        int
}

// SeasonMapping links a global entity to its season-local uuid. Phase is how
// the mapping was established: anchor, matched, or reconciled.
type SeasonMapping struct {
	SeasonNumber  int
	LocalUUID     string
	LocalName     string
	LocalDatabase string
	Confidence    float64
	Phase         string
}
