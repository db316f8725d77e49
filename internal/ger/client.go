package ger

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// Resolver answers cross-season identity questions. The importer treats an
// unavailable resolver as a degraded mode, never a fatal error.
type Resolver interface {
	ResolveLocalToGlobal(ctx context.Context, localUUID string) (*GlobalEntity, error)
	PreloadGlobalIDs(ctx context.Context, database, entityType string) (map[string]string, error)
	RecurringEntities(ctx context.Context, entityType string, minSeasons, limit int) ([]GlobalEntity, error)
	SeasonMappings(ctx context.Context, globalID string) ([]SeasonMapping, error)
	Available(ctx context.Context) bool
	Close(ctx context.Context) error
}

// Client queries the global entity registry over bolt.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ Resolver = (*Client)(nil)

// Connect opens a driver against the registry and verifies connectivity.
func Connect(ctx context.Context, uri, user, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create registry driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to registry at %s: %w", uri, err)
	}
	return &Client{driver: driver, database: database}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) run(ctx context.Context, query string, params map[string]any) ([]*db.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver, query, params,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(c.database))
	if err != nil {
		return nil, fmt.Errorf("registry query failed: %w", err)
	}
	return result.Records, nil
}

// Available reports whether the registry database answers a trivial query.
func (c *Client) Available(ctx context.Context) bool {
	_, err := c.run(ctx, PingQuery, nil)
	return err == nil
}

// ResolveLocalToGlobal returns the global entity mapped to a season-local
// uuid, or nil when the registry has no mapping.
func (c *Client) ResolveLocalToGlobal(ctx context.Context, localUUID string) (*GlobalEntity, error) {
	records, err := c.run(ctx, ResolveLocalToGlobalQuery, map[string]any{
		"local_uuid": localUUID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0]
	return &GlobalEntity{
		GlobalID:           recordString(rec, "global_id"),
		EntityType:         recordString(rec, "entity_type"),
		CanonicalName:      recordString(rec, "canonical_name"),
		Description:        recordString(rec, "description"),
		VerificationStatus: recordString(rec, "verification_status"),
	}, nil
}

// PreloadGlobalIDs returns the local_uuid -> global_id mapping for one season
// database. entityType filters when non-empty.
func (c *Client) PreloadGlobalIDs(ctx context.Context, database, entityType string) (map[string]string, error) {
	var typeParam any
	if entityType != "" {
		typeParam = entityType
	}
	records, err := c.run(ctx, AllGlobalIDsForDatabaseQuery, map[string]any{
		"database":    database,
		"entity_type": typeParam,
	})
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(records))
	for _, rec := range records {
		local := recordString(rec, "local_uuid")
		global := recordString(rec, "global_id")
		if local != "" && global != "" {
			mapping[local] = global
		}
	}
	return mapping, nil
}

// RecurringEntities returns entities of one type mapped into at least
// minSeasons seasons, most widely recurring first.
func (c *Client) RecurringEntities(ctx context.Context, entityType string, minSeasons, limit int) ([]GlobalEntity, error) {
	records, err := c.run(ctx, RecurringEntitiesQuery, map[string]any{
		"entity_type": entityType,
		"min_seasons": minSeasons,
		"limit":       limit,
	})
	if err != nil {
		return nil, err
	}
	entities := make([]GlobalEntity, 0, len(records))
	for _, rec := range records {
		entities = append(entities, GlobalEntity{
			GlobalID:      recordString(rec, "global_id"),
			EntityType:    entityType,
			CanonicalName: recordString(rec, "canonical_name"),
			Description:   recordString(rec, "description"),
			Aliases:       recordStrings(rec, "aliases"),
			Seasons:       recordInts(rec, "seasons"),
			SeasonCount:   recordInt(rec, "season_count"),
		})
	}
	return entities, nil
}

// SeasonMappings returns every season mapping of one global entity in season
// order.
func (c *Client) SeasonMappings(ctx context.Context, globalID string) ([]SeasonMapping, error) {
	records, err := c.run(ctx, SeasonMappingsQuery, map[string]any{
		"global_id": globalID,
	})
	if err != nil {
		return nil, err
	}
	mappings := make([]SeasonMapping, 0, len(records))
	for _, rec := range records {
		mappings = append(mappings, SeasonMapping{
			SeasonNumber:  recordInt(rec, "season_number"),
			LocalUUID:     recordString(rec, "local_uuid"),
			LocalName:     recordString(rec, "local_name"),
			LocalDatabase: recordString(rec, "local_database"),
			Confidence:    recordFloat(rec, "confidence"),
			Phase:         recordString(rec, "phase"),
		})
	}
	return mappings, nil
}

func recordString(rec *db.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func recordInt(rec *db.Record, key string) int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func recordFloat(rec *db.Record, key string) float64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func recordStrings(rec *db.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func recordInts(rec *db.Record, key string) []int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case int64:
			out = append(out, int(n))
		case float64:
			out = append(out, int(n))
		}
	}
	return out
}
