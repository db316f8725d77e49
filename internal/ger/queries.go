package ger

const (
	ResolveLocalToGlobalQuery = `
		MATCH (g:GlobalEntityRef)-[:HAS_SEASON_MAPPING]->(m:SeasonMapping {local_uuid: $local_uuid})
		RETURN g.global_id AS global_id,
			g.canonical_name AS canonical_name,
			g.entity_type AS entity_type,
			g.canonical_description AS description,
			g.verification_status AS verification_status
		LIMIT 1
	`

	AllGlobalIDsForDatabaseQuery = `
		MATCH (g:GlobalEntityRef)-[:HAS_SEASON_MAPPING]->(m:SeasonMapping)
		WHERE m.local_database = $database
			AND ($entity_type IS NULL OR g.entity_type = $entity_type)
		RETURN m.local_uuid AS local_uuid, g.global_id AS global_id
	`

	RecurringEntitiesQuery = `
		MATCH (g:GlobalEntityRef {entity_type: $entity_type})-[:HAS_SEASON_MAPPING]->(m:SeasonMapping)
		WITH g, collect(DISTINCT m.season_number) AS seasons
		WHERE size(seasons) >= $min_seasons
		RETURN g.global_id AS global_id,
			g.canonical_name AS canonical_name,
			g.canonical_aliases AS aliases,
			g.canonical_description AS description,
			seasons,
			size(seasons) AS season_count
		ORDER BY size(seasons) DESC, g.canonical_name
		LIMIT $limit
	`

	SeasonMappingsQuery = `
		MATCH (g:GlobalEntityRef {global_id: $global_id})-[:HAS_SEASON_MAPPING]->(m:SeasonMapping)
		RETURN m.season_number AS season_number,
			m.local_uuid AS local_uuid,
			m.local_name AS local_name,
			m.local_database AS local_database,
			m.confidence AS confidence,
			m.phase AS phase
		ORDER BY m.season_number
	`

	PingQuery = `RETURN 1 AS ok`
)
