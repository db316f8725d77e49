package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func allModels() []any {
	return []any{
		&Series{},
		&SectionIndex{},
		&Season{},
		&Episode{},
		&Theme{},
		&ConflictArc{},
		&Location{},
		&Organization{},
		&Object{},
		&Character{},
		&Event{},
		&Participation{},
		&ObjectInvolvement{},
		&LocationInvolvement{},
		&OrganizationInvolvement{},
		&NarrativeConnection{},
		&SiteConfig{},
	}
}

// Open connects to Postgres and migrates the schema. When the target database
// does not exist yet it is created through the admin database first.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "3D000") {
			if createErr := ensureDatabaseExists(dsn); createErr != nil {
				return nil, fmt.Errorf("failed to create database: %w", createErr)
			}
			db, err = gorm.Open(postgres.Open(dsn), cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// OpenSQLite opens an in-memory (or file-backed) SQLite store with the same
// schema. Used by tests and ad-hoc dry runs.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// ensureDatabaseExists connects to the postgres admin database and creates
// the target database when missing. The DSN must be URL form.
func ensureDatabaseExists(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return err
	}
	dbname := strings.TrimPrefix(u.Path, "/")
	if idx := strings.Index(dbname, "?"); idx >= 0 {
		dbname = dbname[:idx]
	}
	dbname = strings.TrimSpace(dbname)
	if dbname == "" || dbname == "postgres" {
		return nil
	}
	u.Path = "/postgres"

	admin, err := sql.Open("pgx", u.String())
	if err != nil {
		return err
	}
	defer admin.Close()

	err = admin.QueryRow("SELECT 1 FROM pg_database WHERE datname = $1", dbname).Scan(new(int))
	if errors.Is(err, sql.ErrNoRows) {
		quoted := `"` + strings.ReplaceAll(dbname, `"`, `""`) + `"`
		_, err = admin.Exec("CREATE DATABASE " + quoted)
	}
	return err
}

// JSONStrings marshals a string list for a jsonb column. Nil input stays nil
// so empty lists round-trip as SQL NULL.
func JSONStrings(values []string) datatypes.JSON {
	if values == nil {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
