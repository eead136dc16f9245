package db

import (
	"context"
	"fmt"
)

const SchemaVersion = 2

// Migrate runs database migrations to ensure schema is up to date.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to create version table: %w", err)
	}

	currentVersion, err := db.getSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if currentVersion < 1 {
		if err := db.migrateV1(ctx); err != nil {
			return fmt.Errorf("failed to run v1 migration: %w", err)
		}
	}

	if currentVersion < 2 {
		if err := db.migrateV2(ctx); err != nil {
			return fmt.Errorf("failed to run v2 migration: %w", err)
		}
	}

	return nil
}

func (db *DB) createVersionTable(ctx context.Context) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (db *DB) getSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// SchemaVersionApplied returns the highest applied migration.
func (db *DB) SchemaVersionApplied(ctx context.Context) (int, error) {
	return db.getSchemaVersion(ctx)
}

func (db *DB) setSchemaVersion(ctx context.Context, version int) error {
	_, err := db.Exec(ctx, "INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// migrateV1 creates the rooms, tag and metadata tables.
func (db *DB) migrateV1(ctx context.Context) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"rooms table", `
			CREATE TABLE IF NOT EXISTS rooms (
				id INTEGER PRIMARY KEY,
				rmrecnbr TEXT,
				rmnbr TEXT NOT NULL,
				floor TEXT NOT NULL,
				building TEXT NOT NULL,
				bld_descrshort TEXT,
				dept_descr TEXT,
				type_full TEXT,
				tags TEXT NOT NULL DEFAULT '[]',
				fields TEXT NOT NULL DEFAULT '{}',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"rooms record number index", `CREATE INDEX IF NOT EXISTS idx_rooms_rmrecnbr ON rooms(rmrecnbr)`},
		{"custom_tags table", `
			CREATE TABLE IF NOT EXISTS custom_tags (
				id TEXT PRIMARY KEY,
				room_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				type TEXT NOT NULL,
				description TEXT,
				link TEXT,
				contact TEXT,
				image_url TEXT,
				color TEXT,
				created DATETIME NOT NULL,
				is_rich INTEGER NOT NULL DEFAULT 0,
				collaborative INTEGER NOT NULL DEFAULT 0,
				created_by TEXT,
				FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
			)
		`},
		{"custom_tags name index", `CREATE UNIQUE INDEX IF NOT EXISTS idx_custom_tags_room_name ON custom_tags(room_id, name COLLATE NOCASE)`},
		{"staff_tags table", `
			CREATE TABLE IF NOT EXISTS staff_tags (
				room_id INTEGER NOT NULL,
				tag TEXT NOT NULL,
				position INTEGER NOT NULL,
				PRIMARY KEY (room_id, tag),
				FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
			)
		`},
		{"metadata table", `
			CREATE TABLE IF NOT EXISTS metadata (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}

	return db.setSchemaVersion(ctx, 1)
}

// migrateV2 adds abbreviation data and the local tag activity log.
func (db *DB) migrateV2(ctx context.Context) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"abbreviations table", `
			CREATE TABLE IF NOT EXISTS abbreviations (
				abbr TEXT PRIMARY KEY,
				label TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"unmapped_abbreviations table", `
			CREATE TABLE IF NOT EXISTS unmapped_abbreviations (
				abbr TEXT PRIMARY KEY,
				occurrences INTEGER NOT NULL DEFAULT 0
			)
		`},
		{"tag_activity table", `
			CREATE TABLE IF NOT EXISTS tag_activity (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				room_id INTEGER NOT NULL,
				room_identifier TEXT NOT NULL,
				tag_name TEXT NOT NULL,
				action TEXT NOT NULL,
				actor TEXT,
				created_at DATETIME NOT NULL
			)
		`},
		{"tag_activity room index", `CREATE INDEX IF NOT EXISTS idx_tag_activity_room ON tag_activity(room_id)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}

	return db.setSchemaVersion(ctx, 2)
}
