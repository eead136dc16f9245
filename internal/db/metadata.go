package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Metadata keys.
const (
	MetaProjectID  = "project_id"
	MetaLastImport = "last_import"
	MetaLastSync   = "last_sync"
)

// GetMetadata retrieves a metadata value by key.
// Returns empty string if the key doesn't exist.
func (db *DB) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRow(ctx, `
		SELECT value FROM metadata WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata '%s': %w", key, err)
	}
	return value, nil
}

// SetMetadata stores or updates a metadata key-value pair.
func (db *DB) SetMetadata(ctx context.Context, key, value string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata '%s': %w", key, err)
	}
	return nil
}

// DeleteMetadata removes a metadata key-value pair.
func (db *DB) DeleteMetadata(ctx context.Context, key string) error {
	_, err := db.Exec(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata '%s': %w", key, err)
	}
	return nil
}

// GetTime reads a metadata value stored with SetTime.
// Returns the zero time if the key doesn't exist.
func (db *DB) GetTime(ctx context.Context, key string) (time.Time, error) {
	value, err := db.GetMetadata(ctx, key)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time in metadata '%s': %w", key, err)
	}
	return t, nil
}

// SetTime stores t under key in RFC 3339 form.
func (db *DB) SetTime(ctx context.Context, key string, t time.Time) error {
	return db.SetMetadata(ctx, key, t.UTC().Format(time.RFC3339Nano))
}
