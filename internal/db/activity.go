package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Tag activity actions.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
	ActionSynced  = "synced"
)

// Activity is one entry of the local tag activity log.
type Activity struct {
	ID             int64     `json:"id"`
	RoomID         int       `json:"room_id"`
	RoomIdentifier string    `json:"room_identifier"`
	TagName        string    `json:"tag_name"`
	Action         string    `json:"action"`
	User           string    `json:"user,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LogActivity appends an entry to the activity log.
func (db *DB) LogActivity(ctx context.Context, a Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := db.Exec(ctx, `
		INSERT INTO tag_activity (room_id, room_identifier, tag_name, action, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.RoomID, a.RoomIdentifier, a.TagName, a.Action, a.User, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to log tag activity: %w", err)
	}
	return nil
}

// ListActivity returns the most recent entries first. limit <= 0 returns all.
func (db *DB) ListActivity(ctx context.Context, limit int) ([]Activity, error) {
	query := `
		SELECT id, room_id, room_identifier, tag_name, action, actor, created_at
		FROM tag_activity ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag activity: %w", err)
	}
	defer rows.Close()

	out := []Activity{}
	for rows.Next() {
		var a Activity
		var user sql.NullString
		if err := rows.Scan(&a.ID, &a.RoomID, &a.RoomIdentifier, &a.TagName, &a.Action, &user, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag activity: %w", err)
		}
		a.User = user.String
		out = append(out, a)
	}
	return out, rows.Err()
}
