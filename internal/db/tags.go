package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveCustomTag inserts the tag or updates the stored tag with the same id.
func (db *DB) SaveCustomTag(ctx context.Context, roomID int, tag models.CustomTag) error {
	return saveCustomTag(ctx, db.conn, roomID, tag)
}

func saveCustomTag(ctx context.Context, ex execer, roomID int, tag models.CustomTag) error {
	if err := tag.IsValid(); err != nil {
		return fmt.Errorf("invalid tag: %w", err)
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO custom_tags (
			id, room_id, name, type, description, link, contact, image_url, color,
			created, is_rich, collaborative, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, type = excluded.type, description = excluded.description,
			link = excluded.link, contact = excluded.contact, image_url = excluded.image_url,
			color = excluded.color, is_rich = excluded.is_rich,
			collaborative = excluded.collaborative, created_by = excluded.created_by
	`, tag.ID, roomID, tag.Name, tag.Type, tag.Description, tag.Link, tag.Contact, tag.ImageURL,
		tag.Color, tag.Created.UTC(), tag.IsRich, tag.Collaborative, tag.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to save tag '%s' on room %d: %w", tag.Name, roomID, err)
	}
	return nil
}

// ReplaceCustomTagByName removes any tag on the room with the same name,
// ignoring case, and stores tag in its place.
func (db *DB) ReplaceCustomTagByName(ctx context.Context, roomID int, tag models.CustomTag) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM custom_tags WHERE room_id = ? AND name = ? COLLATE NOCASE AND id != ?
		`, roomID, tag.Name, tag.ID); err != nil {
			return fmt.Errorf("failed to replace tag '%s' on room %d: %w", tag.Name, roomID, err)
		}
		return saveCustomTag(ctx, tx, roomID, tag)
	})
}

// DeleteCustomTag removes a tag by id.
func (db *DB) DeleteCustomTag(ctx context.Context, tagID string) error {
	if _, err := db.Exec(ctx, `DELETE FROM custom_tags WHERE id = ?`, tagID); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tagID, err)
	}
	return nil
}

// ListCustomTags returns every custom tag keyed by room id, in creation order.
func (db *DB) ListCustomTags(ctx context.Context) (map[int][]models.CustomTag, error) {
	rows, err := db.Query(ctx, `
		SELECT room_id, id, name, type, description, link, contact, image_url, color,
			created, is_rich, collaborative, created_by
		FROM custom_tags ORDER BY room_id, created, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]models.CustomTag)
	for rows.Next() {
		var roomID int
		var tag models.CustomTag
		var desc, link, contact, image, color, createdBy sql.NullString
		if err := rows.Scan(
			&roomID, &tag.ID, &tag.Name, &tag.Type, &desc, &link, &contact, &image, &color,
			&tag.Created, &tag.IsRich, &tag.Collaborative, &createdBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tag.Description = desc.String
		tag.Link = link.String
		tag.Contact = contact.String
		tag.ImageURL = image.String
		tag.Color = color.String
		tag.CreatedBy = createdBy.String
		out[roomID] = append(out[roomID], tag)
	}
	return out, rows.Err()
}

// AddStaffTag stores a staff tag, ignoring one already present.
func (db *DB) AddStaffTag(ctx context.Context, roomID int, tag string) error {
	var next int
	if err := db.QueryRow(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1 FROM staff_tags WHERE room_id = ?
	`, roomID).Scan(&next); err != nil {
		return fmt.Errorf("failed to read staff tags for room %d: %w", roomID, err)
	}
	return insertStaffTag(ctx, db.conn, roomID, tag, next)
}

func insertStaffTag(ctx context.Context, ex execer, roomID int, tag string, position int) error {
	_, err := ex.ExecContext(ctx, `
		INSERT OR IGNORE INTO staff_tags (room_id, tag, position) VALUES (?, ?, ?)
	`, roomID, tag, position)
	if err != nil {
		return fmt.Errorf("failed to add staff tag on room %d: %w", roomID, err)
	}
	return nil
}

// ListStaffTags returns every staff tag keyed by room id.
func (db *DB) ListStaffTags(ctx context.Context) (map[int][]string, error) {
	rows, err := db.Query(ctx, `SELECT room_id, tag FROM staff_tags ORDER BY room_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff tags: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]string)
	for rows.Next() {
		var roomID int
		var tag string
		if err := rows.Scan(&roomID, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan staff tag: %w", err)
		}
		out[roomID] = append(out[roomID], tag)
	}
	return out, rows.Err()
}
