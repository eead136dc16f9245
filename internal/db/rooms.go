package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// InsertRooms stores rooms that already carry their directory ids, updating
// rooms stored under the same id. Tags on updated rooms are kept.
func (db *DB) InsertRooms(ctx context.Context, rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertRooms(ctx, tx, rooms)
	})
}

func insertRooms(ctx context.Context, tx *sql.Tx, rooms []models.Room) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rooms (
			id, rmrecnbr, rmnbr, floor, building, bld_descrshort, dept_descr, type_full, tags, fields
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rmrecnbr = excluded.rmrecnbr, rmnbr = excluded.rmnbr, floor = excluded.floor,
			building = excluded.building, bld_descrshort = excluded.bld_descrshort,
			dept_descr = excluded.dept_descr, type_full = excluded.type_full,
			tags = excluded.tags, fields = excluded.fields
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare room insert: %w", err)
	}
	defer stmt.Close()

	for _, room := range rooms {
		tags, err := json.Marshal(nonNilStrings(room.Tags))
		if err != nil {
			return fmt.Errorf("failed to encode tags for room %d: %w", room.ID, err)
		}
		fields, err := json.Marshal(room.Fields)
		if err != nil {
			return fmt.Errorf("failed to encode fields for room %d: %w", room.ID, err)
		}
		if room.Fields == nil {
			fields = []byte("{}")
		}

		if _, err := stmt.ExecContext(ctx,
			room.ID, room.RecordNumber, room.Number, room.Floor, room.Building,
			room.BuildingShort, room.Department, room.TypeFull, string(tags), string(fields),
		); err != nil {
			return fmt.Errorf("failed to insert room %d: %w", room.ID, err)
		}
	}
	return nil
}

// ListRooms returns every stored room ordered by id.
func (db *DB) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := db.Query(ctx, `
		SELECT id, rmrecnbr, rmnbr, floor, building, bld_descrshort, dept_descr, type_full, tags, fields
		FROM rooms ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		var room models.Room
		var rec, short, dept, typ sql.NullString
		var tags, fields string
		if err := rows.Scan(
			&room.ID, &rec, &room.Number, &room.Floor, &room.Building,
			&short, &dept, &typ, &tags, &fields,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		room.RecordNumber = rec.String
		room.BuildingShort = short.String
		room.Department = dept.String
		room.TypeFull = typ.String

		if err := json.Unmarshal([]byte(tags), &room.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for room %d: %w", room.ID, err)
		}
		if err := json.Unmarshal([]byte(fields), &room.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode fields for room %d: %w", room.ID, err)
		}
		if len(room.Fields) == 0 {
			room.Fields = nil
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CountRooms returns the number of stored rooms.
func (db *DB) CountRooms(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the stored directory for the given rooms and tags.
func (db *DB) ReplaceAll(ctx context.Context, rooms []models.Room, custom map[int][]models.CustomTag, staff map[int][]string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"staff_tags", "custom_tags", "rooms"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if err := insertRooms(ctx, tx, rooms); err != nil {
			return err
		}
		for roomID, tags := range custom {
			for _, tag := range tags {
				if err := saveCustomTag(ctx, tx, roomID, tag); err != nil {
					return err
				}
			}
		}
		for roomID, tags := range staff {
			for i, tag := range tags {
				if err := insertStaffTag(ctx, tx, roomID, tag, i); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
