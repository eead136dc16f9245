package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UnmappedAbbreviation is a source value with no known label.
type UnmappedAbbreviation struct {
	Abbr        string `json:"abbr"`
	Occurrences int    `json:"occurrences"`
}

// SetAbbreviation stores a user mapping and clears the abbreviation from the
// unmapped report.
func (db *DB) SetAbbreviation(ctx context.Context, abbr, label string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO abbreviations (abbr, label, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(abbr) DO UPDATE SET label = excluded.label, updated_at = CURRENT_TIMESTAMP
		`, abbr, label); err != nil {
			return fmt.Errorf("failed to set abbreviation '%s': %w", abbr, err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM unmapped_abbreviations WHERE abbr = ? COLLATE NOCASE
		`, abbr); err != nil {
			return fmt.Errorf("failed to clear unmapped abbreviation '%s': %w", abbr, err)
		}
		return nil
	})
}

// ListAbbreviations returns the user mappings.
func (db *DB) ListAbbreviations(ctx context.Context) (map[string]string, error) {
	rows, err := db.Query(ctx, `SELECT abbr, label FROM abbreviations`)
	if err != nil {
		return nil, fmt.Errorf("failed to list abbreviations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var abbr, label string
		if err := rows.Scan(&abbr, &label); err != nil {
			return nil, fmt.Errorf("failed to scan abbreviation: %w", err)
		}
		out[abbr] = label
	}
	return out, rows.Err()
}

// AddUnmapped adds occurrence counts to the unmapped report.
func (db *DB) AddUnmapped(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for abbr, n := range counts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO unmapped_abbreviations (abbr, occurrences) VALUES (?, ?)
				ON CONFLICT(abbr) DO UPDATE SET occurrences = occurrences + excluded.occurrences
			`, abbr, n); err != nil {
				return fmt.Errorf("failed to record unmapped abbreviation '%s': %w", abbr, err)
			}
		}
		return nil
	})
}

// ListUnmapped returns the unmapped report, most frequent first.
func (db *DB) ListUnmapped(ctx context.Context) ([]UnmappedAbbreviation, error) {
	rows, err := db.Query(ctx, `
		SELECT abbr, occurrences FROM unmapped_abbreviations ORDER BY occurrences DESC, abbr
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmapped abbreviations: %w", err)
	}
	defer rows.Close()

	out := []UnmappedAbbreviation{}
	for rows.Next() {
		var u UnmappedAbbreviation
		if err := rows.Scan(&u.Abbr, &u.Occurrences); err != nil {
			return nil, fmt.Errorf("failed to scan unmapped abbreviation: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
