package ingest

import "github.com/roomdir-dev/roomdir/internal/models"

// Assignment places a person in a room identified by record number.
type Assignment struct {
	RecordNumber string
	PersonName   string
}

// StaffTag returns the staff tag for the assignment.
func (a Assignment) StaffTag() string {
	return models.StaffTag(a.PersonName)
}

// BuildAssignments reads occupant rows. Rows missing a record number or a
// name are counted as skipped.
func BuildAssignments(rows []Row) (assignments []Assignment, skipped int) {
	for _, row := range rows {
		rec := normalizeNumber(row[ColRecordNumber])
		name := row[ColPersonName]
		if rec == "" || name == "" {
			skipped++
			continue
		}
		assignments = append(assignments, Assignment{RecordNumber: rec, PersonName: name})
	}
	return assignments, skipped
}
