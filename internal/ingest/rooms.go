package ingest

import (
	"strconv"
	"strings"

	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/normalize"
)

// Source column names.
const (
	ColRecordNumber  = "rmrecnbr"
	ColRoomNumber    = "rmnbr"
	ColFloor         = "floor"
	ColBuildingShort = "bld_descrshort"
	ColRoomType      = "rmtyp_descrshort"
	ColRoomSubtype   = "rmsubtyp_descrshort"
	ColDepartment    = "dept_descr"
	ColPersonName    = "person_name"
)

// RoomBatch is the outcome of turning rows into rooms. Rooms carry no ids
// yet; the directory assigns them.
type RoomBatch struct {
	Rooms    []models.Room
	Unmapped map[string]int
	Skipped  int
}

// BuildRooms normalizes room rows. Rows without a room number or floor are
// skipped.
func BuildRooms(rows []Row, n *normalize.Normalizer) RoomBatch {
	batch := RoomBatch{Rooms: []models.Room{}, Unmapped: map[string]int{}}

	for _, row := range rows {
		number := row[ColRoomNumber]
		floor := normalizeFloor(row[ColFloor])
		if number == "" || floor == "" {
			batch.Skipped++
			continue
		}

		building := row[ColBuildingShort]
		if building == "" {
			building = models.UnknownBuilding
		}

		roomType := n.Normalize(row[ColRoomType], batch.Unmapped)
		subType := n.Normalize(row[ColRoomSubtype], batch.Unmapped)
		dept := n.Normalize(row[ColDepartment], batch.Unmapped)
		full := normalize.FullType(roomType, subType)

		fields := make(map[string]string, len(row))
		for k, v := range row {
			fields[k] = v
		}

		batch.Rooms = append(batch.Rooms, models.Room{
			RecordNumber:  normalizeNumber(row[ColRecordNumber]),
			Number:        number,
			Floor:         floor,
			Building:      building,
			BuildingShort: row[ColBuildingShort],
			Department:    dept,
			TypeFull:      full,
			Tags:          normalize.GenerateTags(full, dept),
			Fields:        fields,
		})
	}

	return batch
}

// normalizeFloor renders integral numeric floors without a fraction so that
// "3.0" from a spreadsheet becomes "3".
func normalizeFloor(s string) string {
	return normalizeNumber(s)
}

func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if _, err := strconv.Atoi(s); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
