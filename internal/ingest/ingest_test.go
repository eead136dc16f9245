package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roomdir-dev/roomdir/internal/normalize"
)

const roomsCSV = "\ufeffrmrecnbr,rmnbr,floor,bld_descrshort,rmtyp_descrshort,rmsubtyp_descrshort,dept_descr\n" +
	"9001,101,1,MAIN,OFF,PRIV,ADMIN\n" +
	"9002,204,2.0,MAIN,EXAM,,Family Medicine\n" +
	",,,,,,\n" +
	"9003,,3,MAIN,STOR,,\n" +
	"9004,310,3,,LAB,ZZQ,Research\n"

// ============================================================================
// Parsing
// ============================================================================

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(roomsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "9001", rows[0]["rmrecnbr"])
	assert.Equal(t, "2.0", rows[1]["floor"])
	assert.Equal(t, "", rows[2]["rmnbr"])
}

func TestParseCSV_RaggedRows(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("A, B\n1\n1,2,3\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"a": "1"}, rows[0])
	assert.Equal(t, Row{"a": "1", "b": "2"}, rows[1])
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"RMRECNBR", "rmnbr", "floor"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"9001", "101", 1}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"9002", "204", 2}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "9002", rows[1]["rmrecnbr"])
	assert.Equal(t, "2", rows[1]["floor"])
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rooms.csv")
	require.NoError(t, os.WriteFile(path, []byte(roomsCSV), 0644))

	rows, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = ParseFile(filepath.Join(dir, "legacy.xls"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = ParseFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

// ============================================================================
// Classification
// ============================================================================

func TestClassify(t *testing.T) {
	tests := map[string]Kind{
		"rooms.csv":               KindRooms,
		"Building-Export.XLSX":    KindRooms,
		"occupants.csv":           KindOccupants,
		"staff_list.xlsx":         KindOccupants,
		"tags.json":               KindTags,
		"monday.umsess":           KindSession,
		"legacy.xls":              KindUnsupported,
		"notes.txt":               KindUnsupported,
		"/data/2026/Rooms Q1.csv": KindRooms,
	}
	for name, want := range tests {
		assert.Equal(t, want, Classify(name), name)
	}
}

func TestPlan_Order(t *testing.T) {
	files, unsupported := Plan([]string{"tags.json", "occupants.csv", "legacy.xls", "rooms.csv", "s.umsess", "more-rooms.xlsx"})

	kinds := []string{}
	paths := []string{}
	for _, f := range files {
		kinds = append(kinds, f.Kind.String())
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"session", "rooms", "rooms", "occupants", "tags"}, kinds)
	assert.Equal(t, []string{"s.umsess", "rooms.csv", "more-rooms.xlsx", "occupants.csv", "tags.json"}, paths)
	assert.Equal(t, []string{"legacy.xls"}, unsupported)
}

// ============================================================================
// Room and occupant processing
// ============================================================================

func TestBuildRooms(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(roomsCSV))
	require.NoError(t, err)

	batch := BuildRooms(rows, normalize.New(nil))

	require.Len(t, batch.Rooms, 3)
	assert.Equal(t, 1, batch.Skipped)

	office := batch.Rooms[0]
	assert.Equal(t, "9001", office.RecordNumber)
	assert.Equal(t, "Private Office", office.TypeFull)
	assert.Equal(t, "Administration", office.Department)
	assert.Equal(t, "MAIN", office.Building)
	assert.Equal(t, []string{"Office"}, office.Tags)
	assert.Equal(t, "101", office.Fields["rmnbr"])

	exam := batch.Rooms[1]
	assert.Equal(t, "2", exam.Floor)
	assert.Equal(t, "Exam Room", exam.TypeFull)
	assert.Equal(t, []string{"Clinical"}, exam.Tags)

	lab := batch.Rooms[2]
	assert.Equal(t, "Unknown Building", lab.Building)
	assert.Equal(t, "", lab.BuildingShort)
	assert.Equal(t, "Laboratory - ZZQ", lab.TypeFull)

	assert.Equal(t, map[string]int{"ZZQ": 1, "Family Medicine": 1, "Research": 1}, batch.Unmapped)
}

func TestNormalizeNumber(t *testing.T) {
	tests := map[string]string{
		"3":    "3",
		"3.0":  "3",
		" 12 ": "12",
		"2.5":  "2.5",
		"B":    "B",
		"":     "",
		"01":   "01",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeNumber(in), in)
	}
}

func TestBuildAssignments(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("rmrecnbr,person_name\n9001,Jane Doe\n9002.0, John Roe \n,Nobody\n9003,\n"))
	require.NoError(t, err)

	assignments, skipped := BuildAssignments(rows)

	assert.Equal(t, 2, skipped)
	require.Len(t, assignments, 2)
	assert.Equal(t, Assignment{RecordNumber: "9001", PersonName: "Jane Doe"}, assignments[0])
	assert.Equal(t, "9002", assignments[1].RecordNumber)
	assert.Equal(t, "Staff: John Roe", assignments[1].StaffTag())
}
