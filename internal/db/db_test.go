package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomdir-dev/roomdir/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func testRooms() []models.Room {
	return []models.Room{
		{ID: 0, RecordNumber: "9001", Number: "101", Floor: "1", Building: "Main Hospital", TypeFull: "Office", Tags: []string{"Office"}, Fields: map[string]string{"rmnbr": "101"}},
		{ID: 1, Number: "204", Floor: "2", Building: "Main Hospital", Department: "Family Medicine"},
	}
}

// ============================================================================
// Open and migrations
// ============================================================================

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Open(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	dbPath := filepath.Join(tmpDir, StateDir, DatabaseFile)
	assert.Equal(t, dbPath, db.Path())

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.NotNil(t, db.Conn())
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx))

	version, err := db.SchemaVersionApplied(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

// ============================================================================
// Rooms
// ============================================================================

func TestRooms_InsertAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertRooms(ctx, testRooms()))

	rooms, err := db.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, testRooms()[0], rooms[0])
	assert.Equal(t, "Family Medicine", rooms[1].Department)
	assert.Equal(t, []string{}, rooms[1].Tags)
	assert.Nil(t, rooms[1].Fields)

	n, err := db.CountRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReplaceAll(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertRooms(ctx, testRooms()))
	require.NoError(t, db.SaveCustomTag(ctx, 0, models.CustomTag{ID: "old", Name: "Old", Type: "simple", Created: time.Now()}))

	rooms := []models.Room{{ID: 5, Number: "500", Floor: "5", Building: "Tower"}}
	custom := map[int][]models.CustomTag{5: {{ID: "new", Name: "New", Type: "simple", Created: time.Now()}}}
	staff := map[int][]string{5: {"Staff: A", "Staff: B"}}
	require.NoError(t, db.ReplaceAll(ctx, rooms, custom, staff))

	stored, err := db.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 5, stored[0].ID)

	tags, err := db.ListCustomTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
	assert.Equal(t, "New", tags[5][0].Name)

	staffTags, err := db.ListStaffTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Staff: A", "Staff: B"}, staffTags[5])
}

// ============================================================================
// Tags
// ============================================================================

func TestCustomTags_SaveUpdateDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertRooms(ctx, testRooms()))

	tag := models.NewCustomTag(models.TagInput{Name: "Bed", Contact: "x100"})
	require.NoError(t, db.SaveCustomTag(ctx, 1, tag))

	tag.Collaborative = true
	tag.CreatedBy = "a@example.org"
	require.NoError(t, db.SaveCustomTag(ctx, 1, tag))

	tags, err := db.ListCustomTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags[1], 1)
	got := tags[1][0]
	assert.Equal(t, tag.ID, got.ID)
	assert.Equal(t, "x100", got.Contact)
	assert.True(t, got.IsRich)
	assert.True(t, got.Collaborative)
	assert.Equal(t, "a@example.org", got.CreatedBy)
	assert.WithinDuration(t, tag.Created, got.Created, time.Second)

	require.NoError(t, db.DeleteCustomTag(ctx, tag.ID))
	tags, err = db.ListCustomTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCustomTags_DuplicateNameRejected(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertRooms(ctx, testRooms()))

	require.NoError(t, db.SaveCustomTag(ctx, 0, models.NewCustomTag(models.TagInput{Name: "Bed"})))
	assert.Error(t, db.SaveCustomTag(ctx, 0, models.NewCustomTag(models.TagInput{Name: "BED"})))
}

func TestCustomTags_ReplaceByName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertRooms(ctx, testRooms()))

	require.NoError(t, db.SaveCustomTag(ctx, 0, models.NewCustomTag(models.TagInput{Name: "Bed"})))
	remote := models.NewCustomTag(models.TagInput{Name: "bed", Color: "red"})
	remote.Collaborative = true
	require.NoError(t, db.ReplaceCustomTagByName(ctx, 0, remote))

	tags, err := db.ListCustomTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags[0], 1)
	assert.Equal(t, remote.ID, tags[0][0].ID)
	assert.Equal(t, "red", tags[0][0].Color)
}

func TestCustomTags_InvalidRejected(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.SaveCustomTag(context.Background(), 0, models.CustomTag{ID: "x"}))
}

func TestStaffTags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertRooms(ctx, testRooms()))

	require.NoError(t, db.AddStaffTag(ctx, 0, "Staff: Zed"))
	require.NoError(t, db.AddStaffTag(ctx, 0, "Staff: Amy"))
	require.NoError(t, db.AddStaffTag(ctx, 0, "Staff: Zed"))

	staff, err := db.ListStaffTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Staff: Zed", "Staff: Amy"}, staff[0])
}

// ============================================================================
// Abbreviations, activity and metadata
// ============================================================================

func TestAbbreviations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddUnmapped(ctx, map[string]int{"ZZQ": 2, "QQ": 5}))
	require.NoError(t, db.AddUnmapped(ctx, map[string]int{"ZZQ": 4}))

	unmapped, err := db.ListUnmapped(ctx)
	require.NoError(t, err)
	assert.Equal(t, []UnmappedAbbreviation{{"ZZQ", 6}, {"QQ", 5}}, unmapped)

	require.NoError(t, db.SetAbbreviation(ctx, "ZZQ", "Quiet Room"))
	require.NoError(t, db.SetAbbreviation(ctx, "ZZQ", "Quiet Room 2"))

	mappings, err := db.ListAbbreviations(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ZZQ": "Quiet Room 2"}, mappings)

	unmapped, err = db.ListUnmapped(ctx)
	require.NoError(t, err)
	assert.Equal(t, []UnmappedAbbreviation{{"QQ", 5}}, unmapped)
}

func TestActivity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, db.LogActivity(ctx, Activity{RoomID: 1, RoomIdentifier: "9001", TagName: "Bed", Action: ActionAdded, CreatedAt: base}))
	require.NoError(t, db.LogActivity(ctx, Activity{RoomID: 1, RoomIdentifier: "9001", TagName: "Bed", Action: ActionRemoved, User: "me", CreatedAt: base.Add(time.Minute)}))

	all, err := db.ListActivity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ActionRemoved, all[0].Action)
	assert.Equal(t, "me", all[0].User)

	latest, err := db.ListActivity(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	value, err := db.GetMetadata(ctx, MetaProjectID)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, db.SetMetadata(ctx, MetaProjectID, "project_abc"))
	value, err = db.GetMetadata(ctx, MetaProjectID)
	require.NoError(t, err)
	assert.Equal(t, "project_abc", value)

	require.NoError(t, db.DeleteMetadata(ctx, MetaProjectID))
	value, err = db.GetMetadata(ctx, MetaProjectID)
	require.NoError(t, err)
	assert.Empty(t, value)

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, db.SetTime(ctx, MetaLastImport, ts))
	got, err := db.GetTime(ctx, MetaLastImport)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	zero, err := db.GetTime(ctx, MetaLastSync)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}
