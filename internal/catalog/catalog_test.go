package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/db"
	"github.com/roomdir-dev/roomdir/internal/directory"
	"github.com/roomdir-dev/roomdir/internal/ingest"
	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/search"
	"github.com/roomdir-dev/roomdir/internal/transfer"
)

const roomsCSV = `rmrecnbr,rmnbr,floor,bld_descrshort,rmtyp_descrshort,rmsubtyp_descrshort,dept_descr
9001,101,1,MAIN,OFF,PRIV,Family Medicine
9002,204,2,MAIN,EXAM,,Family Medicine
9003,310,3,TOWER,LAB,XYZ,Research
9004,999,,MAIN,OFF,,Facilities
`

const staffCSV = `rmrecnbr,person_name
9002,Jane Doe
9999,Nobody Here
`

func newTestService(t *testing.T, root string) *Service {
	t.Helper()
	svc, err := Open(context.Background(), root, config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// importedService returns a service loaded with the room and staff fixtures.
func importedService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	svc := newTestService(t, root)
	rooms := writeFile(t, root, "rooms.csv", roomsCSV)
	staff := writeFile(t, root, "staff.csv", staffCSV)

	_, err := svc.ImportFiles(context.Background(), []string{staff, rooms})
	require.NoError(t, err)
	return svc, root
}

// rejectInserts makes every insert into table fail.
func rejectInserts(t *testing.T, svc *Service, table string) {
	t.Helper()
	_, err := svc.store.Conn().Exec(fmt.Sprintf(
		`CREATE TRIGGER reject_%[1]s BEFORE INSERT ON %[1]s BEGIN SELECT RAISE(ABORT, 'read only'); END`, table))
	require.NoError(t, err)
}

func roomByNumber(t *testing.T, svc *Service, number string) models.Room {
	t.Helper()
	room, ok := svc.Directory().FindByNumber(number, "")
	require.True(t, ok, "room %s not found", number)
	return room
}

// ============================================================================
// Import
// ============================================================================

func TestImportFiles_OrderAndCounts(t *testing.T) {
	root := t.TempDir()
	svc := newTestService(t, root)
	rooms := writeFile(t, root, "rooms.csv", roomsCSV)
	staff := writeFile(t, root, "staff.csv", staffCSV)

	report, err := svc.ImportFiles(context.Background(), []string{staff, rooms})
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	assert.Equal(t, "rooms", report.Files[0].Kind)
	assert.Equal(t, 3, report.Files[0].Rooms)
	assert.Equal(t, 1, report.Files[0].Skipped)
	assert.Equal(t, "occupants", report.Files[1].Kind)
	assert.Equal(t, 1, report.Files[1].Staff)
	assert.Equal(t, 1, report.Files[1].Skipped)

	room := roomByNumber(t, svc, "101")
	assert.Equal(t, "Private Office", room.TypeFull)
	assert.Equal(t, "MAIN", room.Building)
	assert.Contains(t, room.Tags, "Office")
}

func TestImportFiles_UnsupportedKeepsGoing(t *testing.T) {
	root := t.TempDir()
	svc := newTestService(t, root)
	rooms := writeFile(t, root, "rooms.csv", roomsCSV)
	legacy := writeFile(t, root, "legacy.xls", "binary")

	report, err := svc.ImportFiles(context.Background(), []string{legacy, rooms})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingest.ErrUnsupportedFile))
	assert.Equal(t, []string{legacy}, report.Unsupported)
	assert.Equal(t, 3, svc.Directory().Len())
}

func TestImportFiles_ReimportUpdatesInPlace(t *testing.T) {
	svc, root := importedService(t)
	room := roomByNumber(t, svc, "204")
	_, err := svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Bed"})
	require.NoError(t, err)

	report, err := svc.ImportFiles(context.Background(), []string{filepath.Join(root, "rooms.csv")})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Files[0].Rooms)
	assert.Equal(t, 3, report.Files[0].Updated)
	assert.Equal(t, 3, svc.Directory().Len())

	tags, err := svc.CustomTags(room.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestImportFiles_StoreFailureKeepsDirectory(t *testing.T) {
	svc, root := importedService(t)
	rejectInserts(t, svc, "rooms")
	changed := writeFile(t, root, "changed.csv", `rmrecnbr,rmnbr,floor,bld_descrshort,rmtyp_descrshort
9001,101A,1,MAIN,OFF
9010,777,7,MAIN,OFF
`)

	_, err := svc.ImportFiles(context.Background(), []string{changed})
	require.Error(t, err)

	assert.Equal(t, 3, svc.Directory().Len())
	roomByNumber(t, svc, "101")
	_, ok := svc.Directory().FindByNumber("777", "")
	assert.False(t, ok)
}

func TestOpen_ReloadsStoredDirectory(t *testing.T) {
	svc, root := importedService(t)
	room := roomByNumber(t, svc, "204")
	_, err := svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Crash Cart", Color: "red"})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	reopened := newTestService(t, root)
	assert.Equal(t, 3, reopened.Directory().Len())

	detail, err := reopened.Room(room.ID)
	require.NoError(t, err)
	require.Len(t, detail.CustomTags, 1)
	assert.Equal(t, "red", detail.CustomTags[0].Color)
	assert.Equal(t, []string{"Staff: Jane Doe"}, detail.StaffTags)
	assert.Contains(t, detail.UnifiedTags, "crash cart")
}

// ============================================================================
// Search
// ============================================================================

func TestSearch_StaffAndFilters(t *testing.T) {
	svc, _ := importedService(t)

	page := svc.Search("jane", SearchOptions{Page: 1, PerPage: 10})
	require.Len(t, page.Results, 1)
	assert.Equal(t, "204", page.Results[0].Room.Number)

	page = svc.Search("", SearchOptions{Filters: search.Filters{Building: "TOWER"}, Page: 1})
	require.Len(t, page.Results, 1)
	assert.Equal(t, "310", page.Results[0].Room.Number)

	page = svc.Search("", SearchOptions{Page: 2, PerPage: 2})
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 1)
}

func TestSuggest(t *testing.T) {
	svc, _ := importedService(t)

	assert.Contains(t, svc.Suggest("20"), "204")
	assert.NotEmpty(t, svc.Autocomplete())
}

// ============================================================================
// Tags
// ============================================================================

type recordingCollaborator struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	err     error
}

func (c *recordingCollaborator) SaveTag(_ context.Context, room models.Room, tag models.CustomTag) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, room.Identifier()+"/"+tag.Name)
	return c.err
}

func (c *recordingCollaborator) DeleteTag(_ context.Context, room models.Room, tag models.CustomTag) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, room.Identifier()+"/"+tag.Name)
	return c.err
}

func TestAddCustomTag_DuplicateRejected(t *testing.T) {
	svc, _ := importedService(t)
	room := roomByNumber(t, svc, "101")

	_, err := svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Bed"})
	require.NoError(t, err)
	_, err = svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "bed"})
	assert.ErrorIs(t, err, directory.ErrDuplicateTag)

	_, err = svc.AddCustomTag(context.Background(), 999, models.TagInput{Name: "Bed"})
	assert.ErrorIs(t, err, directory.ErrRoomNotFound)
}

func TestCustomTags_CollaboratorAndActivity(t *testing.T) {
	svc, _ := importedService(t)
	collab := &recordingCollaborator{err: errors.New("offline")}
	svc.SetCollaborator(collab)
	room := roomByNumber(t, svc, "101")

	tag, err := svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Bed"})
	require.NoError(t, err, "sharing failures must not block local changes")

	removed, err := svc.RemoveCustomTag(context.Background(), room.ID, "BED")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, removed.ID)

	assert.Equal(t, []string{"9001/Bed"}, collab.saved)
	assert.Equal(t, []string{"9001/Bed"}, collab.deleted)

	activity, err := svc.Activity(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	assert.Equal(t, "removed", activity[0].Action)

	_, err = svc.RemoveCustomTag(context.Background(), room.ID, "Bed")
	assert.ErrorIs(t, err, directory.ErrTagNotFound)
}

func TestRemoteTags_MergeAndRemove(t *testing.T) {
	svc, root := importedService(t)
	room := roomByNumber(t, svc, "310")
	_, err := svc.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Freezer"})
	require.NoError(t, err)

	resolved, ok := svc.ResolveRoom("9003")
	require.True(t, ok)
	require.NoError(t, svc.MergeRemoteTag(resolved.ID, models.CustomTag{ID: "remote-1", Name: "Freezer", Type: "simple", Color: "green", Collaborative: true}))

	tags, err := svc.CustomTags(room.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "green", tags[0].Color)
	assert.True(t, tags[0].Collaborative)

	require.NoError(t, svc.Close())
	reopened := newTestService(t, root)
	tags, err = reopened.CustomTags(room.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "remote-1", tags[0].ID)

	require.NoError(t, reopened.RemoveRemoteTag(room.ID, "freezer"))
	tags, err = reopened.CustomTags(room.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestAddStaff_StoreFailureKeepsDirectory(t *testing.T) {
	svc, _ := importedService(t)
	room := roomByNumber(t, svc, "101")
	rejectInserts(t, svc, "staff_tags")

	added, err := svc.AddStaff(context.Background(), room.ID, "Pat Lee")
	require.Error(t, err)
	assert.False(t, added)
	assert.Empty(t, svc.Directory().StaffTags(room.ID))

	_, err = svc.store.Conn().Exec(`DROP TRIGGER reject_staff_tags`)
	require.NoError(t, err)
	added, err = svc.AddStaff(context.Background(), room.ID, "Pat Lee")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestMergeRemoteTag_UnchangedIsNotLogged(t *testing.T) {
	svc, _ := importedService(t)
	room := roomByNumber(t, svc, "310")
	ctx := context.Background()
	before, err := svc.Activity(ctx, 0)
	require.NoError(t, err)

	shared := models.CustomTag{Name: "Freezer", Type: "simple", Color: "blue", Collaborative: true}
	require.NoError(t, svc.MergeRemoteTag(room.ID, shared))
	require.NoError(t, svc.MergeRemoteTag(room.ID, shared))

	activity, err := svc.Activity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, activity, len(before)+1)
	assert.Equal(t, "synced", activity[0].Action)
	tags, err := svc.CustomTags(room.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	id := tags[0].ID

	shared.Color = "red"
	require.NoError(t, svc.MergeRemoteTag(room.ID, shared))
	activity, err = svc.Activity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, activity, len(before)+2)
	tags, err = svc.CustomTags(room.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, id, tags[0].ID)
	assert.Equal(t, "red", tags[0].Color)
}

// ============================================================================
// Transfer
// ============================================================================

func TestTags_ExportImportBetweenServices(t *testing.T) {
	src, _ := importedService(t)
	room := roomByNumber(t, src, "310")
	_, err := src.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Cold Room"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportTags(&buf))

	dst, root := importedService(t)
	path := writeFile(t, root, "tags.json", buf.String())
	report, err := dst.ImportFiles(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files[0].Tags)

	tags, err := dst.CustomTags(roomByNumber(t, dst, "310").ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Cold Room", tags[0].Name)
}

func TestImportTags_StoreFailureKeepsDirectory(t *testing.T) {
	svc, _ := importedService(t)
	room := roomByNumber(t, svc, "101")
	rejectInserts(t, svc, "custom_tags")

	input := fmt.Sprintf(`{"version":"1.2","customTags":{"%d":["Cold Room","Quiet"]},"roomReference":{"%d":{"rmrecnbr":"9001"}}}`, room.ID, room.ID)
	result, err := svc.ImportTags(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Imported)
	assert.Empty(t, result.Added)
	assert.Empty(t, svc.Directory().CustomTags(room.ID))
}

func TestExportTags_NothingToExport(t *testing.T) {
	svc, _ := importedService(t)
	assert.ErrorIs(t, svc.ExportTags(&bytes.Buffer{}), transfer.ErrNothingToExport)
}

func TestSession_ExportImport(t *testing.T) {
	src, _ := importedService(t)
	room := roomByNumber(t, src, "204")
	_, err := src.AddCustomTag(context.Background(), room.ID, models.TagInput{Name: "Bed"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportSession(&buf, transfer.ViewState{Query: "exam", ResultsPerPage: 20}))

	root := t.TempDir()
	dst := newTestService(t, root)
	path := writeFile(t, root, "saved"+ingest.SessionExt, buf.String())
	_, err = dst.ImportFiles(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Equal(t, 3, dst.Directory().Len())
	detail, err := dst.Room(room.ID)
	require.NoError(t, err)
	assert.Len(t, detail.CustomTags, 1)
	assert.Equal(t, []string{"Staff: Jane Doe"}, detail.StaffTags)

	view := dst.ViewState(context.Background())
	assert.Equal(t, "exam", view.Query)
	assert.Equal(t, 20, view.ResultsPerPage)

	require.NoError(t, dst.Close())
	reopened := newTestService(t, root)
	assert.Equal(t, 3, reopened.Directory().Len())
}

func TestViewState_UnreadableIsDropped(t *testing.T) {
	svc, _ := importedService(t)
	ctx := context.Background()
	require.NoError(t, svc.store.SetMetadata(ctx, metaViewState, "{not json"))

	view := svc.ViewState(ctx)
	assert.Equal(t, config.Default().Search.ResultsPerPage, view.ResultsPerPage)
	assert.Equal(t, transfer.DefaultViewMode, view.ViewMode)

	raw, err := svc.store.GetMetadata(ctx, metaViewState)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

// ============================================================================
// Abbreviations and status
// ============================================================================

func TestAbbreviations_UnmappedAndOverride(t *testing.T) {
	svc, root := importedService(t)

	unmapped, err := svc.Unmapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Family Medicine", unmapped[0].Abbr)
	assert.Equal(t, 2, unmapped[0].Occurrences)
	assert.Contains(t, abbrs(unmapped), "XYZ")

	require.NoError(t, svc.SetAbbreviation(context.Background(), "xyz", "Cold Storage"))
	unmapped, err = svc.Unmapped(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, abbrs(unmapped), "XYZ")

	_, err = svc.ImportFiles(context.Background(), []string{filepath.Join(root, "rooms.csv")})
	require.NoError(t, err)
	assert.Equal(t, "Laboratory - Cold Storage", roomByNumber(t, svc, "310").TypeFull)

	assert.Error(t, svc.SetAbbreviation(context.Background(), "", "x"))
}

func abbrs(list []db.UnmappedAbbreviation) []string {
	out := make([]string, len(list))
	for i, u := range list {
		out[i] = u.Abbr
	}
	return out
}

func TestStatus(t *testing.T) {
	svc, _ := importedService(t)

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Rooms)
	assert.Equal(t, []string{"MAIN", "TOWER"}, st.Buildings)
	assert.Equal(t, []string{"1", "2", "3"}, st.Floors)
	assert.Equal(t, 1, st.StaffTags)
	assert.False(t, st.LastImport.IsZero())
}
