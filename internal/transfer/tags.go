// Package transfer reads and writes the portable tag export and session
// files.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/roomdir-dev/roomdir/internal/directory"
	"github.com/roomdir-dev/roomdir/internal/models"
)

const TagsVersion = "1.2"

var (
	// ErrInvalidTagsFile is returned when a tags file has no customTags object.
	ErrInvalidTagsFile = errors.New("invalid tags file: missing customTags")
	// ErrNothingToExport is returned when there is nothing to write.
	ErrNothingToExport = errors.New("nothing to export")
)

// RoomReference identifies a room independently of its local id.
type RoomReference struct {
	Number       string `json:"rmnbr"`
	TypeFull     string `json:"typeFull"`
	RecordNumber string `json:"rmrecnbr"`
	Building     string `json:"building"`
}

// TagsFile is the custom tag export format. Keys are room ids.
type TagsFile struct {
	Version       string                        `json:"version"`
	Timestamp     time.Time                     `json:"timestamp"`
	CustomTags    map[string][]models.CustomTag `json:"customTags"`
	RoomReference map[string]RoomReference      `json:"roomReference"`
}

// TagSource is the read side needed to export tags.
type TagSource interface {
	Room(id int) (models.Room, bool)
	AllCustomTags() map[int][]models.CustomTag
}

// ExportTags collects every custom tag together with references that let
// another installation find the rooms again.
func ExportTags(src TagSource, now time.Time) (*TagsFile, error) {
	all := src.AllCustomTags()
	if len(all) == 0 {
		return nil, ErrNothingToExport
	}

	file := &TagsFile{
		Version:       TagsVersion,
		Timestamp:     now.UTC(),
		CustomTags:    make(map[string][]models.CustomTag, len(all)),
		RoomReference: make(map[string]RoomReference, len(all)),
	}
	for id, tags := range all {
		key := strconv.Itoa(id)
		file.CustomTags[key] = tags
		if room, ok := src.Room(id); ok {
			file.RoomReference[key] = RoomReference{
				Number:       room.Number,
				TypeFull:     room.TypeFull,
				RecordNumber: room.RecordNumber,
				Building:     room.BuildingShort,
			}
		}
	}
	return file, nil
}

// WriteTags encodes file as indented JSON.
func WriteTags(w io.Writer, file *TagsFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to write tags: %w", err)
	}
	return nil
}

// rawTagsFile keeps tag entries undecoded so that bare names and objects
// can both be accepted.
type rawTagsFile struct {
	Version       string                       `json:"version"`
	CustomTags    map[string][]json.RawMessage `json:"customTags"`
	RoomReference map[string]RoomReference     `json:"roomReference"`
}

// TagTarget is the directory side of a tag import.
type TagTarget interface {
	Room(id int) (models.Room, bool)
	FindByRecordNumber(rec string) (models.Room, bool)
	FindByNumber(number, building string) (models.Room, bool)
	AddCustomTag(roomID int, tag models.CustomTag) error
}

// AddedTag is one tag attached by an import.
type AddedTag struct {
	RoomID int
	Tag    models.CustomTag
}

// ImportResult summarizes a tag import.
type ImportResult struct {
	Imported   int
	Duplicates int
	// SkippedRooms counts entries whose room could not be found.
	SkippedRooms int
	Added        []AddedTag
}

// ImportTags reads a tags file and attaches its tags to the matching rooms
// in dst. Tags the room already carries are skipped.
func ImportTags(r io.Reader, dst TagTarget) (*ImportResult, error) {
	var file rawTagsFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTagsFile, err)
	}
	if file.CustomTags == nil {
		return nil, ErrInvalidTagsFile
	}

	keys := make([]string, 0, len(file.CustomTags))
	for k := range file.CustomTags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &ImportResult{}
	for _, key := range keys {
		ref, hasRef := file.RoomReference[key]
		room, ok := locateRoom(dst, key, ref, hasRef)
		if !ok {
			result.SkippedRooms++
			continue
		}

		for _, raw := range file.CustomTags[key] {
			tag, err := decodeTag(raw, false)
			if err != nil || tag.Name == "" {
				continue
			}
			err = dst.AddCustomTag(room.ID, tag)
			switch {
			case err == nil:
				result.Imported++
				result.Added = append(result.Added, AddedTag{RoomID: room.ID, Tag: tag})
			case errors.Is(err, directory.ErrDuplicateTag):
				result.Duplicates++
			default:
				return result, fmt.Errorf("failed to add tag %q to room %d: %w", tag.Name, room.ID, err)
			}
		}
	}
	return result, nil
}

// locateRoom tries the record number, then the exported id, then the room
// number within its building, then the room number alone.
func locateRoom(dst TagTarget, key string, ref RoomReference, hasRef bool) (models.Room, bool) {
	if hasRef && ref.RecordNumber != "" {
		if room, ok := dst.FindByRecordNumber(ref.RecordNumber); ok {
			return room, true
		}
	}
	if id, err := strconv.Atoi(key); err == nil {
		if room, ok := dst.Room(id); ok {
			return room, true
		}
	}
	if !hasRef || ref.Number == "" {
		return models.Room{}, false
	}
	if ref.Building != "" {
		if room, ok := dst.FindByNumber(ref.Number, ref.Building); ok {
			return room, true
		}
	}
	return dst.FindByNumber(ref.Number, "")
}
