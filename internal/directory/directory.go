// Package directory holds the in-memory room directory: rooms, their custom
// tags and their staff tags.
package directory

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/roomdir-dev/roomdir/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrTagNotFound  = errors.New("tag not found")
	ErrDuplicateTag = errors.New("tag already exists on room")
	ErrInvalidTag   = errors.New("tag name is required")
)

// Directory is safe for concurrent use. Tag collections are keyed by room id.
type Directory struct {
	mu       sync.RWMutex
	rooms    []models.Room
	index    map[int]int
	custom   map[int][]models.CustomTag
	staff    map[int][]string
	nextID   int
	revision uint64
}

// New creates an empty directory.
func New() *Directory {
	d := &Directory{}
	d.reset()
	return d
}

func (d *Directory) reset() {
	d.rooms = nil
	d.index = make(map[int]int)
	d.custom = make(map[int][]models.CustomTag)
	d.staff = make(map[int][]string)
	d.nextID = 0
}

func (d *Directory) bump() {
	d.revision++
}

// Revision changes on every mutation.
func (d *Directory) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// AddRooms appends rooms, assigning sequential ids, and returns them with ids
// set.
func (d *Directory) AddRooms(batch []models.Room) []models.Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := make([]models.Room, len(batch))
	for i, room := range batch {
		room.ID = d.nextID
		d.nextID++
		d.index[room.ID] = len(d.rooms)
		d.rooms = append(d.rooms, room)
		added[i] = room
	}
	if len(batch) > 0 {
		d.bump()
	}
	return added
}

// UpsertRooms merges a batch into the directory. A room with the same record
// number as an existing room, or with the same number and building when it
// has no record number, replaces that room and keeps its id and tags. Other
// rooms are appended. It returns the batch with ids set and how many rooms
// were new.
func (d *Directory) UpsertRooms(batch []models.Room) ([]models.Room, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byKey := make(map[string]int, len(d.rooms))
	for i := range d.rooms {
		byKey[roomKey(&d.rooms[i])] = i
	}

	out := make([]models.Room, len(batch))
	added := 0
	for i, room := range batch {
		k := roomKey(&room)
		if pos, ok := byKey[k]; ok {
			room.ID = d.rooms[pos].ID
			d.rooms[pos] = room
		} else {
			room.ID = d.nextID
			d.nextID++
			d.index[room.ID] = len(d.rooms)
			byKey[k] = len(d.rooms)
			d.rooms = append(d.rooms, room)
			added++
		}
		out[i] = room
	}
	if len(batch) > 0 {
		d.bump()
	}
	return out, added
}

func roomKey(r *models.Room) string {
	if r.RecordNumber != "" {
		return "rec\x00" + r.RecordNumber
	}
	return "num\x00" + r.Building + "\x00" + r.Number
}

// Load replaces the whole directory with rooms that already carry ids.
func (d *Directory) Load(rooms []models.Room, custom map[int][]models.CustomTag, staff map[int][]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reset()
	for _, room := range rooms {
		d.index[room.ID] = len(d.rooms)
		d.rooms = append(d.rooms, room)
		if room.ID >= d.nextID {
			d.nextID = room.ID + 1
		}
	}
	for id, tags := range custom {
		if _, ok := d.index[id]; ok && len(tags) > 0 {
			d.custom[id] = append([]models.CustomTag(nil), tags...)
		}
	}
	for id, tags := range staff {
		if _, ok := d.index[id]; ok && len(tags) > 0 {
			d.staff[id] = append([]string(nil), tags...)
		}
	}
	d.bump()
}

// RestoreRooms puts the rooms of snap back, undoing later room upserts.
// Tags of rooms that still exist are kept; tags of rooms that no longer
// exist are dropped.
func (d *Directory) RestoreRooms(snap *Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	custom, staff := d.custom, d.staff
	d.reset()
	for _, room := range snap.rooms {
		d.index[room.ID] = len(d.rooms)
		d.rooms = append(d.rooms, room)
		if room.ID >= d.nextID {
			d.nextID = room.ID + 1
		}
	}
	for id, tags := range custom {
		if _, ok := d.index[id]; ok {
			d.custom[id] = tags
		}
	}
	for id, tags := range staff {
		if _, ok := d.index[id]; ok {
			d.staff[id] = tags
		}
	}
	d.bump()
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// Rooms returns a copy of the room list in insertion order.
func (d *Directory) Rooms() []models.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Room(nil), d.rooms...)
}

// Room looks up a room by id.
func (d *Directory) Room(id int) (models.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[id]
	if !ok {
		return models.Room{}, false
	}
	return d.rooms[i], true
}

// FindByRecordNumber returns the first room with the given record number.
func (d *Directory) FindByRecordNumber(rec string) (models.Room, bool) {
	return d.find(func(r *models.Room) bool { return rec != "" && r.RecordNumber == rec })
}

// FindByNumber returns the first room with the given room number, restricted
// to building when it is not empty. building may be the full or the short
// building name.
func (d *Directory) FindByNumber(number, building string) (models.Room, bool) {
	return d.find(func(r *models.Room) bool {
		if number == "" || r.Number != number {
			return false
		}
		return building == "" || r.Building == building || r.BuildingShort == building
	})
}

// FindByIdentifier resolves an external room identifier: record number first,
// then directory id, then room number.
func (d *Directory) FindByIdentifier(identifier string) (models.Room, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return models.Room{}, false
	}
	if room, ok := d.FindByRecordNumber(identifier); ok {
		return room, true
	}
	if id, err := strconv.Atoi(identifier); err == nil {
		if room, ok := d.Room(id); ok {
			return room, true
		}
	}
	return d.FindByNumber(identifier, "")
}

func (d *Directory) find(pred func(*models.Room) bool) (models.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.rooms {
		if pred(&d.rooms[i]) {
			return d.rooms[i], true
		}
	}
	return models.Room{}, false
}

// Buildings returns the distinct building names, sorted.
func (d *Directory) Buildings() []string {
	return d.distinct(func(r *models.Room) []string { return []string{r.Building} }, sortStrings)
}

// Floors returns the distinct floors, numeric floors first in numeric order.
func (d *Directory) Floors() []string {
	return d.distinct(func(r *models.Room) []string { return []string{r.Floor} }, sortFloors)
}

// CategoryTags returns the distinct system tags, sorted.
func (d *Directory) CategoryTags() []string {
	return d.distinct(func(r *models.Room) []string { return r.Tags }, sortStrings)
}

func (d *Directory) distinct(values func(*models.Room) []string, order func([]string)) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]bool)
	out := []string{}
	for i := range d.rooms {
		for _, v := range values(&d.rooms[i]) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	order(out)
	return out
}

func sortStrings(s []string) { sort.Strings(s) }

func sortFloors(s []string) {
	sort.SliceStable(s, func(i, j int) bool {
		a, errA := strconv.Atoi(s[i])
		b, errB := strconv.Atoi(s[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return s[i] < s[j]
	})
}
