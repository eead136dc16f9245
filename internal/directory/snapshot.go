package directory

import "github.com/roomdir-dev/roomdir/internal/models"

// Snapshot is an immutable view of the directory taken under the read lock.
type Snapshot struct {
	rooms    []models.Room
	custom   map[int][]models.CustomTag
	staff    map[int][]string
	revision uint64
}

// Snapshot captures the current rooms and tags.
func (d *Directory) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := &Snapshot{
		rooms:    append([]models.Room(nil), d.rooms...),
		custom:   make(map[int][]models.CustomTag, len(d.custom)),
		staff:    make(map[int][]string, len(d.staff)),
		revision: d.revision,
	}
	for id, tags := range d.custom {
		s.custom[id] = tags
	}
	for id, tags := range d.staff {
		s.staff[id] = tags
	}
	return s
}

func (s *Snapshot) Rooms() []models.Room                     { return s.rooms }
func (s *Snapshot) CustomTags(roomID int) []models.CustomTag { return s.custom[roomID] }
func (s *Snapshot) StaffTags(roomID int) []string            { return s.staff[roomID] }

// Revision is the directory revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 { return s.revision }
