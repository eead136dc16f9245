package directory

import (
	"strings"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// Tag slices are never modified in place so that snapshots can share them.

// AddCustomTag attaches tag to a room. A tag whose name matches an existing
// tag case-insensitively is rejected with ErrDuplicateTag.
func (d *Directory) AddCustomTag(roomID int, tag models.CustomTag) error {
	if strings.TrimSpace(tag.Name) == "" {
		return ErrInvalidTag
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[roomID]; !ok {
		return ErrRoomNotFound
	}
	for _, existing := range d.custom[roomID] {
		if strings.EqualFold(existing.Name, tag.Name) {
			return ErrDuplicateTag
		}
	}

	d.custom[roomID] = appendTag(d.custom[roomID], tag)
	d.bump()
	return nil
}

// MergeCustomTag replaces the room's tag with the same name, or appends tag
// when there is none. It reports whether a tag was replaced.
func (d *Directory) MergeCustomTag(roomID int, tag models.CustomTag) (bool, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return false, ErrInvalidTag
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[roomID]; !ok {
		return false, ErrRoomNotFound
	}

	tags := d.custom[roomID]
	for i, existing := range tags {
		if strings.EqualFold(existing.Name, tag.Name) {
			updated := append([]models.CustomTag(nil), tags...)
			updated[i] = tag
			d.custom[roomID] = updated
			d.bump()
			return true, nil
		}
	}

	d.custom[roomID] = appendTag(tags, tag)
	d.bump()
	return false, nil
}

// UpdateCustomTag replaces the tag with the same id.
func (d *Directory) UpdateCustomTag(roomID int, tag models.CustomTag) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tags := d.custom[roomID]
	for i, existing := range tags {
		if existing.ID == tag.ID {
			updated := append([]models.CustomTag(nil), tags...)
			updated[i] = tag
			d.custom[roomID] = updated
			d.bump()
			return nil
		}
	}
	return ErrTagNotFound
}

// RemoveCustomTag deletes the tag with the given id and returns it.
func (d *Directory) RemoveCustomTag(roomID int, tagID string) (models.CustomTag, error) {
	return d.removeTag(roomID, func(t models.CustomTag) bool { return t.ID == tagID })
}

// RemoveCustomTagByName deletes the tag whose name matches case-insensitively.
func (d *Directory) RemoveCustomTagByName(roomID int, name string) (models.CustomTag, error) {
	return d.removeTag(roomID, func(t models.CustomTag) bool { return strings.EqualFold(t.Name, name) })
}

func (d *Directory) removeTag(roomID int, match func(models.CustomTag) bool) (models.CustomTag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[roomID]; !ok {
		return models.CustomTag{}, ErrRoomNotFound
	}

	tags := d.custom[roomID]
	for i, t := range tags {
		if !match(t) {
			continue
		}
		remaining := make([]models.CustomTag, 0, len(tags)-1)
		remaining = append(remaining, tags[:i]...)
		remaining = append(remaining, tags[i+1:]...)
		if len(remaining) == 0 {
			delete(d.custom, roomID)
		} else {
			d.custom[roomID] = remaining
		}
		d.bump()
		return t, nil
	}
	return models.CustomTag{}, ErrTagNotFound
}

// CustomTags returns the room's custom tags.
func (d *Directory) CustomTags(roomID int) []models.CustomTag {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.custom[roomID]
}

// AllCustomTags returns every room's custom tags keyed by room id.
func (d *Directory) AllCustomTags() map[int][]models.CustomTag {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[int][]models.CustomTag, len(d.custom))
	for id, tags := range d.custom {
		out[id] = tags
	}
	return out
}

// CustomTagCount returns the total number of custom tags.
func (d *Directory) CustomTagCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, tags := range d.custom {
		n += len(tags)
	}
	return n
}

// AddStaffTag records a person against a room. It reports false when the
// staff tag is already present.
func (d *Directory) AddStaffTag(roomID int, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrInvalidTag
	}
	tag := models.StaffTag(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[roomID]; !ok {
		return false, ErrRoomNotFound
	}
	for _, existing := range d.staff[roomID] {
		if existing == tag {
			return false, nil
		}
	}
	tags := d.staff[roomID]
	updated := make([]string, len(tags), len(tags)+1)
	copy(updated, tags)
	d.staff[roomID] = append(updated, tag)
	d.bump()
	return true, nil
}

// RemoveStaffTag deletes a staff tag added for name. It reports whether one
// was present.
func (d *Directory) RemoveStaffTag(roomID int, name string) bool {
	tag := models.StaffTag(strings.TrimSpace(name))

	d.mu.Lock()
	defer d.mu.Unlock()

	tags := d.staff[roomID]
	for i, existing := range tags {
		if existing != tag {
			continue
		}
		remaining := make([]string, 0, len(tags)-1)
		remaining = append(remaining, tags[:i]...)
		remaining = append(remaining, tags[i+1:]...)
		if len(remaining) == 0 {
			delete(d.staff, roomID)
		} else {
			d.staff[roomID] = remaining
		}
		d.bump()
		return true
	}
	return false
}

// StaffTags returns the room's staff tags.
func (d *Directory) StaffTags(roomID int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.staff[roomID]
}

// AllStaffTags returns every room's staff tags keyed by room id.
func (d *Directory) AllStaffTags() map[int][]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[int][]string, len(d.staff))
	for id, tags := range d.staff {
		out[id] = tags
	}
	return out
}

func appendTag(tags []models.CustomTag, tag models.CustomTag) []models.CustomTag {
	updated := make([]models.CustomTag, len(tags), len(tags)+1)
	copy(updated, tags)
	return append(updated, tag)
}
