package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/db"
	"github.com/roomdir-dev/roomdir/internal/directory"
	"github.com/roomdir-dev/roomdir/internal/models"
)

// AddCustomTag creates a tag on a room. A tag whose name the room already
// carries, ignoring case, is rejected with directory.ErrDuplicateTag.
func (s *Service) AddCustomTag(ctx context.Context, roomID int, in models.TagInput) (models.CustomTag, error) {
	room, ok := s.dir.Room(roomID)
	if !ok {
		return models.CustomTag{}, fmt.Errorf("room %d: %w", roomID, directory.ErrRoomNotFound)
	}

	tag := models.NewCustomTag(in)
	if err := s.dir.AddCustomTag(roomID, tag); err != nil {
		return models.CustomTag{}, err
	}
	if err := s.store.SaveCustomTag(ctx, roomID, tag); err != nil {
		_, _ = s.dir.RemoveCustomTag(roomID, tag.ID)
		return models.CustomTag{}, err
	}

	s.logActivity(ctx, room, tag.Name, db.ActionAdded)
	if c := s.collaborator(); c != nil {
		if err := c.SaveTag(ctx, room, tag); err != nil {
			s.logger.Warn("tag saved locally but not shared",
				zap.Int("room_id", roomID), zap.String("tag", tag.Name), zap.Error(err))
		}
	}
	return tag, nil
}

// RemoveCustomTag removes a tag given its id or, failing that, its name.
func (s *Service) RemoveCustomTag(ctx context.Context, roomID int, ref string) (models.CustomTag, error) {
	room, ok := s.dir.Room(roomID)
	if !ok {
		return models.CustomTag{}, fmt.Errorf("room %d: %w", roomID, directory.ErrRoomNotFound)
	}

	tag, err := s.dir.RemoveCustomTag(roomID, ref)
	if errors.Is(err, directory.ErrTagNotFound) {
		tag, err = s.dir.RemoveCustomTagByName(roomID, ref)
	}
	if err != nil {
		return models.CustomTag{}, fmt.Errorf("tag %q on room %d: %w", ref, roomID, err)
	}
	if err := s.store.DeleteCustomTag(ctx, tag.ID); err != nil {
		return tag, err
	}

	s.logActivity(ctx, room, tag.Name, db.ActionRemoved)
	if c := s.collaborator(); c != nil {
		if err := c.DeleteTag(ctx, room, tag); err != nil {
			s.logger.Warn("tag removed locally but not shared",
				zap.Int("room_id", roomID), zap.String("tag", tag.Name), zap.Error(err))
		}
	}
	return tag, nil
}

// CustomTags lists the custom tags of a room.
func (s *Service) CustomTags(roomID int) ([]models.CustomTag, error) {
	if _, ok := s.dir.Room(roomID); !ok {
		return nil, fmt.Errorf("room %d: %w", roomID, directory.ErrRoomNotFound)
	}
	tags := s.dir.CustomTags(roomID)
	if tags == nil {
		tags = []models.CustomTag{}
	}
	return tags, nil
}

// AddStaff records a person in a room. It reports false when the person was
// already listed.
func (s *Service) AddStaff(ctx context.Context, roomID int, name string) (bool, error) {
	added, err := s.dir.AddStaffTag(roomID, name)
	if err != nil || !added {
		return added, err
	}
	if err := s.store.AddStaffTag(ctx, roomID, models.StaffTag(name)); err != nil {
		s.dir.RemoveStaffTag(roomID, name)
		return false, err
	}
	return true, nil
}

// MergeRemoteTag stores a shared tag, replacing the room's tag of the same
// name. A tag identical to the stored one is left alone.
func (s *Service) MergeRemoteTag(roomID int, tag models.CustomTag) error {
	ctx := context.Background()
	room, ok := s.dir.Room(roomID)
	if !ok {
		return directory.ErrRoomNotFound
	}
	existing, found := tagNamed(s.dir.CustomTags(roomID), tag.Name)
	if tag.ID == "" {
		if found {
			tag.ID = existing.ID
		} else {
			tag.ID = models.NewCustomTag(models.TagInput{Name: tag.Name}).ID
		}
	}
	if found && sameTag(existing, tag) {
		return nil
	}
	if _, err := s.dir.MergeCustomTag(roomID, tag); err != nil {
		return err
	}
	if err := s.store.ReplaceCustomTagByName(ctx, roomID, tag); err != nil {
		return err
	}
	s.logActivity(ctx, room, tag.Name, db.ActionSynced)
	return nil
}

// RemoveRemoteTag drops the named tag after another installation deleted it.
func (s *Service) RemoveRemoteTag(roomID int, name string) error {
	ctx := context.Background()
	room, ok := s.dir.Room(roomID)
	if !ok {
		return directory.ErrRoomNotFound
	}
	tag, err := s.dir.RemoveCustomTagByName(roomID, name)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCustomTag(ctx, tag.ID); err != nil {
		return err
	}
	s.logActivity(ctx, room, tag.Name, db.ActionRemoved)
	return nil
}

// Activity returns the most recent tag changes.
func (s *Service) Activity(ctx context.Context, limit int) ([]db.Activity, error) {
	return s.store.ListActivity(ctx, limit)
}

func tagNamed(tags []models.CustomTag, name string) (models.CustomTag, bool) {
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return models.CustomTag{}, false
}

func sameTag(a, b models.CustomTag) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Type == b.Type &&
		a.Description == b.Description && a.Link == b.Link &&
		a.Contact == b.Contact && a.ImageURL == b.ImageURL && a.Color == b.Color &&
		a.Created.Equal(b.Created) && a.IsRich == b.IsRich &&
		a.Collaborative == b.Collaborative && a.CreatedBy == b.CreatedBy
}

func (s *Service) logActivity(ctx context.Context, room models.Room, tagName, action string) {
	user := s.cfg.Collab.UserEmail
	if err := s.store.LogActivity(ctx, db.Activity{
		RoomID:         room.ID,
		RoomIdentifier: room.Identifier(),
		TagName:        tagName,
		Action:         action,
		User:           user,
		CreatedAt:      s.now(),
	}); err != nil {
		s.logger.Debug("failed to record tag activity", zap.Error(err))
	}
}
