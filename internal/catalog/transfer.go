package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/db"
	"github.com/roomdir-dev/roomdir/internal/transfer"
)

// metaViewState holds the view state of the last imported session.
const metaViewState = "view_state"

// ExportTags writes every custom tag as a portable tags file.
func (s *Service) ExportTags(w io.Writer) error {
	file, err := transfer.ExportTags(s.dir, s.now())
	if err != nil {
		return err
	}
	return transfer.WriteTags(w, file)
}

// ImportTags attaches the tags of a tags file to the matching rooms.
func (s *Service) ImportTags(ctx context.Context, r io.Reader) (*transfer.ImportResult, error) {
	result, err := transfer.ImportTags(r, s.dir)
	if result == nil {
		return nil, err
	}
	for i, added := range result.Added {
		if serr := s.store.SaveCustomTag(ctx, added.RoomID, added.Tag); serr != nil {
			for _, unsaved := range result.Added[i:] {
				_, _ = s.dir.RemoveCustomTag(unsaved.RoomID, unsaved.Tag.ID)
			}
			result.Added = result.Added[:i]
			result.Imported = i
			return result, serr
		}
		if room, ok := s.dir.Room(added.RoomID); ok {
			s.logActivity(ctx, room, added.Tag.Name, db.ActionAdded)
		}
	}
	return result, err
}

// ExportSession writes the whole directory and view as a session file.
func (s *Service) ExportSession(w io.Writer, view transfer.ViewState) error {
	return transfer.ExportSession(w, s.dir, view, s.now())
}

// ImportSession replaces the directory with the content of a session file.
func (s *Service) ImportSession(ctx context.Context, r io.Reader) (*transfer.Session, error) {
	sess, err := transfer.ReadSession(r)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceAll(ctx, sess.Rooms, sess.Custom, sess.Staff); err != nil {
		return nil, err
	}
	s.dir.Load(sess.Rooms, sess.Custom, sess.Staff)

	if raw, err := json.Marshal(sess.View); err == nil {
		if err := s.store.SetMetadata(ctx, metaViewState, string(raw)); err != nil {
			s.logger.Debug("failed to store view state", zap.Error(err))
		}
	}
	return sess, nil
}

func (s *Service) importSessionFile(ctx context.Context, path string) (*transfer.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.ImportSession(ctx, f)
}

// ViewState returns the view state saved by the last session import, or the
// configured defaults.
func (s *Service) ViewState(ctx context.Context) transfer.ViewState {
	view := transfer.ViewState{
		ResultsPerPage: s.cfg.Search.ResultsPerPage,
		ViewMode:       transfer.DefaultViewMode,
	}
	raw, err := s.store.GetMetadata(ctx, metaViewState)
	if err != nil || raw == "" {
		return view
	}
	var saved transfer.ViewState
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		s.logger.Debug("dropping unreadable view state", zap.Error(err))
		if err := s.store.DeleteMetadata(ctx, metaViewState); err != nil {
			s.logger.Debug("failed to drop view state", zap.Error(err))
		}
		return view
	}
	return saved
}

// SaveViewState stores the filters, query and page size to restore later.
func (s *Service) SaveViewState(ctx context.Context, view transfer.ViewState) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	return s.store.SetMetadata(ctx, metaViewState, string(raw))
}
