package catalog

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/db"
	"github.com/roomdir-dev/roomdir/internal/ingest"
)

// FileReport describes what importing one file did.
type FileReport struct {
	Path       string `json:"path"`
	Kind       string `json:"kind"`
	Rooms      int    `json:"rooms,omitempty"`
	Updated    int    `json:"updated,omitempty"`
	Skipped    int    `json:"skipped,omitempty"`
	Staff      int    `json:"staff,omitempty"`
	Tags       int    `json:"tags,omitempty"`
	Duplicates int    `json:"duplicates,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ImportReport summarizes a multi-file import.
type ImportReport struct {
	Files       []FileReport `json:"files"`
	Unsupported []string     `json:"unsupported,omitempty"`
}

// ImportFiles imports every path in dependency order: sessions, room data,
// occupants, then tag files. A failing file does not stop the others; all
// failures are returned together.
func (s *Service) ImportFiles(ctx context.Context, paths []string) (*ImportReport, error) {
	s.importMu.Lock()
	defer s.importMu.Unlock()

	files, unsupported := ingest.Plan(paths)
	report := &ImportReport{Files: make([]FileReport, 0, len(files)), Unsupported: unsupported}

	var errs error
	for _, p := range unsupported {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", p, ingest.ErrUnsupportedFile))
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}

		fr, err := s.importFile(ctx, f)
		if err != nil {
			fr.Error = err.Error()
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Path, err))
			s.logger.Warn("import failed", zap.String("path", f.Path), zap.Error(err))
		} else {
			s.logger.Info("imported file",
				zap.String("path", f.Path),
				zap.String("kind", f.Kind.String()),
				zap.Int("rooms", fr.Rooms),
				zap.Int("staff", fr.Staff),
				zap.Int("tags", fr.Tags))
		}
		report.Files = append(report.Files, fr)
	}

	if len(files) > 0 {
		if err := s.store.SetTime(ctx, db.MetaLastImport, s.now()); err != nil {
			s.logger.Debug("failed to record import time", zap.Error(err))
		}
	}
	return report, errs
}

func (s *Service) importFile(ctx context.Context, f ingest.File) (FileReport, error) {
	fr := FileReport{Path: f.Path, Kind: f.Kind.String()}

	switch f.Kind {
	case ingest.KindSession:
		sess, err := s.importSessionFile(ctx, f.Path)
		if err != nil {
			return fr, err
		}
		fr.Rooms = len(sess.Rooms)
		for _, tags := range sess.Custom {
			fr.Tags += len(tags)
		}
		for _, tags := range sess.Staff {
			fr.Staff += len(tags)
		}
		return fr, nil

	case ingest.KindRooms:
		rows, err := ingest.ParseFile(f.Path)
		if err != nil {
			return fr, err
		}
		added, updated, skipped, err := s.ImportRoomRows(ctx, rows)
		fr.Rooms, fr.Updated, fr.Skipped = added, updated, skipped
		return fr, err

	case ingest.KindOccupants:
		rows, err := ingest.ParseFile(f.Path)
		if err != nil {
			return fr, err
		}
		staff, skipped, err := s.ImportOccupantRows(ctx, rows)
		fr.Staff, fr.Skipped = staff, skipped
		return fr, err

	case ingest.KindTags:
		file, err := os.Open(f.Path)
		if err != nil {
			return fr, err
		}
		defer file.Close()
		result, err := s.ImportTags(ctx, file)
		if result != nil {
			fr.Tags = result.Imported
			fr.Duplicates = result.Duplicates
			fr.Skipped = result.SkippedRooms
		}
		return fr, err
	}
	return fr, ingest.ErrUnsupportedFile
}

// ImportRoomRows normalizes room rows and merges them into the directory.
// Rooms already present are updated in place.
func (s *Service) ImportRoomRows(ctx context.Context, rows []ingest.Row) (added, updated, skipped int, err error) {
	batch := ingest.BuildRooms(rows, s.norm)
	if len(batch.Unmapped) > 0 {
		if err := s.store.AddUnmapped(ctx, batch.Unmapped); err != nil {
			return 0, 0, batch.Skipped, err
		}
	}

	before := s.dir.Snapshot()
	rooms, added := s.dir.UpsertRooms(batch.Rooms)
	if err := s.store.InsertRooms(ctx, rooms); err != nil {
		s.dir.RestoreRooms(before)
		return 0, 0, batch.Skipped, err
	}
	return added, len(rooms) - added, batch.Skipped, nil
}

// ImportOccupantRows turns occupant rows into staff tags on the rooms with
// matching record numbers. Rows naming an unknown room count as skipped.
func (s *Service) ImportOccupantRows(ctx context.Context, rows []ingest.Row) (added, skipped int, err error) {
	assignments, skipped := ingest.BuildAssignments(rows)
	for _, a := range assignments {
		room, ok := s.dir.FindByRecordNumber(a.RecordNumber)
		if !ok {
			skipped++
			continue
		}
		ok, err := s.AddStaff(ctx, room.ID, a.PersonName)
		if err != nil {
			return added, skipped, err
		}
		if ok {
			added++
		}
	}
	return added, skipped, nil
}
