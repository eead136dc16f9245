package catalog

import (
	"context"
	"time"

	"github.com/roomdir-dev/roomdir/internal/db"
)

// Status summarizes the directory.
type Status struct {
	Rooms      int       `json:"rooms"`
	Buildings  []string  `json:"buildings"`
	Floors     []string  `json:"floors"`
	Categories []string  `json:"categories"`
	CustomTags int       `json:"custom_tags"`
	StaffTags  int       `json:"staff_tags"`
	Unmapped   int       `json:"unmapped_abbreviations"`
	Revision   uint64    `json:"revision"`
	LastImport time.Time `json:"last_import,omitempty"`
	Database   string    `json:"database"`
}

// Status reports what the directory holds.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	st := &Status{
		Rooms:      s.dir.Len(),
		Buildings:  s.dir.Buildings(),
		Floors:     s.dir.Floors(),
		Categories: s.dir.CategoryTags(),
		CustomTags: s.dir.CustomTagCount(),
		Revision:   s.dir.Revision(),
		Database:   s.store.Path(),
	}
	for _, tags := range s.dir.AllStaffTags() {
		st.StaffTags += len(tags)
	}

	unmapped, err := s.store.ListUnmapped(ctx)
	if err != nil {
		return nil, err
	}
	st.Unmapped = len(unmapped)

	if st.LastImport, err = s.store.GetTime(ctx, db.MetaLastImport); err != nil {
		return nil, err
	}
	return st, nil
}
