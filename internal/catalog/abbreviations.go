package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/roomdir-dev/roomdir/internal/db"
)

// SetAbbreviation maps abbr to label for future imports. Rooms already in the
// directory keep their labels until their source file is imported again.
func (s *Service) SetAbbreviation(ctx context.Context, abbr, label string) error {
	abbr = strings.TrimSpace(abbr)
	label = strings.TrimSpace(label)
	if abbr == "" || label == "" {
		return fmt.Errorf("abbreviation and label are required")
	}
	if err := s.store.SetAbbreviation(ctx, strings.ToUpper(abbr), label); err != nil {
		return err
	}
	s.norm.SetOverride(abbr, label)
	return nil
}

// Abbreviations returns the user mappings.
func (s *Service) Abbreviations() map[string]string {
	return s.norm.Overrides()
}

// Unmapped returns source abbreviations that had no label, most frequent
// first.
func (s *Service) Unmapped(ctx context.Context) ([]db.UnmappedAbbreviation, error) {
	return s.store.ListUnmapped(ctx)
}
