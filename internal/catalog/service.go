// Package catalog ties the in-memory directory to its SQLite store and
// exposes the operations the CLI, the HTTP API and the daemon share.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/db"
	"github.com/roomdir-dev/roomdir/internal/directory"
	"github.com/roomdir-dev/roomdir/internal/logging"
	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/normalize"
	"github.com/roomdir-dev/roomdir/internal/search"
)

// Collaborator publishes local tag changes to other installations.
type Collaborator interface {
	SaveTag(ctx context.Context, room models.Room, tag models.CustomTag) error
	DeleteTag(ctx context.Context, room models.Room, tag models.CustomTag) error
}

// Service is the room directory together with its persistence.
type Service struct {
	dir    *directory.Directory
	store  *db.DB
	norm   *normalize.Normalizer
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time

	importMu sync.Mutex

	collabMu sync.RWMutex
	collab   Collaborator
}

// Open opens the project database, applies migrations and loads the stored
// directory.
func Open(ctx context.Context, projectRoot string, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	store, err := db.Open(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	svc, err := New(ctx, store, cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return svc, nil
}

// New builds a service over an already migrated store.
func New(ctx context.Context, store *db.DB, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	overrides := make(map[string]string, len(cfg.Abbreviations))
	for k, v := range cfg.Abbreviations {
		overrides[k] = v
	}
	stored, err := store.ListAbbreviations(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range stored {
		overrides[k] = v
	}

	s := &Service{
		dir:    directory.New(),
		store:  store,
		norm:   normalize.New(overrides),
		cfg:    cfg,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory directory with the stored one.
func (s *Service) Reload(ctx context.Context) error {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return err
	}
	custom, err := s.store.ListCustomTags(ctx)
	if err != nil {
		return err
	}
	staff, err := s.store.ListStaffTags(ctx)
	if err != nil {
		return err
	}
	s.dir.Load(rooms, custom, staff)
	s.logger.Debug("directory loaded", zap.Int("rooms", len(rooms)))
	return nil
}

// Close closes the store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Directory returns the in-memory directory.
func (s *Service) Directory() *directory.Directory { return s.dir }

// Config returns the effective configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Revision changes whenever the directory changes.
func (s *Service) Revision() uint64 { return s.dir.Revision() }

// SetCollaborator enables publishing of tag changes. nil disables it.
func (s *Service) SetCollaborator(c Collaborator) {
	s.collabMu.Lock()
	defer s.collabMu.Unlock()
	s.collab = c
}

func (s *Service) collaborator() Collaborator {
	s.collabMu.RLock()
	defer s.collabMu.RUnlock()
	return s.collab
}

// SearchOptions narrow and page a search. PerPage 0 returns every result on
// one page.
type SearchOptions struct {
	Filters search.Filters
	Page    int
	PerPage int
}

// Search ranks the directory against query.
func (s *Service) Search(query string, opts SearchOptions) search.Page {
	results := search.Filter(query, opts.Filters, s.dir.Snapshot())
	return search.Paginate(results, opts.Page, opts.PerPage)
}

// Autocomplete returns the suggestion vocabulary of the current directory.
func (s *Service) Autocomplete() []string {
	return search.BuildAutocomplete(s.dir.Snapshot(), s.cfg.Search.AutocompleteLimit)
}

// Suggest returns completions for input.
func (s *Service) Suggest(input string) []string {
	return search.Suggest(s.Autocomplete(), input, s.cfg.Search.SuggestLimit)
}

// RoomDetail is a room with all of its tags.
type RoomDetail struct {
	Room        models.Room        `json:"room"`
	CustomTags  []models.CustomTag `json:"custom_tags"`
	StaffTags   []string           `json:"staff_tags"`
	UnifiedTags []string           `json:"unified_tags"`
}

// Room returns the room with the given id.
func (s *Service) Room(id int) (*RoomDetail, error) {
	room, ok := s.dir.Room(id)
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, directory.ErrRoomNotFound)
	}
	custom := s.dir.CustomTags(id)
	staff := s.dir.StaffTags(id)
	if custom == nil {
		custom = []models.CustomTag{}
	}
	if staff == nil {
		staff = []string{}
	}
	return &RoomDetail{
		Room:        room,
		CustomTags:  custom,
		StaffTags:   staff,
		UnifiedTags: search.UnifiedTags(room, custom, staff),
	}, nil
}

// ResolveRoom finds a room by record number, id or room number.
func (s *Service) ResolveRoom(identifier string) (models.Room, bool) {
	return s.dir.FindByIdentifier(identifier)
}
