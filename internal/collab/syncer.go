package collab

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/debounce"
	"github.com/roomdir-dev/roomdir/internal/logging"
	"github.com/roomdir-dev/roomdir/internal/models"
)

// Target is the local directory the syncer keeps up to date.
type Target interface {
	ResolveRoom(identifier string) (models.Room, bool)
	MergeRemoteTag(roomID int, tag models.CustomTag) error
	RemoveRemoteTag(roomID int, name string) error
}

// Syncer pushes local tag changes to the backend and applies remote ones.
type Syncer struct {
	client   *Client
	realtime *Realtime
	target   Target
	resync   *debounce.Debouncer
	logger   *zap.Logger

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSyncer creates a syncer for projectID. The realtime channel is only
// used when cfg.RealtimeURL is set.
func NewSyncer(cfg config.CollabConfig, projectID string, target Target, logger *zap.Logger) (*Syncer, error) {
	logger = logging.OrNop(logger).With(zap.String("project_id", projectID))

	s := &Syncer{
		client: NewClient(cfg, projectID, logger),
		target: target,
		resync: debounce.New(cfg.ResyncDebounce()),
		logger: logger,
	}
	if cfg.RealtimeURL != "" {
		rt, err := NewRealtime(cfg, projectID, logger)
		if err != nil {
			return nil, err
		}
		s.realtime = rt
	}
	return s, nil
}

// ProjectID returns the shared project id.
func (s *Syncer) ProjectID() string { return s.client.ProjectID() }

// Start joins the project, pulls the shared tags and, when configured,
// listens on the realtime channel until ctx is cancelled.
func (s *Syncer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.baseCtx = ctx
	s.cancel = cancel
	s.mu.Unlock()

	if err := s.client.JoinSession(ctx); err != nil {
		s.logger.Warn("failed to record collaboration session", zap.Error(err))
	}
	if _, err := s.Resync(ctx); err != nil {
		return err
	}

	if s.realtime == nil {
		return nil
	}
	if err := s.realtime.Connect(ctx); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.realtime.Listen(ctx, s.handle); err != nil {
			s.logger.Warn("realtime listener stopped", zap.Error(err))
		}
	}()
	return nil
}

// Close stops listening and cancels any pending resync.
func (s *Syncer) Close() error {
	s.resync.Cancel()
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	var err error
	if s.realtime != nil {
		err = s.realtime.Close()
	}
	s.wg.Wait()
	return err
}

// Resync merges every active shared tag into the directory. Tags on rooms
// that are not loaded locally are skipped. It returns the number merged.
func (s *Syncer) Resync(ctx context.Context) (int, error) {
	tags, err := s.client.ListTags(ctx)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, remote := range tags {
		room, ok := s.target.ResolveRoom(remote.RoomIdentifier)
		if !ok {
			continue
		}
		if err := s.target.MergeRemoteTag(room.ID, remote.CustomTag()); err != nil {
			s.logger.Warn("failed to merge shared tag",
				zap.String("room", remote.RoomIdentifier),
				zap.String("tag", remote.TagName),
				zap.Error(err))
			continue
		}
		merged++
	}

	s.logger.Info("synced shared tags", zap.Int("received", len(tags)), zap.Int("merged", merged))
	return merged, nil
}

// SaveTag publishes a tag added on room.
func (s *Syncer) SaveTag(ctx context.Context, room models.Room, tag models.CustomTag) error {
	identifier := room.Identifier()
	remote := NewRemoteTag(identifier, tag, s.client.User(), s.client.ProjectID())
	if err := s.client.UpsertTag(ctx, remote); err != nil {
		return err
	}

	s.announce(EventTagUpdated, Event{RoomIdentifier: identifier, TagName: tag.Name, Tag: &tag, User: s.client.User()})
	if err := s.client.LogActivity(ctx, ActivityEntry{
		RoomIdentifier: identifier,
		Action:         "added",
		TagName:        tag.Name,
		NewData:        &remote,
	}); err != nil {
		s.logger.Debug("failed to log shared activity", zap.Error(err))
	}
	return nil
}

// DeleteTag withdraws a tag removed from room.
func (s *Syncer) DeleteTag(ctx context.Context, room models.Room, tag models.CustomTag) error {
	identifier := room.Identifier()
	if err := s.client.DeactivateTag(ctx, identifier, tag.Name); err != nil {
		return err
	}

	s.announce(EventTagDeleted, Event{RoomIdentifier: identifier, TagName: tag.Name, User: s.client.User()})
	if err := s.client.LogActivity(ctx, ActivityEntry{
		RoomIdentifier: identifier,
		Action:         "deleted",
		TagName:        tag.Name,
		OldData:        &tag,
	}); err != nil {
		s.logger.Debug("failed to log shared activity", zap.Error(err))
	}
	return nil
}

func (s *Syncer) announce(kind string, ev Event) {
	if s.realtime == nil {
		return
	}
	if err := s.realtime.Broadcast(kind, ev); err != nil {
		s.logger.Debug("failed to broadcast tag change", zap.String("event", kind), zap.Error(err))
	}
}

func (s *Syncer) handle(ev Event) {
	if ev.Kind != EventDatabaseChange && ev.User.Email != "" && ev.User.Email == s.client.User().Email {
		return
	}

	switch ev.Kind {
	case EventTagUpdated:
		// The row change that follows triggers the resync.
		s.logger.Info("remote tag added", zap.String("user", ev.User.Name), zap.String("tag", ev.TagName))
	case EventTagDeleted:
		room, ok := s.target.ResolveRoom(ev.RoomIdentifier)
		if !ok {
			return
		}
		if err := s.target.RemoveRemoteTag(room.ID, ev.TagName); err != nil {
			s.logger.Debug("remote deletion not applied", zap.String("tag", ev.TagName), zap.Error(err))
			return
		}
		s.logger.Info("remote tag removed", zap.String("user", ev.User.Name), zap.String("tag", ev.TagName))
	case EventDatabaseChange:
		s.resync.Trigger(s.runResync)
	}
}

func (s *Syncer) runResync() {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Resync(ctx); err != nil {
		s.logger.Warn("resync failed", zap.Error(err))
	}
}
