package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/collab"
	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/daemon"
	"github.com/roomdir-dev/roomdir/internal/logging"
	"github.com/roomdir-dev/roomdir/internal/models"
)

// LoadMergedConfig loads and merges global and project configurations.
// Returns the merged config with project values taking precedence over global values.
func LoadMergedConfig(projectRoot string) (*config.Config, error) {
	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}

	loader := config.NewLoader(projectRoot)
	if !loader.Exists() {
		return nil, ErrNotInitialized()
	}
	projectCfg, err := loader.Load()
	if err != nil {
		return nil, ErrConfigInvalid(err)
	}

	merged := config.MergeConfigs(globalCfg, projectCfg)
	if err := config.ValidateOrError(merged); err != nil {
		return nil, ErrConfigInvalid(err)
	}
	return merged, nil
}

// newLogger builds the CLI logger. Only warnings reach the terminal unless
// --verbose is set.
func newLogger() *zap.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console", "rd")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// workspace is an opened project: its merged config and catalog.
type workspace struct {
	root   string
	cfg    *config.Config
	svc    *catalog.Service
	syncer *collab.Syncer
	logger *zap.Logger
}

// openWorkspace opens the catalog of the project selected by --project.
// Tag changes are shared when collaboration is configured.
func openWorkspace(ctx context.Context) (*workspace, error) {
	root := GetProjectRoot()
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, ErrInvalidProjectRoot(root)
	}

	cfg, err := LoadMergedConfig(root)
	if err != nil {
		return nil, err
	}

	logger := newLogger()
	svc, err := catalog.Open(ctx, root, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}

	ws := &workspace{root: root, cfg: cfg, svc: svc, logger: logger}
	if cfg.Collab.Ready() {
		ws.attachSyncer()
	}
	return ws, nil
}

func (w *workspace) attachSyncer() {
	projectID := w.cfg.Collab.ProjectID
	if projectID == "" {
		projectID = collab.ProjectID(w.svc.Directory().Buildings())
	}
	syncer, err := collab.NewSyncer(w.cfg.Collab, projectID, w.svc, w.logger)
	if err != nil {
		w.logger.Warn("collaboration disabled", zap.Error(err))
		return
	}
	w.syncer = syncer
	w.svc.SetCollaborator(syncer)
}

// Close releases the sync client and the database.
func (w *workspace) Close() error {
	var err error
	if w.syncer != nil {
		err = multierr.Append(err, w.syncer.Close())
	}
	err = multierr.Append(err, w.svc.Close())
	_ = w.logger.Sync()
	return err
}

// notifyDaemon asks a running daemon to reload after the CLI changed the
// database. It reports whether a daemon was signalled.
func (w *workspace) notifyDaemon() bool {
	running, pid := daemon.NewStateManager(w.root).IsRunning()
	if !running {
		return false
	}
	if err := daemon.ReloadProcess(pid); err != nil {
		w.logger.Debug("failed to signal daemon", zap.Int("pid", pid), zap.Error(err))
		return false
	}
	return true
}

// resolveRoom finds a room by record number, id or room number.
func (w *workspace) resolveRoom(identifier string) (models.Room, error) {
	if w.svc.Directory().Len() == 0 {
		return models.Room{}, ErrEmptyDirectory()
	}
	room, ok := w.svc.ResolveRoom(identifier)
	if !ok {
		return models.Room{}, ErrRoomNotFound(identifier)
	}
	return room, nil
}

// withWorkspace opens the workspace, runs fn and closes it again.
func withWorkspace(ctx context.Context, fn func(*workspace) error) (err error) {
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ws)
}
