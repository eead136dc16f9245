// Package daemon runs the long-lived roomdir process: the HTTP API, the data
// directory watcher and the optional collaboration sync.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/collab"
	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// ErrAlreadyRunning is returned by Run when the project's daemon is alive.
var ErrAlreadyRunning = errors.New("daemon already running")

// Daemon coordinates the catalog service with its API server, watcher and
// sync client.
type Daemon struct {
	projectRoot string
	config      *config.Config
	logger      *zap.Logger
	svc         *catalog.Service
	watcher     *Watcher
	syncer      *collab.Syncer
	server      *http.Server
	state       *StateManager
	startedAt   time.Time
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	addrMu sync.RWMutex
	addr   string
	ready  chan struct{}
}

// New opens the project's directory and prepares every component.
func New(projectRoot string, cfg *config.Config, logger *zap.Logger) (*Daemon, error) {
	info, err := os.Stat(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("project root does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", projectRoot)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	logger = logging.OrNop(logger)

	svc, err := catalog.Open(context.Background(), projectRoot, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}

	d := &Daemon{
		projectRoot: projectRoot,
		config:      cfg,
		logger:      logger,
		svc:         svc,
		state:       NewStateManager(projectRoot),
		ready:       make(chan struct{}),
	}

	if cfg.Data.Watch {
		d.watcher, err = NewWatcher(config.DataDir(projectRoot, cfg), cfg.Watcher.DebounceDuration(), logger)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
	}
	return d, nil
}

// Service returns the catalog the daemon serves.
func (d *Daemon) Service() *catalog.Service {
	return d.svc
}

// Addr returns the address the API listens on, once Ready is closed.
func (d *Daemon) Addr() string {
	d.addrMu.RLock()
	defer d.addrMu.RUnlock()
	return d.addr
}

// Ready is closed once the API server accepts connections.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Run starts every component and blocks until ctx is cancelled or a shutdown
// signal arrives.
func (d *Daemon) Run(ctx context.Context) error {
	if running, pid := d.state.IsRunning(); running && pid != os.Getpid() {
		d.release()
		return fmt.Errorf("%w with PID %d", ErrAlreadyRunning, pid)
	}
	if err := d.state.WritePID(os.Getpid()); err != nil {
		d.release()
		return err
	}
	d.startedAt = time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.cancel = cancel

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, shutdownSignals()...)
	defer signal.Stop(stopCh)

	reloadCh := make(chan os.Signal, 1)
	if sigs := reloadSignals(); len(sigs) > 0 {
		signal.Notify(reloadCh, sigs...)
		defer signal.Stop(reloadCh)
	}

	listener, err := net.Listen("tcp", d.config.Daemon.Address())
	if err != nil {
		d.cleanup()
		return fmt.Errorf("failed to listen on %s: %w", d.config.Daemon.Address(), err)
	}
	d.addrMu.Lock()
	d.addr = listener.Addr().String()
	d.addrMu.Unlock()

	d.server = &http.Server{
		Handler:           api.NewRouter(d.svc, d.config, d.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		d.logger.Info("starting API server", zap.String("addr", d.Addr()))
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	if d.watcher != nil {
		if err := d.watcher.Start(runCtx); err != nil {
			_ = d.shutdown()
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		d.wg.Add(2)
		go func() {
			defer d.wg.Done()
			d.processBatches(runCtx)
		}()
		go func() {
			defer d.wg.Done()
			d.initialImport(runCtx)
		}()
	}

	if d.config.Collab.Ready() {
		d.startSync(runCtx)
	}

	d.saveState()
	close(d.ready)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("context cancelled, shutting down")
			return d.shutdown()
		case sig := <-stopCh:
			d.logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
			return d.shutdown()
		case <-reloadCh:
			if err := d.svc.Reload(runCtx); err != nil {
				d.logger.Warn("reload failed", zap.Error(err))
			} else {
				d.logger.Info("directory reloaded", zap.Int("rooms", d.svc.Directory().Len()))
			}
		case err, ok := <-serverErrCh:
			if ok && err != nil {
				d.logger.Error("server error", zap.Error(err))
				_ = d.shutdown()
				return err
			}
			serverErrCh = nil
		}
	}
}

func (d *Daemon) startSync(ctx context.Context) {
	projectID := d.config.Collab.ProjectID
	if projectID == "" {
		projectID = collab.ProjectID(d.svc.Directory().Buildings())
	}

	syncer, err := collab.NewSyncer(d.config.Collab, projectID, d.svc, d.logger)
	if err != nil {
		d.logger.Warn("collaboration disabled", zap.Error(err))
		return
	}
	d.syncer = syncer
	d.svc.SetCollaborator(syncer)

	if err := syncer.Start(ctx); err != nil {
		d.logger.Warn("collaboration sync failed to start; local edits continue",
			zap.String("project_id", projectID), zap.Error(err))
		return
	}
	d.logger.Info("collaboration sync started", zap.String("project_id", projectID))
}

// processBatches imports each settled batch of data files.
func (d *Daemon) processBatches(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-d.watcher.Batches():
			d.importBatch(ctx, batch)
		case err := <-d.watcher.Errors():
			d.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (d *Daemon) importBatch(ctx context.Context, paths []string) {
	d.logger.Debug("importing changed files", zap.Strings("paths", paths))
	report, err := d.svc.ImportFiles(ctx, paths)
	if err != nil {
		d.logger.Warn("import finished with errors", zap.Error(err))
	}
	if report != nil {
		d.logger.Info("import complete",
			zap.Int("files", len(report.Files)),
			zap.Int("rooms", d.svc.Directory().Len()))
	}
	d.saveState()
}

// initialImport loads the data directory when the database holds no rooms.
func (d *Daemon) initialImport(ctx context.Context) {
	if d.svc.Directory().Len() > 0 {
		d.logger.Info("directory has data, skipping initial import",
			zap.Int("rooms", d.svc.Directory().Len()))
		return
	}
	files, err := ExistingFiles(d.watcher.Dir())
	if err != nil {
		d.logger.Warn("failed to list data directory", zap.Error(err))
		return
	}
	if len(files) == 0 {
		return
	}
	d.logger.Info("directory empty, importing data files", zap.Int("files", len(files)))
	d.importBatch(ctx, files)
}

func (d *Daemon) saveState() {
	st, err := d.svc.Status(context.Background())
	if err != nil {
		d.logger.Debug("failed to read status for state file", zap.Error(err))
		return
	}
	state := &DaemonState{Version: 1}
	state.Daemon.PID = os.Getpid()
	state.Daemon.StartedAt = d.startedAt
	state.Daemon.Address = d.Addr()
	state.Directory.Rooms = st.Rooms
	state.Directory.Revision = st.Revision
	state.Directory.LastImport = st.LastImport
	if err := d.state.SaveState(state); err != nil {
		d.logger.Warn("failed to save state", zap.Error(err))
	}
}

// shutdown stops every component in reverse start order.
func (d *Daemon) shutdown() error {
	d.logger.Info("shutting down daemon")

	if d.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.server.Shutdown(ctx); err != nil {
			d.logger.Warn("server shutdown error", zap.Error(err))
		}
	}
	d.cleanup()
	return nil
}

func (d *Daemon) cleanup() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	if d.syncer != nil {
		if err := d.syncer.Close(); err != nil {
			d.logger.Debug("sync close error", zap.Error(err))
		}
	}
	d.release()
	if err := d.state.RemovePID(); err != nil {
		d.logger.Warn("failed to remove PID file", zap.Error(err))
	}
}

// release stops the watcher and closes the store without touching the PID
// file.
func (d *Daemon) release() {
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("watcher stop error", zap.Error(err))
		}
	}
	if err := d.svc.Close(); err != nil {
		d.logger.Warn("database close error", zap.Error(err))
	}
}
