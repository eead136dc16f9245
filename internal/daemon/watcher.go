package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/debounce"
	"github.com/roomdir-dev/roomdir/internal/ingest"
	"github.com/roomdir-dev/roomdir/internal/logging"
)

// lockRetries is how often a settled file is retried before it is skipped.
const lockRetries = 5

// Watcher watches the data directory and emits batches of importable files.
// Each file must be quiet for the debounce window before it joins a batch;
// files that settle close together are emitted in the same batch so the
// importer can order them.
type Watcher struct {
	dir       string
	logger    *zap.Logger
	fsWatcher *fsnotify.Watcher
	settle    *debounce.Group
	flush     *debounce.Debouncer
	batches   chan []string
	errors    chan error

	readyMu sync.Mutex
	ready   map[string]struct{}

	done      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewWatcher creates a watcher over dir. The directory is created when
// missing so a fresh project can start watching before any data arrives.
func NewWatcher(dir string, delay time.Duration, logger *zap.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		dir:       dir,
		logger:    logging.OrNop(logger).Named("watcher"),
		fsWatcher: fsWatcher,
		settle:    debounce.NewGroup(delay),
		flush:     debounce.New(delay),
		batches:   make(chan []string, 16),
		errors:    make(chan error, 10),
		ready:     make(map[string]struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once every directory is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	if err := w.addRecursive(w.dir); err != nil {
		return err
	}

	w.startOnce.Do(func() { go w.processEvents() })
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping inaccessible path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipName(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			w.settle.Stop()
			w.flush.Cancel()
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name
	if skipName(filepath.Base(path)) {
		return
	}
	// Removed files have nothing to import.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			_ = w.addRecursive(path)
		}
		return
	}
	if ingest.Classify(path) == ingest.KindUnsupported {
		w.logger.Debug("ignoring unsupported file", zap.String("path", path))
		return
	}

	w.settle.Trigger(path, func() { w.markReady(path) })
}

func (w *Watcher) markReady(path string) {
	if err := waitUnlocked(path, lockRetries); err != nil {
		w.logger.Warn("file still locked, skipping until next change",
			zap.String("path", path), zap.Error(err))
		return
	}

	w.readyMu.Lock()
	w.ready[path] = struct{}{}
	w.readyMu.Unlock()

	w.flush.Trigger(w.emit)
}

func (w *Watcher) emit() {
	w.readyMu.Lock()
	batch := make([]string, 0, len(w.ready))
	for p := range w.ready {
		batch = append(batch, p)
	}
	w.ready = make(map[string]struct{})
	w.readyMu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Strings(batch)

	select {
	case w.batches <- batch:
	case <-w.ctx.Done():
	}
}

// Batches returns the channel of settled file batches.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Errors returns a receive-only channel for watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Stop stops the watcher and releases the underlying notifier.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.settle.Stop()
		w.flush.Cancel()
		err = w.fsWatcher.Close()

		select {
		case <-w.done:
		case <-time.After(time.Second):
			// Start was never called.
		}
	})
	return err
}

// ExistingFiles lists the importable files already present under dir.
func ExistingFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skipName(d.Name()) && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && ingest.Classify(path) != ingest.KindUnsupported {
			files = append(files, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return files, err
}

// skipName reports names the watcher never imports. Hidden entries cover
// the .roomdir state directory; "~$" marks office lock files.
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}
