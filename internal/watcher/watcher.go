// Package watcher reconciles the account list whenever Claude Code rewrites
// its config file, so accounts added through `claude /login` are recorded
// without opening the menu.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Dicklesworthstone/claude_accounts/internal/switcher"
	"github.com/fsnotify/fsnotify"
)

// Reconciler is satisfied by *switcher.Manager.
type Reconciler interface {
	Reconcile(ctx context.Context) (switcher.Reconciliation, error)
}

// Config configures the watcher.
type Config struct {
	// Path is the file to watch.
	Path string

	// DebounceInterval is the time to wait after a file change before processing.
	// Multiple rapid changes are coalesced into one reconcile.
	// Default: 500ms
	DebounceInterval time.Duration

	// OnReconcile is called after every reconcile triggered by a change.
	OnReconcile func(res switcher.Reconciliation)

	// OnError is called when watching or reconciling fails.
	OnError func(err error)

	// Logger for structured logging.
	Logger *slog.Logger
}

// Watcher monitors one file and reconciles after it changes.
type Watcher struct {
	reconciler Reconciler
	config     Config
	watcher    *fsnotify.Watcher
	logger     *slog.Logger

	mu       sync.Mutex
	pending  time.Time // zero when nothing is pending
	stopCh   chan struct{}
	doneCh   chan struct{}
	watching bool
}

// New creates a watcher for cfg.Path.
func New(r Reconciler, cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		reconciler: r,
		config:     cfg,
		watcher:    fsWatcher,
		logger:     cfg.Logger,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself because Claude Code and this tool both replace the file by
// rename, which would drop a watch on the old inode.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.watching = true
	w.mu.Unlock()

	target := watchTarget(w.config.Path)
	if err := w.add(filepath.Dir(target)); err != nil {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return err
	}
	w.logger.Debug("watching", "path", w.config.Path, "target", target)

	go w.loop(ctx, target)
	return nil
}

func (w *Watcher) add(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch dir %s: %w", dir, err)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("add watch %s: %w", dir, err)
	}
	return nil
}

// watchTarget is the file that actually changes on a save: the link target
// when path is a symlink, else path itself.
func watchTarget(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return filepath.Clean(resolved)
	}
	return filepath.Clean(path)
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.watching = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) loop(ctx context.Context, target string) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()
			w.logger.Debug("config file changed", "path", event.Name, "op", event.Op.String())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", "error", err)
			if w.config.OnError != nil {
				w.config.OnError(err)
			}

		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) tick() time.Duration {
	tick := w.config.DebounceInterval / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	return tick
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.config.DebounceInterval {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	res, err := w.reconciler.Reconcile(ctx)
	if err != nil {
		// The file may be mid-rewrite by Claude Code; the next event retries.
		w.logger.Warn("reconcile after change failed", "error", err)
		if w.config.OnError != nil {
			w.config.OnError(err)
		}
		return
	}
	if w.config.OnReconcile != nil {
		w.config.OnReconcile(res)
	}
}
