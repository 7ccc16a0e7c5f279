// Package watch reports out-of-band changes to a board directory so the
// caller can reload. Notifications arrive from a background goroutine,
// batched over a short quiet period. Writes made through the core itself
// also show up here; identical-content events are suppressed by checksum,
// anything beyond that is the caller's debouncing problem.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dagaz/internal/board"
	"github.com/starford/dagaz/internal/checksum"
)

// debounceWindow batches bursts of events (editors write several times per
// save) into one notification.
const debounceWindow = 200 * time.Millisecond

// CardsFunc receives the relative paths of changed card files and the
// filename stems of deleted ones.
type CardsFunc func(changed, deleted []string)

// Watcher monitors one board directory.
type Watcher struct {
	root    string
	logger  *slog.Logger
	onCards CardsFunc
	onBoard func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	active atomic.Bool
}

// New creates a watcher for the board rooted at root. Either callback may
// be nil. A nil logger falls back to slog.Default.
func New(root string, logger *slog.Logger, onCards CardsFunc, onBoard func()) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{root: root, logger: logger, onCards: onCards, onBoard: onBoard}
}

// Location returns the watched board directory.
func (w *Watcher) Location() string { return w.root }

// Active reports whether the watcher is currently running.
func (w *Watcher) Active() bool { return w.active.Load() }

// Start begins watching until ctx is cancelled or Stop is called.
// Starting an active watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active.Load() {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addDirsRecursive(fsw, w.root); err != nil {
		fsw.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.active.Store(true)

	go w.run(runCtx, fsw)

	w.logger.Info("watcher: started", slog.String("root", w.root))
	return nil
}

// Stop halts the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer func() {
		fsw.Close()
		w.active.Store(false)
		close(w.done)
		w.logger.Info("watcher: stopped")
	}()

	// sums remembers the last seen content digest per path so a write
	// that did not change bytes produces no notification.
	sums := make(map[string]string)

	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	pendingChanged := make(map[string]struct{})
	pendingDeleted := make(map[string]struct{})
	boardChanged := false

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounceWindow)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounceWindow)
		}
	}

	flush := func() {
		if boardChanged {
			boardChanged = false
			if w.onBoard != nil {
				w.onBoard()
			}
		}
		if len(pendingChanged) == 0 && len(pendingDeleted) == 0 {
			return
		}
		changed := make([]string, 0, len(pendingChanged))
		for p := range pendingChanged {
			changed = append(changed, p)
		}
		deleted := make([]string, 0, len(pendingDeleted))
		for p := range pendingDeleted {
			deleted = append(deleted, p)
		}
		pendingChanged = make(map[string]struct{})
		pendingDeleted = make(map[string]struct{})
		if w.onCards != nil {
			w.onCards(changed, deleted)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			return

		case <-flushCh:
			flush()

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			absPath := ev.Name

			// New directories (a freshly created column) join the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fsw, absPath); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if !strings.HasSuffix(absPath, board.Ext) {
				continue
			}
			rel, relErr := filepath.Rel(w.root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(absPath)
				if readErr != nil {
					continue
				}
				sum := checksum.Sum(data)
				if sums[rel] == sum {
					continue // content unchanged, self-write echo
				}
				sums[rel] = sum
				if rel == board.BoardFile {
					boardChanged = true
				} else {
					pendingChanged[rel] = struct{}{}
				}
				scheduleFlush()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(sums, rel)
				if rel == board.BoardFile {
					boardChanged = true
				} else {
					stem := strings.TrimSuffix(filepath.Base(rel), board.Ext)
					pendingDeleted[stem] = struct{}{}
				}
				scheduleFlush()
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
