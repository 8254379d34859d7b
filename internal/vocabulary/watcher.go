package vocabulary

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumatch/internal/errors"
)

// Watcher reloads a vocabulary file into a Holder whenever the file changes.
type Watcher struct {
	mu sync.RWMutex

	path        string
	holder      *Holder
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onReload func(*Set)
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher for path. onReload may be nil.
func NewWatcher(path string, holder *Holder, debounceDelay time.Duration, onReload func(*Set), logger *errors.Logger) *Watcher {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &Watcher{
		path:          path,
		holder:        holder,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onReload:      onReload,
		logger:        logger,
	}
}

// Start begins watching the vocabulary file.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("vocabulary watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = watcher

	if stat, err := os.Stat(w.path); err == nil {
		w.lastModTime = stat.ModTime()
	}

	// Editors and config management replace files by rename, so the
	// directory is watched as well as the file itself.
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		_ = w.fsWatcher.Close()
		return fmt.Errorf("failed to watch directory of %s: %w", w.path, err)
	}

	w.running = true
	go w.watchLoop()

	w.logger.Info("Vocabulary file watcher started",
		"file", w.path,
		"debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close vocabulary file watcher")
		return err
	}

	w.logger.Info("Vocabulary file watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Vocabulary file watcher error")

		case <-w.reloadChan:
			if w.hasFileChanged() {
				w.reload()
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) &&
		filepath.Base(event.Name) != filepath.Base(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) != 0
}

func (w *Watcher) hasFileChanged() bool {
	stat, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if !stat.ModTime().Equal(w.lastModTime) {
		w.lastModTime = stat.ModTime()
		return true
	}
	return false
}

func (w *Watcher) reload() {
	set, err := LoadFile(w.path)
	if err != nil {
		// Keep serving the previous vocabulary.
		w.logger.LogError(err, "Failed to reload vocabulary file", "file", w.path)
		return
	}

	w.holder.Replace(set)
	w.logger.Info("Vocabulary reloaded",
		"file", w.path,
		"skills", len(set.Skills),
		"evidence_terms", len(set.Evidence))

	if w.onReload != nil {
		w.onReload(set)
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
