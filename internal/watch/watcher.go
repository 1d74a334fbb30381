// Package watch signals when a listing may have changed: an entry of the
// listed directory was added, removed or renamed, or the manifest that
// feeds its ghosts was rewritten.
package watch

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ghostls/internal/logging"
	"ghostls/internal/manifest"
)

var (
	logger = logging.GetLogger().WithPrefix("watch")
)

// DefaultDebounceDelay is the default delay for coalescing bursts of events
const DefaultDebounceDelay = 100 * time.Millisecond

// Watcher coalesces filesystem events affecting one listing into change
// signals.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	errors  chan error
	done    chan struct{}

	// dir is the listed directory; empty when it only exists in the manifest
	dir          string
	manifestPath string

	mu            sync.Mutex
	debounceDelay time.Duration
	timer         *time.Timer
	closed        bool
}

// New watches the directory at path and the manifest governing it. A path
// that exists only in the manifest is watched through the manifest alone.
func New(path string) (*Watcher, error) {
	w := &Watcher{
		changes:       make(chan struct{}, 1),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		debounceDelay: DefaultDebounceDelay,
	}

	var info *manifest.Info
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		w.dir = filepath.Clean(path)
		info, _ = manifest.Find(path)
	} else if m, _, ok := manifest.FindForGhost(path); ok {
		info = m
	}
	if info != nil {
		w.manifestPath = filepath.Join(info.SrcRoot, manifest.RelPath)
	}
	if w.dir == "" && w.manifestPath == "" {
		return nil, errors.New("nothing to watch for " + path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.watcher = watcher

	if w.dir != "" {
		if err := watcher.Add(w.dir); err != nil {
			watcher.Close()
			return nil, err
		}
		logger.Debug("Watching directory %s", w.dir)
	}
	if w.manifestPath != "" {
		// the directory survives editors that replace the file by renaming
		manifestDir := filepath.Dir(w.manifestPath)
		if err := watcher.Add(manifestDir); err != nil {
			logger.Warn("Cannot watch manifest directory %s: %v", manifestDir, err)
		} else {
			logger.Debug("Watching manifest %s", w.manifestPath)
		}
	}

	go w.processEvents()
	return w, nil
}

// processEvents filters fsnotify events and schedules change signals
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				logger.Trace("Event %s", event)
				w.debounce()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

// relevant reports whether event can change the listing. Chmod never can;
// inside the manifest directory only the manifest itself matters.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.dir != "" && filepath.Dir(name) == w.dir {
		return true
	}
	return name == w.manifestPath
}

// debounce restarts the pending signal timer
func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.signal)
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	case <-w.done:
	default:
		// a signal is already pending
	}
}

// Changes returns the channel receiving one value per burst of changes
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Errors returns the channel for receiving watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Dir returns the watched directory, empty for a ghost directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// ManifestPath returns the watched manifest file, empty without a manifest.
func (w *Watcher) ManifestPath() string {
	return w.manifestPath
}

// SetDebounceDelay sets the delay for coalescing bursts of events
func (w *Watcher) SetDebounceDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = delay
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
