package introspect

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"dht/internal/parsers"
)

// Watcher memoizes a ProjectProfile and invalidates it on any filesystem
// event under a watched, non-ignored path. It never re-parses on every filesystem
// event — only marks the cached profile stale and re-parses lazily on the
// next Ensure call, per §4.D's cache-invalidation note.
type Watcher struct {
	root string
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	cached  *ProjectProfile
	stale   bool
}

// NewWatcher starts watching root (recursively, excluding generated
// directories) for changes that should invalidate the memoized profile.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{root: root, fsw: fsw, stale: true}
	if err := w.addDirs(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if parsers.IsIgnoredPath(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if parsers.IsIgnoredPath(event.Name) {
				continue
			}
			w.mu.Lock()
			w.stale = true
			w.mu.Unlock()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Ensure returns the memoized profile, recomputing it only if a watched
// path changed since the last call.
func (w *Watcher) Ensure() (*ProjectProfile, error) {
	w.mu.Lock()
	stale := w.stale || w.cached == nil
	w.mu.Unlock()

	if !stale {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.cached, nil
	}

	profile, err := Ensure(w.root)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.cached = profile
	w.stale = false
	w.mu.Unlock()
	return profile, nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
