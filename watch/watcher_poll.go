//go:build !linux

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher polls file metadata on platforms without inotify
type Watcher struct {
	debounce time.Duration
	mu       sync.Mutex
	files    map[string]fileState
}

// New creates a watcher. A zero debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{debounce: debounce, files: make(map[string]fileState)}, nil
}

// Add starts watching path
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fi, err := os.Stat(absPath)
	if err != nil {
		return errors.Wrapf(err, "watch %s", absPath)
	}
	w.mu.Lock()
	w.files[absPath] = fileState{fi.ModTime(), fi.Size()}
	w.mu.Unlock()
	return nil
}

// Run delivers changed paths to onChange until ctx is done
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	d := newDebouncer(w.debounce, onChange)
	defer d.stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		w.mu.Lock()
		for path, old := range w.files {
			fi, err := os.Stat(path)
			if err != nil {
				continue // mid-save; try again next tick
			}
			cur := fileState{fi.ModTime(), fi.Size()}
			if cur != old {
				w.files[path] = cur
				d.trigger(path)
			}
		}
		w.mu.Unlock()
	}
}

// Close is a no-op for the polling watcher
func (w *Watcher) Close() error {
	return nil
}
