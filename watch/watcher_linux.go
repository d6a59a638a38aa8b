//go:build linux

package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	changeMask  = unix.IN_MODIFY | unix.IN_CLOSE_WRITE
	replaceMask = unix.IN_DELETE_SELF | unix.IN_MOVE_SELF | unix.IN_IGNORED
)

// Watcher watches files through inotify
type Watcher struct {
	fd       int
	debounce time.Duration
	mu       sync.Mutex
	watchMap map[int]string
}

// New creates a watcher. A zero debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "inotify_init")
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fd:       fd,
		debounce: debounce,
		watchMap: make(map[int]string),
	}, nil
}

// Add starts watching path
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return w.addWatch(absPath)
}

func (w *Watcher) addWatch(absPath string) error {
	wd, err := unix.InotifyAddWatch(w.fd, absPath, changeMask|unix.IN_DELETE_SELF|unix.IN_MOVE_SELF)
	if err != nil {
		return errors.Wrapf(err, "watch %s", absPath)
	}

	w.mu.Lock()
	w.watchMap[wd] = absPath
	w.mu.Unlock()
	return nil
}

// Run delivers changed paths to onChange until ctx is done
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	d := newDebouncer(w.debounce, onChange)
	defer d.stop()

	buf := make([]byte, (unix.SizeofInotifyEvent+unix.NAME_MAX+1)*16)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(pollInterval):
				}
				continue
			}
			return errors.Wrap(err, "read inotify events")
		}

		offset := 0
		for offset+unix.SizeofInotifyEvent <= n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)

			w.mu.Lock()
			path := w.watchMap[int(event.Wd)]
			if event.Mask&unix.IN_IGNORED != 0 {
				delete(w.watchMap, int(event.Wd))
			}
			w.mu.Unlock()
			if path == "" {
				continue
			}

			switch {
			case event.Mask&changeMask != 0:
				d.trigger(path)
			case event.Mask&replaceMask != 0:
				// Editors that save by rename replace the inode; follow the new file.
				if event.Mask&unix.IN_IGNORED != 0 {
					if err := w.addWatch(path); err != nil {
						glog.Warningf("stopped watching %s: %v", path, err)
						continue
					}
					d.trigger(path)
				}
			}
		}
	}
}

// Close releases the inotify descriptor
func (w *Watcher) Close() error {
	return unix.Close(w.fd)
}
