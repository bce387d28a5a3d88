package host

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// watcher tracks the directories of open local documents. Directories are
// watched rather than files so that editors replacing a file by rename
// are still noticed.
type watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger

	dirs  map[string]bool
	files map[string]string // cleaned absolute path -> path as opened
}

func newWatcher(logger *slog.Logger) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		fs:     fs,
		logger: logger,
		dirs:   make(map[string]bool),
		files:  make(map[string]string),
	}, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// sync watches exactly the directories holding paths. Remote paths are
// ignored.
func (w *watcher) sync(paths []string) {
	clear(w.files)
	want := make(map[string]bool)
	for _, p := range paths {
		if strings.Contains(p, "://") {
			continue
		}
		abs := absPath(p)
		w.files[abs] = p
		want[filepath.Dir(abs)] = true
	}

	for dir := range w.dirs {
		if want[dir] {
			continue
		}
		if err := w.fs.Remove(dir); err != nil {
			w.logger.Debug("unwatch failed", "dir", dir, "error", err)
		}
		delete(w.dirs, dir)
	}
	for dir := range want {
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.logger.Warn("watch failed", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}

// changed reports the open path that ev modified, if any.
func (w *watcher) changed(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return "", false
	}
	p, ok := w.files[absPath(ev.Name)]
	return p, ok
}

// watching reports the watched directories.
func (w *watcher) watching() []string {
	dirs := make([]string, 0, len(w.dirs))
	for dir := range w.dirs {
		dirs = append(dirs, dir)
	}
	return dirs
}

func (w *watcher) close() {
	if err := w.fs.Close(); err != nil {
		w.logger.Debug("watcher close failed", "error", err)
	}
}
