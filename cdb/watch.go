package cdb

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch starts a background goroutine that calls Refresh on handle
// whenever the database's directory reports a write or rename affecting
// its path, stopping when stop is closed. This is an optional
// convenience over polling RefreshCheck on a timer; its failure to
// start is logged, not returned, since callers can always fall back to
// polling.
func Watch(h *Handle, stop <-chan struct{}) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("cdb: fsnotify watcher unavailable, refresh must be polled", "error", err)
		return
	}

	dir := dirOf(h.coord.path)
	if err := w.Add(dir); err != nil {
		slog.Warn("cdb: fsnotify add failed, refresh must be polled", "dir", dir, "error", err)
		w.Close()
		return
	}

	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != h.coord.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := h.Refresh(); err != nil {
					slog.Warn("cdb: refresh after fsnotify event failed", "error", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("cdb: fsnotify error", "error", err)
			case <-stop:
				return
			}
		}
	}()
}

func dirOf(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	if i < 0 {
		return "."
	}
	if i == 0 {
		return "/"
	}
	return path[:i]
}
