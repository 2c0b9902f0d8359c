package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/view3d"
)

// Watch reloads a configuration file whenever it changes and hands the
// fresh document to fn. The parent directory is watched rather than the
// file itself: editors typically replace files by rename, which would
// silently drop a watch on the file.
//
// Watch blocks until ctx is canceled. Files that fail to load after a
// change are logged and skipped; the previous settings stay in effect.
func Watch(ctx context.Context, path string, fn func(*File)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return &LoadError{Path: path, Err: err}
	}

	want := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != want {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			f, err := LoadFile(path)
			if err != nil {
				view3d.Logger().Warn("config reload failed", "path", path, "error", err)
				continue
			}
			view3d.Logger().Debug("config reloaded", "path", path)
			fn(f)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			view3d.Logger().Warn("config watcher error", "error", err)
		}
	}
}
