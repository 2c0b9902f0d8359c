//go:build darwin

package theme

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// macOS rewrites the global preferences plist whenever the appearance
// changes, so a watch on it doubles as a change notification.
var plist = filepath.Join(os.Getenv("HOME"), "Library/Preferences/.GlobalPreferences.plist")

// isDark shells out to defaults. The AppleInterfaceStyle key only exists
// in dark mode: a clean read means dark, any failure means light.
func isDark() bool {
	return exec.Command("defaults", "read", "-g", "AppleInterfaceStyle").Run() == nil
}

func monitor(ctx context.Context, fn func(dark bool)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close() //nolint:errcheck
	if err := watcher.Add(plist); err != nil {
		return err
	}

	wasDark := isDark()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// The plist is replaced, not rewritten in place.
			if !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if dark := isDark(); dark != wasDark {
				wasDark = dark
				fn(dark)
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
