// Package theme detects the operating system appearance so windows can
// match the system light or dark mode.
//
// Detection is best effort. Platforms without a known appearance source
// report light mode, which matches the renderer default.
package theme

import "context"

// IsDark reports whether the system currently uses a dark appearance.
func IsDark() bool { return isDark() }

// Monitor calls fn with the new value whenever the system appearance
// changes. It blocks until ctx is canceled and returns early only when
// the platform change watcher cannot be set up; fn runs on the calling
// goroutine.
func Monitor(ctx context.Context, fn func(dark bool)) error {
	return monitor(ctx, fn)
}
