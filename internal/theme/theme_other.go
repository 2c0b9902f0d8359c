//go:build !windows && !darwin

package theme

import "context"

// Desktop Linux exposes the appearance over D-Bus portals only, which
// would pull in a heavy dependency for one bit. Assume light mode.
func isDark() bool { return false }

func monitor(ctx context.Context, _ func(dark bool)) error {
	<-ctx.Done()
	return nil
}
