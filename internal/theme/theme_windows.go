//go:build windows

package theme

import (
	"context"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const (
	personalizeKey  = `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`
	appsUseLight    = `AppsUseLightTheme`
	systemUsesLight = `SystemUsesLightTheme`
)

// isDark reads the apps theme from the registry, falling back to the
// system theme. A zero value means dark.
func isDark() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close() //nolint:errcheck
	val, _, err := k.GetIntegerValue(appsUseLight)
	if err != nil {
		val, _, err = k.GetIntegerValue(systemUsesLight)
	}
	if err != nil {
		return false
	}
	return val == 0
}

func monitor(ctx context.Context, fn func(dark bool)) error {
	advapi32, err := syscall.LoadDLL("Advapi32.dll")
	if err != nil {
		return err
	}
	notify, err := advapi32.FindProc("RegNotifyChangeKeyValue")
	if err != nil {
		return err
	}
	k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, syscall.KEY_NOTIFY|registry.QUERY_VALUE)
	if err != nil {
		return err
	}
	defer k.Close() //nolint:errcheck

	// Closing the key on return unblocks the pending notification so the
	// goroutine can observe the canceled context and exit.
	changes := make(chan bool)
	go func() {
		defer close(changes)
		for {
			// REG_NOTIFY_CHANGE_NAME | REG_NOTIFY_CHANGE_LAST_SET
			notify.Call(uintptr(k), 0, 0x00000001|0x00000004, 0, 0) //nolint:errcheck
			select {
			case changes <- isDark():
			case <-ctx.Done():
				return
			}
		}
	}()

	wasDark := isDark()
	for {
		select {
		case <-ctx.Done():
			return nil
		case dark, ok := <-changes:
			if !ok {
				return nil
			}
			if dark != wasDark {
				wasDark = dark
				fn(dark)
			}
		}
	}
}
