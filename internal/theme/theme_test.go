package theme

import "testing"

func TestIsDark(t *testing.T) {
	// The value depends on the host; the call must simply not hang or panic.
	t.Logf("IsDark() = %v", IsDark())
}
