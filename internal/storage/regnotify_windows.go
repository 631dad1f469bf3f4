//go:build windows

package storage

import (
	"golang.org/x/sys/windows"
)

// regNotifyChangeKeyValue wraps advapi32!RegNotifyChangeKeyValue, which
// golang.org/x/sys/windows/registry does not expose directly. Using
// NewLazySystemDLL to reach an API the high-level wrapper omits is the same
// pattern the x/sys packages themselves use internally for long-tail Win32
// entry points.
var (
	modadvapi32                 = windows.NewLazySystemDLL("advapi32.dll")
	procRegNotifyChangeKeyValue = modadvapi32.NewProc("RegNotifyChangeKeyValue")
)

func regNotifyChangeKeyValue(key windows.Handle, watchSubtree bool, filter uint32, event windows.Handle, async bool) error {
	var watchSubtreeArg, asyncArg uintptr
	if watchSubtree {
		watchSubtreeArg = 1
	}
	if async {
		asyncArg = 1
	}
	r0, _, _ := procRegNotifyChangeKeyValue.Call(
		uintptr(key),
		watchSubtreeArg,
		uintptr(filter),
		uintptr(event),
		asyncArg,
	)
	if r0 != 0 {
		return windows.Errno(r0)
	}
	return nil
}
