//go:build windows

package modapi

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// WindowsMutex implements NamedMutex over CreateMutexW, blocking on the
// mutex with INFINITE wait (unlike the non-blocking create-with-ownership
// idiom in procscan/interceptor, hook_symbols genuinely wants to wait its
// turn rather than skip, spec.md §4.9 step 4).
type WindowsMutex struct{}

func (WindowsMutex) Acquire(name string) (func(), error) {
	h, err := windows.CreateMutex(nil, false, windows.StringToUTF16Ptr(name))
	if h == 0 {
		return nil, fmt.Errorf("modapi: creating cache mutex %q: %w", name, err)
	}
	if _, err := windows.WaitForSingleObject(h, windows.INFINITE); err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("modapi: waiting on cache mutex %q: %w", name, err)
	}
	return func() {
		windows.ReleaseMutex(h)
		windows.CloseHandle(h)
	}, nil
}
