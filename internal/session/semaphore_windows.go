//go:build windows

package session

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// CreateSemaphoreW/ReleaseSemaphore have no binding in the vendored copy of
// golang.org/x/sys/windows this module builds against, so they are resolved
// the same way as every other undocumented-from-this-package's-perspective
// export in this codebase: NewLazySystemDLL+NewProc (see
// interceptor_windows.go's CreateProcessInternalW resolution and
// modapi/winhttp_windows.go).
var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procCreateSemaphoreW = modkernel32.NewProc("CreateSemaphoreW")
	procReleaseSemaphore = modkernel32.NewProc("ReleaseSemaphore")
)

// acquireProcessSemaphore claims the named, process-scoped
// "WindhawkCustomizationSessionSemaphore-pid=<selfPID>" semaphore
// (max count 1) as a hard OS-level backstop on top of this package's
// in-process singleton guard, covering a second engine instance loaded into
// the same process through a path that bypasses this package entirely
// (e.g. a second, independently loaded copy of the engine DLL). Returns a
// release func; fails if the semaphore is already held.
func acquireProcessSemaphore(selfPID uint32) (func() error, error) {
	name, err := windows.UTF16PtrFromString(fmt.Sprintf("WindhawkCustomizationSessionSemaphore-pid=%d", selfPID))
	if err != nil {
		return nil, fmt.Errorf("session: encoding semaphore name: %w", err)
	}

	h, _, errno := procCreateSemaphoreW.Call(0, 1, 1, uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return nil, fmt.Errorf("session: CreateSemaphoreW: %w", errno)
	}
	handle := windows.Handle(h)

	status, err := windows.WaitForSingleObject(handle, 0)
	if err != nil || status != windows.WAIT_OBJECT_0 {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("session: session semaphore already held")
	}

	released := false
	return func() error {
		if released {
			return nil
		}
		released = true
		ok, _, errno := procReleaseSemaphore.Call(uintptr(handle), 1, 0)
		closeErr := windows.CloseHandle(handle)
		if ok == 0 {
			return fmt.Errorf("session: ReleaseSemaphore: %w", errno)
		}
		return closeErr
	}, nil
}
