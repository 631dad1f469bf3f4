//go:build windows

package interceptor

import (
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ramensoftware/windhawk-go/internal/inject"
	"github.com/ramensoftware/windhawk-go/internal/namespace"
	"github.com/ramensoftware/windhawk-go/internal/procscan"
	"github.com/ramensoftware/windhawk-go/internal/winapi"
)

const identityOwn uintptr = 0x57484943 // "WHIC" — the interceptor's own hook identity.

const createSuspended = 0x00000004

// Interceptor is the process-wide singleton hooking CreateProcessInternalW
// (spec.md §4.7). Only one instance may be installed per process.
type Interceptor struct {
	engine   HookEngine
	opts     Options
	original uintptr
	callback uintptr
	inflight int32
}

var active *Interceptor

// Install resolves kernelbase!CreateProcessInternalW (falling back to
// kernel32!CreateProcessInternalW) and installs the hook. Only one
// Interceptor may be active per process.
func Install(engine HookEngine, opts Options) (*Interceptor, error) {
	if active != nil {
		return nil, fmt.Errorf("interceptor: an Interceptor is already installed in this process")
	}
	target, err := resolveCreateProcessInternalW()
	if err != nil {
		return nil, fmt.Errorf("interceptor: resolving CreateProcessInternalW: %w", err)
	}

	ic := &Interceptor{engine: engine, opts: opts}
	ic.callback = windows.NewCallback(ic.detour)

	var original uintptr
	if err := engine.Hook(identityOwn, target, ic.callback, &original); err != nil {
		return nil, fmt.Errorf("interceptor: installing hook: %w", err)
	}
	if err := engine.ApplyQueued(identityOwn); err != nil {
		return nil, fmt.Errorf("interceptor: applying hook: %w", err)
	}
	ic.original = original
	active = ic
	return ic, nil
}

func resolveCreateProcessInternalW() (uintptr, error) {
	for _, dll := range []string{"kernelbase.dll", "kernel32.dll"} {
		h, err := windows.LoadLibrary(dll)
		if err != nil {
			continue
		}
		addr, err := windows.GetProcAddress(h, "CreateProcessInternalW")
		if err == nil {
			return addr, nil
		}
	}
	return 0, fmt.Errorf("interceptor: CreateProcessInternalW not found in kernelbase.dll or kernel32.dll")
}

// Close spins until reentrant calls drain, then unhooks (spec.md §4.7,
// "the destructor spins until it reaches zero before unhooking").
func (ic *Interceptor) Close() error {
	for atomic.LoadInt32(&ic.inflight) != 0 {
		// Busy-wait deliberately: the hook body never blocks for long, and
		// this path runs only during session teardown.
	}
	if active == ic {
		active = nil
	}
	if err := ic.engine.Unhook(identityOwn, 0); err != nil {
		return fmt.Errorf("interceptor: unhooking: %w", err)
	}
	return ic.engine.ApplyQueued(identityOwn)
}

// detour is CreateProcessInternalW's 12-argument replacement (spec.md §4.7).
// Signature (undocumented, stable since Windows XP):
//
//	BOOL CreateProcessInternalW(hUserToken, lpApplicationName, lpCommandLine,
//	  lpProcessAttributes, lpThreadAttributes, bInheritHandles,
//	  dwCreationFlags, lpEnvironment, lpCurrentDirectory, lpStartupInfo,
//	  lpProcessInformation, hNewToken)
func (ic *Interceptor) detour(
	hUserToken, lpApplicationName, lpCommandLine, lpProcessAttributes,
	lpThreadAttributes, bInheritHandles, dwCreationFlags, lpEnvironment,
	lpCurrentDirectory, lpStartupInfo, lpProcessInformation, hNewToken uintptr,
) uintptr {
	atomic.AddInt32(&ic.inflight, 1)
	defer atomic.AddInt32(&ic.inflight, -1)

	originalRequestedSuspended := dwCreationFlags&createSuspended != 0
	forcedFlags := dwCreationFlags | createSuspended

	ret, _, _ := syscall.Syscall12(ic.original, 12,
		hUserToken, lpApplicationName, lpCommandLine, lpProcessAttributes,
		lpThreadAttributes, bInheritHandles, forcedFlags, lpEnvironment,
		lpCurrentDirectory, lpStartupInfo, lpProcessInformation, hNewToken,
	)
	if ret == 0 {
		return ret
	}

	if lpProcessInformation == 0 {
		return ret
	}
	pi := (*windows.ProcessInformation)(unsafe.Pointer(lpProcessInformation))
	if pi.Process == 0 {
		return ret
	}

	ic.handleChild(pi, originalRequestedSuspended)
	return ret
}

func (ic *Interceptor) handleChild(pi *windows.ProcessInformation, resumeWhenDone bool) {
	path, err := winapi.ProcessImagePath(pi.Process)
	if err != nil {
		if resumeWhenDone {
			windows.ResumeThread(pi.Thread) //nolint:errcheck
		}
		return
	}
	decision := procscan.Decide(ic.opts.Patterns, path)
	if decision.Skip {
		if resumeWhenDone {
			windows.ResumeThread(pi.Thread) //nolint:errcheck
		}
		return
	}

	mutexName := namespace.ObjectName(ic.opts.OrchPID, fmt.Sprintf("ProcessInitAPCMutex-pid=%d", pi.ProcessId))
	namePtr, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		if resumeWhenDone {
			windows.ResumeThread(pi.Thread) //nolint:errcheck
		}
		return
	}
	mutex, err := windows.CreateMutex(nil, false, namePtr)
	if mutex != 0 && err == windows.ERROR_ALREADY_EXISTS {
		// Another injector (the all-processes scanner, most likely) is
		// already handling this pid: wait for it, then let the caller run.
		windows.WaitForSingleObject(mutex, windows.INFINITE) //nolint:errcheck
		windows.CloseHandle(mutex)
		if resumeWhenDone {
			windows.ResumeThread(pi.Thread) //nolint:errcheck
		}
		return
	}
	if mutex != 0 {
		defer windows.CloseHandle(mutex)
	}

	inject.Inject(inject.Request{ //nolint:errcheck
		TargetProcess:         uintptr(pi.Process),
		SuspendedThreadForAPC: uintptr(pi.Thread),
		OrchProcess:           uintptr(windows.CurrentProcess()),
		OrchSessionMutex:      uintptr(mutex),
		ThreadAttachExempt:    decision.ThreadAttachExempt,
		EngineDLLPath:         ic.opts.EngineDLLPath,
		LogVerbosity:          ic.opts.LogVerbosity,
	})

	if resumeWhenDone {
		windows.ResumeThread(pi.Thread) //nolint:errcheck
	}
}
