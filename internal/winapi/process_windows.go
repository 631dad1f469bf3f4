//go:build windows

package winapi

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modntdll = windows.NewLazySystemDLL("ntdll.dll")

	procNtGetNextProcess  = modntdll.NewProc("NtGetNextProcess")
	procNtGetNextThread   = modntdll.NewProc("NtGetNextThread")
	procNtCreateThreadEx  = modntdll.NewProc("NtCreateThreadEx")
	procNtQueryInfoThread = modntdll.NewProc("NtQueryInformationThread")
)

const (
	statusSuccess       = 0
	statusNoMoreEntries = 0x8000001A

	// NtCreateThreadEx create-flags understood by this module.
	ThreadCreateFlagsSkipThreadAttach = 0x00000002
)

// NextProcess returns the next process handle after prev (0 to start the
// enumeration), opened with access. Returns ErrNoMoreProcesses at the end.
func NextProcess(prev windows.Handle, access uint32) (windows.Handle, error) {
	var next windows.Handle
	r0, _, _ := procNtGetNextProcess.Call(
		uintptr(prev), uintptr(access), 0, 0, uintptr(unsafe.Pointer(&next)),
	)
	switch uint32(r0) {
	case statusSuccess:
		return next, nil
	case statusNoMoreEntries:
		return 0, ErrNoMoreProcesses
	default:
		return 0, fmt.Errorf("winapi: NtGetNextProcess: status 0x%08x", uint32(r0))
	}
}

// NextThread returns the next thread of process after prev (0 to start),
// opened with access. Returns ErrNoMoreThreads at the end.
func NextThread(process, prev windows.Handle, access uint32) (windows.Handle, error) {
	var next windows.Handle
	r0, _, _ := procNtGetNextThread.Call(
		uintptr(process), uintptr(prev), uintptr(access), 0, 0, uintptr(unsafe.Pointer(&next)),
	)
	switch uint32(r0) {
	case statusSuccess:
		return next, nil
	case statusNoMoreEntries:
		return 0, ErrNoMoreThreads
	default:
		return 0, fmt.Errorf("winapi: NtGetNextThread: status 0x%08x", uint32(r0))
	}
}

// CountThreads enumerates up to limit+1 threads of process and returns the
// actual count found, stopping early once it exceeds limit.
func CountThreads(process windows.Handle, limit int) (int, []windows.Handle, error) {
	var handles []windows.Handle
	var prev windows.Handle
	for len(handles) <= limit {
		h, err := NextThread(process, prev, windows.THREAD_QUERY_LIMITED_INFORMATION|windows.THREAD_SUSPEND_RESUME|windows.THREAD_GET_CONTEXT)
		if err == ErrNoMoreThreads {
			break
		}
		if err != nil {
			for _, hh := range handles {
				windows.CloseHandle(hh)
			}
			return 0, nil, err
		}
		handles = append(handles, h)
		prev = h
	}
	return len(handles), handles, nil
}

// NtCreateThreadEx starts a thread in process at startAddr with argument,
// applying createFlags (e.g. ThreadCreateFlagsSkipThreadAttach).
func NtCreateThreadEx(process windows.Handle, startAddr, argument uintptr, createFlags uint32) (windows.Handle, error) {
	var thread windows.Handle
	r0, _, _ := procNtCreateThreadEx.Call(
		uintptr(unsafe.Pointer(&thread)),
		0x1FFFFF, // THREAD_ALL_ACCESS
		0,
		uintptr(process),
		startAddr,
		argument,
		uintptr(createFlags),
		0, 0, 0, 0,
	)
	if r0 != statusSuccess {
		return 0, fmt.Errorf("winapi: NtCreateThreadEx: status 0x%08x", uint32(r0))
	}
	return thread, nil
}

// SetDebugPrivilege enables or disables SeDebugPrivilege on the current
// process token, used by the scanner to probe access to session-0 processes
// (spec.md §4.6 step 2).
func SetDebugPrivilege(enable bool) error {
	var token windows.Token
	proc, err := windows.GetCurrentProcess()
	if err != nil {
		return err
	}
	if err := windows.OpenProcessToken(proc, windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token); err != nil {
		return fmt.Errorf("winapi: OpenProcessToken: %w", err)
	}
	defer token.Close()

	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, windows.StringToUTF16Ptr("SeDebugPrivilege"), &luid); err != nil {
		return fmt.Errorf("winapi: LookupPrivilegeValue: %w", err)
	}

	attr := uint32(0)
	if enable {
		attr = windows.SE_PRIVILEGE_ENABLED
	}
	privs := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{
			{Luid: luid, Attributes: attr},
		},
	}
	if err := windows.AdjustTokenPrivileges(token, false, &privs, 0, nil, nil); err != nil {
		return fmt.Errorf("winapi: AdjustTokenPrivileges: %w", err)
	}
	return nil
}

// ProcessImagePath returns the win32 image path of process.
func ProcessImagePath(process windows.Handle) (string, error) {
	buf := make([]uint16, 32*1024)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(process, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("winapi: QueryFullProcessImageName: %w", err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}

// ThreadInstructionPointer suspends-and-reads (caller must have already
// suspended the thread) the thread's current Rip/Pc via GetThreadContext.
func ThreadInstructionPointer(thread windows.Handle) (uintptr, error) {
	var ctx windows.CONTEXT
	ctx.ContextFlags = windows.CONTEXT_CONTROL
	if err := windows.GetThreadContext(thread, &ctx); err != nil {
		return 0, fmt.Errorf("winapi: GetThreadContext: %w", err)
	}
	return uintptr(contextInstructionPointer(&ctx)), nil
}
