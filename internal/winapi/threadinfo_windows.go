//go:build windows

package winapi

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// threadBasicInformation mirrors NTDLL's THREAD_BASIC_INFORMATION
// (undocumented, stable across Windows versions): the fields before
// TebBaseAddress are padding-compatible across 32/64-bit because every
// member up to and including TebBaseAddress is pointer-sized.
type threadBasicInformation struct {
	ExitStatus     uintptr
	TebBaseAddress uintptr
	ClientIDPart1  uintptr
	ClientIDPart2  uintptr
	AffinityMask   uintptr
	Priority       int32
	BasePriority   int32
}

const threadBasicInformationClass = 0

// ThreadStackBounds returns [limit, base) of thread's stack, read through
// its TEB (NT_TIB.StackBase/StackLimit are the first two pointer-sized
// fields after NT_TIB.ExceptionList, spec.md §4.10's barrier needs the
// bounds to scan for return addresses within a mod's code range). thread
// must belong to the calling process: this walks the TEB in-process via a
// direct pointer read, not ReadProcessMemory.
func ThreadStackBounds(thread windows.Handle) (limit, base uintptr, err error) {
	var info threadBasicInformation
	var retLen uint32
	r0, _, _ := procNtQueryInfoThread.Call(
		uintptr(thread),
		threadBasicInformationClass,
		uintptr(unsafe.Pointer(&info)),
		uintptr(unsafe.Sizeof(info)),
		uintptr(unsafe.Pointer(&retLen)),
	)
	if r0 != statusSuccess {
		return 0, 0, fmt.Errorf("winapi: NtQueryInformationThread: status 0x%08x", uint32(r0))
	}
	if info.TebBaseAddress == 0 {
		return 0, 0, fmt.Errorf("winapi: NtQueryInformationThread: no TEB for thread")
	}

	ptrSize := unsafe.Sizeof(uintptr(0))
	stackBasePtr := (*uintptr)(unsafe.Pointer(info.TebBaseAddress + uintptr(ptrSize)))
	stackLimitPtr := (*uintptr)(unsafe.Pointer(info.TebBaseAddress + uintptr(2*ptrSize)))
	return *stackLimitPtr, *stackBasePtr, nil
}

// ThreadID returns thread's thread id via NtQueryInformationThread's
// CLIENT_ID.UniqueThread, avoiding a dependency on GetThreadId (not bound
// in every x/sys/windows vintage this module targets).
func ThreadID(thread windows.Handle) (uint32, error) {
	var info threadBasicInformation
	var retLen uint32
	r0, _, _ := procNtQueryInfoThread.Call(
		uintptr(thread),
		threadBasicInformationClass,
		uintptr(unsafe.Pointer(&info)),
		uintptr(unsafe.Sizeof(info)),
		uintptr(unsafe.Pointer(&retLen)),
	)
	if r0 != statusSuccess {
		return 0, fmt.Errorf("winapi: NtQueryInformationThread: status 0x%08x", uint32(r0))
	}
	return uint32(info.ClientIDPart2), nil
}
