// Package winapi collects the small set of raw Win32/NT syscalls that
// golang.org/x/sys/windows does not wrap at a high level: the ones the
// injector, scanner, and interceptor all need to open, suspend, and walk
// processes and threads (spec.md §4.5, §4.6, §4.7).
package winapi

import "fmt"

// ErrNoMoreProcesses and ErrNoMoreThreads signal clean end-of-enumeration
// for the NtGetNextProcess/NtGetNextThread walks, distinct from real errors.
var (
	ErrNoMoreProcesses = fmt.Errorf("winapi: no more processes")
	ErrNoMoreThreads   = fmt.Errorf("winapi: no more threads")
)

// Required target-process access rights for injection (spec.md §4.5 step 5).
const (
	ProcessAccessForInject = processCreateThread |
		processVMOperation |
		processVMRead |
		processVMWrite |
		processDupHandle |
		processQueryInformation |
		processSynchronize
)

const (
	processCreateThread     = 0x0002
	processVMOperation      = 0x0008
	processVMRead           = 0x0010
	processVMWrite          = 0x0020
	processDupHandle        = 0x0040
	processQueryInformation = 0x0400
	processSynchronize      = 0x00100000
)
