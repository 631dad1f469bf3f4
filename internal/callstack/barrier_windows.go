//go:build windows

package callstack

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ramensoftware/windhawk-go/internal/winapi"
)

// pointerSize in the running process; stacks are scanned one
// pointer-width word at a time looking for a return address.
var pointerSize = unsafe.Sizeof(uintptr(0))

// ThreadScanner implements Scanner by suspending every other thread of the
// current process in turn, reading its stack memory directly (same
// process, no ReadProcessMemory needed), and checking every pointer-aligned
// word for a value inside one of the given regions.
type ThreadScanner struct {
	selfThreadID uint32
}

// NewThreadScanner constructs a scanner that never suspends the calling
// thread (it can't meaningfully inspect its own in-progress stack frame
// this way, and suspending yourself deadlocks).
func NewThreadScanner() *ThreadScanner {
	return &ThreadScanner{selfThreadID: windows.GetCurrentThreadId()}
}

func (s *ThreadScanner) AnyThreadInRegions(regions []Region) (bool, error) {
	self := windows.CurrentProcess()
	_, threads, err := winapi.CountThreads(self, 1<<16)
	if err != nil {
		return false, fmt.Errorf("callstack: enumerating threads: %w", err)
	}
	defer func() {
		for _, h := range threads {
			windows.CloseHandle(h)
		}
	}()

	for _, thread := range threads {
		if tid, err := winapi.ThreadID(thread); err == nil && tid == s.selfThreadID {
			continue
		}
		busy, err := s.threadHasFrameIn(thread, regions)
		if err != nil {
			continue // a thread that exited mid-scan is not "busy"; best effort.
		}
		if busy {
			return true, nil
		}
	}
	return false, nil
}

func (s *ThreadScanner) threadHasFrameIn(thread windows.Handle, regions []Region) (bool, error) {
	if _, err := windows.SuspendThread(thread); err != nil {
		return false, fmt.Errorf("callstack: SuspendThread: %w", err)
	}
	defer windows.ResumeThread(thread)

	limit, base, err := winapi.ThreadStackBounds(thread)
	if err != nil {
		return false, err
	}
	if limit == 0 || base == 0 || limit >= base {
		return false, nil
	}

	for addr := limit; addr+uintptr(pointerSize) <= base; addr += pointerSize {
		word := *(*uintptr)(unsafe.Pointer(addr))
		for _, r := range regions {
			if word >= r.Start && word < r.End {
				return true, nil
			}
		}
	}
	return false, nil
}
