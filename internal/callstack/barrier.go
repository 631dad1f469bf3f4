// Package callstack implements the thread-call-stack barrier (C13, spec.md
// §4.10 "Reload"): before a mod DLL is unloaded, every thread's stack is
// scanned for a return address still inside the mod's code range, so a
// hook that is mid-call when the mod unloads doesn't crash on return.
package callstack

import "time"

// Region is one [Start, End) code range to check for (spec.md §4.10
// "collect the mod's code range"), typically one per mod being unloaded in
// a reload batch.
type Region struct {
	Start uintptr
	End   uintptr
}

// Scanner reports whether any thread in the current process currently has
// a stack frame (a return address) inside any of regions. The concrete
// Windows implementation walks each thread's raw stack memory; see
// barrier_windows.go.
type Scanner interface {
	AnyThreadInRegions(regions []Region) (bool, error)
}

// WaitForRegions polls scanner every poll interval, for up to timeout, to
// confirm no thread has a frame inside regions (spec.md §4.10:
// "ThreadsCallStackWaitForRegions(regions, 200ms poll, 400ms timeout)").
// It returns nil once a poll finds nothing, or the last poll's result
// (true meaning "still busy") once timeout elapses — callers proceed with
// the unload regardless, matching the source's best-effort barrier: it
// reduces the crash window, it does not eliminate it.
func WaitForRegions(scanner Scanner, regions []Region, poll, timeout time.Duration) (stillBusy bool, err error) {
	if len(regions) == 0 {
		return false, nil
	}
	deadline := time.Now().Add(timeout)
	for {
		busy, err := scanner.AnyThreadInRegions(regions)
		if err != nil {
			return false, err
		}
		if !busy {
			return false, nil
		}
		if time.Now().After(deadline) {
			return true, nil
		}
		time.Sleep(poll)
	}
}
