//go:build windows

package session

import "golang.org/x/sys/windows"

// processWaiter implements OrchWaiter over a goroutine blocked in
// WaitForSingleObject on the duplicated orchestrator process handle.
type processWaiter struct {
	handle windows.Handle
	done   chan struct{}
}

func newOrchWaiter(handle uintptr) (OrchWaiter, error) {
	w := &processWaiter{handle: windows.Handle(handle), done: make(chan struct{})}
	go func() {
		windows.WaitForSingleObject(w.handle, windows.INFINITE) //nolint:errcheck // either signals death or the handle was closed under us
		close(w.done)
	}()
	return w, nil
}

func (w *processWaiter) Done() <-chan struct{} { return w.done }

func (w *processWaiter) Close() error { return windows.CloseHandle(w.handle) }
