// Package inject implements the per-process DLL injector (C5, spec.md §4.5):
// given an already-open target process handle, it writes the shellcode and
// parameter block and starts it running, either via APC on a known-suspended
// thread or via a freshly created remote thread.
package inject

// Request describes one injection attempt. Handle fields are raw Win32
// HANDLE values (uintptr here so this type has a meaning to name on every
// GOOS; Inject itself is Windows-only, see inject_other.go).
type Request struct {
	// TargetProcess must have been opened with winapi.ProcessAccessForInject.
	TargetProcess uintptr
	// SuspendedThreadForAPC, if non-zero, queues the shellcode as an APC on
	// this thread instead of creating a remote thread. The thread is resumed
	// by Inject after the APC is queued.
	SuspendedThreadForAPC uintptr
	// OrchProcess and OrchSessionMutex are duplicated into the target so the
	// injected engine can wait on the orchestrator's lifetime and the
	// session-private mutex without reopening them by pid (spec.md §4.5 step 1).
	OrchProcess      uintptr
	OrchSessionMutex uintptr
	// ThreadAttachExempt selects NtCreateThreadEx's SKIP_THREAD_ATTACH flag
	// for the remote-thread path (spec.md §4.5 step 4); meaningless for APC.
	ThreadAttachExempt bool
	// EngineDLLPath is the absolute path to the engine DLL matching the
	// target's architecture.
	EngineDLLPath string
	// LogVerbosity is copied into the shellcode's parameter block.
	LogVerbosity int32
}
