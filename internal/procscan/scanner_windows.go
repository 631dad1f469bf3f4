//go:build windows

package procscan

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"

	"github.com/ramensoftware/windhawk-go/internal/inject"
	"github.com/ramensoftware/windhawk-go/internal/namespace"
	"github.com/ramensoftware/windhawk-go/internal/winapi"
)

// Scanner backs the engine DLL exports GlobalHookSessionStart /
// GlobalHookSessionHandleNewProcesses / GlobalHookSessionEnd (spec.md §6).
type Scanner struct {
	opts     Options
	ns       *namespace.Handle
	self     uint32
	seen     sync.Map // pid -> struct{}, best-effort de-dup across sweeps
	injectFn func(inject.Request) error
}

// New constructs a Scanner for one GlobalHookSessionStart call.
func New(opts Options) (*Scanner, error) {
	ns, err := namespace.Open(opts.OrchPID)
	if err != nil {
		return nil, fmt.Errorf("procscan: opening namespace: %w", err)
	}
	return &Scanner{
		opts:     opts,
		ns:       ns,
		self:     windows.GetCurrentProcessId(),
		injectFn: inject.Inject,
	}, nil
}

// Close releases the scanner's namespace handle (GlobalHookSessionEnd).
func (s *Scanner) Close() error { return s.ns.Close() }

// rtlUserThreadStart returns ntdll!RtlUserThreadStart's address as seen in
// this process. Windows relocates system DLLs once at boot and shares that
// base across every process in the session, so the address resolved here is
// valid to compare against a freshly-created target's thread context.
func rtlUserThreadStart() (uintptr, error) {
	ntdll, err := windows.LoadLibrary("ntdll.dll")
	if err != nil {
		return 0, err
	}
	defer windows.FreeLibrary(ntdll)
	addr, err := windows.GetProcAddress(ntdll, "RtlUserThreadStart")
	if err != nil {
		return 0, err
	}
	return addr, nil
}

// Sweep performs one pass over all live processes (GlobalHookSessionHandleNewProcesses).
func (s *Scanner) Sweep(engineDLLPath string, logVerbosity int32) error {
	startAddr, err := rtlUserThreadStart()
	if err != nil {
		return fmt.Errorf("procscan: resolving RtlUserThreadStart: %w", err)
	}

	var prev windows.Handle
	for {
		proc, err := winapi.NextProcess(prev, windows.PROCESS_QUERY_LIMITED_INFORMATION|winapi.ProcessAccessForInject)
		if err == winapi.ErrNoMoreProcesses {
			return nil
		}
		if err != nil {
			return fmt.Errorf("procscan: enumerating processes: %w", err)
		}
		prev = proc

		pid, pidErr := windows.GetProcessId(proc)
		if pidErr == nil && pid == s.self {
			windows.CloseHandle(proc)
			continue
		}

		if werr := windows.WaitForSingleObject(proc, 0); werr == windows.WAIT_OBJECT_0 {
			// Process already exited.
			windows.CloseHandle(proc)
			continue
		}

		if s.opts.SkipCriticalProcesses && !s.canOpenWithoutDebugPrivilege(proc) {
			windows.CloseHandle(proc)
			continue
		}

		path, err := winapi.ProcessImagePath(proc)
		if err != nil {
			windows.CloseHandle(proc)
			continue
		}

		decision := Decide(s.opts.Patterns, path)
		if decision.Skip || IsCriticalProcess(path) {
			windows.CloseHandle(proc)
			continue
		}

		s.handleOne(proc, pid, path, decision, startAddr, engineDLLPath, logVerbosity)
		windows.CloseHandle(proc)
	}
}

func (s *Scanner) canOpenWithoutDebugPrivilege(proc windows.Handle) bool {
	// Session-0 processes the caller can only reach with SeDebugPrivilege are
	// considered off-limits when skip_critical_processes is set: probe by
	// transiently disabling the privilege and re-opening by pid.
	pid, err := windows.GetProcessId(proc)
	if err != nil {
		return true
	}
	_ = winapi.SetDebugPrivilege(false)
	defer winapi.SetDebugPrivilege(true) //nolint:errcheck // best effort restore
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return false
	}
	windows.CloseHandle(h)
	return true
}

func (s *Scanner) handleOne(proc windows.Handle, pid uint32, path string, decision Decision, startAddr uintptr, engineDLLPath string, logVerbosity int32) {
	count, threads, err := winapi.CountThreads(proc, 2)
	defer func() {
		for _, h := range threads {
			windows.CloseHandle(h)
		}
	}()
	if err != nil {
		return
	}

	mutexName := namespace.ObjectName(s.opts.OrchPID, fmt.Sprintf("ProcessInitAPCMutex-pid=%d", pid))
	namePtr, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return
	}

	if count == 1 {
		s.handleNotYetStarted(proc, threads[0], namePtr, decision, startAddr, engineDLLPath, logVerbosity)
		return
	}
	s.handleAlreadyRunning(proc, namePtr, decision, engineDLLPath, logVerbosity)
}

func (s *Scanner) handleNotYetStarted(proc, thread windows.Handle, mutexName *uint16, decision Decision, startAddr uintptr, engineDLLPath string, logVerbosity int32) {
	if _, err := windows.SuspendThread(thread); err != nil {
		return
	}
	ip, err := winapi.ThreadInstructionPointer(thread)
	if err != nil || ip != startAddr {
		windows.ResumeThread(thread) //nolint:errcheck
		return
	}

	mutex, err := windows.CreateMutex(nil, true, mutexName)
	if mutex == 0 {
		windows.ResumeThread(thread) //nolint:errcheck
		return
	}
	defer windows.CloseHandle(mutex)
	if err == windows.ERROR_ALREADY_EXISTS {
		// Another injector already created (and owns) this pid's mutex.
		windows.ResumeThread(thread) //nolint:errcheck
		return
	}

	s.injectFn(inject.Request{
		TargetProcess:         uintptr(proc),
		SuspendedThreadForAPC: uintptr(thread),
		OrchProcess:           uintptr(windows.CurrentProcess()),
		OrchSessionMutex:      uintptr(mutex),
		ThreadAttachExempt:    decision.ThreadAttachExempt,
		EngineDLLPath:         engineDLLPath,
		LogVerbosity:          logVerbosity,
	}) //nolint:errcheck // best-effort, matches spec.md §7 propagation policy
}

func (s *Scanner) handleAlreadyRunning(proc windows.Handle, mutexName *uint16, decision Decision, engineDLLPath string, logVerbosity int32) {
	existing, err := windows.OpenMutex(windows.SYNCHRONIZE, false, mutexName)
	if err == nil {
		windows.CloseHandle(existing)
		return // another injector already owns this pid
	}

	s.injectFn(inject.Request{
		TargetProcess:      uintptr(proc),
		OrchProcess:        uintptr(windows.CurrentProcess()),
		ThreadAttachExempt: decision.ThreadAttachExempt,
		EngineDLLPath:      engineDLLPath,
		LogVerbosity:       logVerbosity,
	}) //nolint:errcheck
}
